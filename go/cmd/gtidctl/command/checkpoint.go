/*
Copyright 2026 The Vitess Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package command

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/gtidkit/gtidkit/go/mysql/replication"
	"github.com/gtidkit/gtidkit/go/vt/cdc/offsetstore"
	"github.com/gtidkit/gtidkit/go/vt/vterrors"
)

var (
	// Checkpoint groups the offset store commands.
	Checkpoint = &cobra.Command{
		Use:   "checkpoint",
		Short: "Reads and writes the position recorded for a connector.",
		Args:  cobra.NoArgs,
	}
	// CheckpointGet prints the recorded position.
	CheckpointGet = &cobra.Command{
		Use:   "get",
		Short: "Prints the position recorded for --connector.",
		Args:  cobra.NoArgs,
		RunE:  commandCheckpointGet,
	}
	// CheckpointPut records a position.
	CheckpointPut = &cobra.Command{
		Use:   "put <gtid-set>",
		Short: "Records the given position for --connector, replacing the previous one.",
		Args:  cobra.ExactArgs(1),
		RunE:  commandCheckpointPut,
	}
)

var checkpointGetOptions = struct {
	ShowTime bool
}{}

var checkpointPutOptions = struct {
	Merge bool
}{}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func commandCheckpointGet(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	rec, err := store.LoadRecord(commandContext(cmd), storeOptions.Connector)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), rec.Position)
	if checkpointGetOptions.ShowTime {
		fmt.Fprintf(cmd.OutOrStdout(), "saved at: %s\n", rec.UpdatedAt.UTC().Format(time.RFC3339))
	}
	return nil
}

func commandCheckpointPut(cmd *cobra.Command, args []string) error {
	pos, err := replication.ParsePositionSet(args[0])
	if err != nil {
		return err
	}
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := commandContext(cmd)
	if checkpointPutOptions.Merge {
		prev, err := store.Load(ctx, storeOptions.Connector)
		switch {
		case err == nil:
			pos = prev.Union(pos)
		case !offsetstore.IsNotFound(err):
			return vterrors.Wrapf(err, "cannot merge with the recorded position of %s", storeOptions.Connector)
		}
	}
	if err := store.Save(ctx, storeOptions.Connector, pos); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), pos)
	return nil
}

func init() {
	CheckpointGet.Flags().BoolVar(&checkpointGetOptions.ShowTime, "show-time", false, "Also print when the position was saved.")
	CheckpointPut.Flags().BoolVar(&checkpointPutOptions.Merge, "merge", false, "Record the union of the given and the recorded positions.")

	Checkpoint.AddCommand(CheckpointGet)
	Checkpoint.AddCommand(CheckpointPut)
}
