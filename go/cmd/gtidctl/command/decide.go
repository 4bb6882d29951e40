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
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/gtidkit/gtidkit/go/mysql/replication"
	"github.com/gtidkit/gtidkit/go/vt/cdc/resume"
	"github.com/gtidkit/gtidkit/go/vt/cdc/upstream"
	"github.com/gtidkit/gtidkit/go/vt/log"
	"github.com/gtidkit/gtidkit/go/vt/vterrors"
)

// Decide tells whether a connector can resume streaming.
var Decide = &cobra.Command{
	Use:   "decide [--recorded <set>] [--executed <set> [--purged <set>] | --upstream-dsn <dsn>]",
	Short: "Decides whether a connector can resume streaming or needs a new snapshot.",
	Long: "Compares the recorded position, given with `--recorded` or loaded from the offset store, " +
		"with the server state, given with `--executed` and `--purged` or read from the server at `--upstream-dsn`.",
	Args: cobra.NoArgs,
	RunE: commandDecide,
}

var decideOptions = struct {
	Recorded       string
	Executed       string
	Purged         string
	UpstreamDSN    string
	Include        []string
	Exclude        []string
	RequireUUIDs   bool
	FailOnSnapshot bool
}{}

// upstreamSource returns the Source described by the decide flags and a
// function releasing it.
func upstreamSource() (upstream.Source, func(), error) {
	if decideOptions.UpstreamDSN != "" {
		if decideOptions.Executed != "" || decideOptions.Purged != "" {
			return nil, nil, vterrors.New(vterrors.InvalidArgument, "--upstream-dsn cannot be combined with --executed or --purged")
		}
		src, err := upstream.NewMySQL(upstream.Config{DSN: decideOptions.UpstreamDSN})
		if err != nil {
			return nil, nil, err
		}
		return src, func() { src.Close() }, nil
	}
	src, err := upstream.NewStatic(decideOptions.Executed, decideOptions.Purged)
	if err != nil {
		return nil, nil, err
	}
	return src, func() {}, nil
}

func commandDecide(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)

	filter, err := resume.NewFilter(resume.FilterConfig{Include: decideOptions.Include, Exclude: decideOptions.Exclude})
	if err != nil {
		return err
	}
	src, release, err := upstreamSource()
	if err != nil {
		return err
	}
	defer release()

	var decision resume.Decision
	if cmd.Flags().Changed("recorded") {
		recorded, err := replication.ParsePositionSet(decideOptions.Recorded)
		if err != nil {
			return vterrors.Wrap(err, "recorded")
		}
		server, err := src.Positions(ctx)
		if err != nil {
			return err
		}
		if decideOptions.RequireUUIDs {
			if err := validateUUIDs(recorded, server.Executed, server.Purged); err != nil {
				return err
			}
		}
		decision = resume.Decide(recorded, server, filter)
	} else {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()
		r := &resume.Resolver{Store: store, Source: src, Filter: filter}
		if decideOptions.RequireUUIDs {
			r.Validate = upstream.ValidateSourceUUIDs
		}
		if decision, err = r.Resolve(ctx, storeOptions.Connector); err != nil {
			return err
		}
	}

	printDecision(cmd.OutOrStdout(), decision)
	if decideOptions.FailOnSnapshot && decision.Mode == resume.Snapshot {
		return ErrFalse
	}
	return nil
}

func validateUUIDs(sets ...replication.PositionSet) error {
	for _, ps := range sets {
		if err := upstream.ValidateSourceUUIDs(ps); err != nil {
			return err
		}
	}
	return nil
}

func printDecision(w io.Writer, d resume.Decision) {
	fmt.Fprintf(w, "mode: %v\n", d.Mode)
	if d.Mode == resume.Stream {
		fmt.Fprintf(w, "resume after: %v\n", d.Recorded)
		fmt.Fprintf(w, "pending: %v\n", d.Pending)
		return
	}
	fmt.Fprintf(w, "reason: %v\n", d.Reason)
	switch d.Reason {
	case resume.NotContained:
		fmt.Fprintf(w, "unknown to server: %v\n", d.Unknown)
	case resume.Purged:
		fmt.Fprintf(w, "purged: %v\n", d.PurgedNeeded)
	}
	log.V(1).Infof("decision made on recorded=%v executed=%v", d.Recorded, d.Executed)
}

func init() {
	Decide.Flags().StringVar(&decideOptions.Recorded, "recorded", "", "Recorded position. When not given, it is loaded from the offset store.")
	Decide.Flags().StringVar(&decideOptions.Executed, "executed", "", "The server's gtid_executed.")
	Decide.Flags().StringVar(&decideOptions.Purged, "purged", "", "The server's gtid_purged.")
	Decide.Flags().StringVar(&decideOptions.UpstreamDSN, "upstream-dsn", "", "DSN of the MySQL server to read gtid_executed and gtid_purged from.")
	Decide.Flags().StringSliceVar(&decideOptions.Include, "source-include", nil, "Regular expressions of the source ids to track.")
	Decide.Flags().StringSliceVar(&decideOptions.Exclude, "source-exclude", nil, "Regular expressions of the source ids to ignore.")
	Decide.Flags().BoolVar(&decideOptions.RequireUUIDs, "require-uuids", false, "Reject source ids that are not server UUIDs.")
	Decide.Flags().BoolVar(&decideOptions.FailOnSnapshot, "fail-on-snapshot", false, "Exit with status 1 when a snapshot is required.")
}
