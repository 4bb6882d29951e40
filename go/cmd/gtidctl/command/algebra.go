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

	"github.com/spf13/cobra"

	"github.com/gtidkit/gtidkit/go/mysql/replication"
)

var (
	// Parse prints the canonical form of a GTID set.
	Parse = &cobra.Command{
		Use:     "parse <gtid-set>",
		Short:   "Validates a GTID set and prints its canonical form.",
		Example: "gtidctl parse 'U:1-191:192-199,V:5'",
		Args:    cobra.ExactArgs(1),
		RunE:    commandParse,
	}
	// Union prints the union of two GTID sets.
	Union = &cobra.Command{
		Use:   "union <a> <b>",
		Short: "Prints every transaction in a or b.",
		Args:  cobra.ExactArgs(2),
		RunE:  commandUnion,
	}
	// Subtract prints the transactions of a that are not in b.
	Subtract = &cobra.Command{
		Use:   "subtract <a> <b>",
		Short: "Prints the transactions in a that are not in b.",
		Args:  cobra.ExactArgs(2),
		RunE:  commandSubtract,
	}
	// Contains checks that b holds every transaction of a.
	Contains = &cobra.Command{
		Use:   "contains <a> <b>",
		Short: "Exits with status 0 if every transaction in a is also in b, 1 otherwise.",
		Args:  cobra.ExactArgs(2),
		RunE:  commandContains,
	}
	// Equal checks that two GTID sets hold the same transactions.
	Equal = &cobra.Command{
		Use:   "equal <a> <b>",
		Short: "Exits with status 0 if a and b hold the same transactions, 1 otherwise.",
		Args:  cobra.ExactArgs(2),
		RunE:  commandEqual,
	}
)

var predicateOptions = struct {
	Quiet bool
}{}

func parseArgs(args []string) ([]replication.PositionSet, error) {
	sets := make([]replication.PositionSet, 0, len(args))
	for _, arg := range args {
		ps, err := replication.ParsePositionSet(arg)
		if err != nil {
			return nil, err
		}
		sets = append(sets, ps)
	}
	return sets, nil
}

func commandParse(cmd *cobra.Command, args []string) error {
	sets, err := parseArgs(args)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), sets[0])
	return nil
}

func commandUnion(cmd *cobra.Command, args []string) error {
	sets, err := parseArgs(args)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), sets[0].Union(sets[1]))
	return nil
}

func commandSubtract(cmd *cobra.Command, args []string) error {
	sets, err := parseArgs(args)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), sets[0].Subtract(sets[1]))
	return nil
}

func commandContains(cmd *cobra.Command, args []string) error {
	sets, err := parseArgs(args)
	if err != nil {
		return err
	}
	if !sets[0].IsContainedWithin(sets[1]) {
		if !predicateOptions.Quiet {
			fmt.Fprintf(cmd.OutOrStdout(), "not contained, missing: %v\n", sets[0].Subtract(sets[1]))
		}
		return ErrFalse
	}
	if !predicateOptions.Quiet {
		fmt.Fprintln(cmd.OutOrStdout(), "contained")
	}
	return nil
}

func commandEqual(cmd *cobra.Command, args []string) error {
	sets, err := parseArgs(args)
	if err != nil {
		return err
	}
	if !sets[0].Equal(sets[1]) {
		if !predicateOptions.Quiet {
			fmt.Fprintln(cmd.OutOrStdout(), "different")
		}
		return ErrFalse
	}
	if !predicateOptions.Quiet {
		fmt.Fprintln(cmd.OutOrStdout(), "equal")
	}
	return nil
}

func init() {
	for _, cmd := range []*cobra.Command{Contains, Equal} {
		cmd.Flags().BoolVarP(&predicateOptions.Quiet, "quiet", "q", false, "Print nothing, only set the exit status.")
	}
}
