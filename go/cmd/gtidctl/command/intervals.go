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
	"math"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/gtidkit/gtidkit/go/mysql/replication"
)

// Intervals prints the intervals of a GTID set, one row per interval.
var Intervals = &cobra.Command{
	Use:   "intervals [--source <id>] <gtid-set>",
	Short: "Prints the merged intervals of a GTID set as a table.",
	Args:  cobra.ExactArgs(1),
	RunE:  commandIntervals,
}

var intervalsOptions = struct {
	Source string
}{}

func commandIntervals(cmd *cobra.Command, args []string) error {
	ps, err := replication.ParsePositionSet(args[0])
	if err != nil {
		return err
	}

	sources := ps.Sources()
	if intervalsOptions.Source != "" {
		sources = []replication.SourceID{replication.SourceID(intervalsOptions.Source)}
	}

	table := tablewriter.NewWriter(cmd.OutOrStdout())
	table.Header("Source", "Start", "End", "Transactions")
	for _, sid := range sources {
		for _, iv := range ps.IntervalsFor(sid) {
			row := []string{
				string(sid),
				strconv.FormatUint(iv.Start, 10),
				strconv.FormatUint(iv.End, 10),
				count(iv),
			}
			if err := table.Append(row); err != nil {
				return err
			}
		}
	}
	return table.Render()
}

// count renders the number of transactions in iv with thousands separators.
func count(iv replication.Interval) string {
	n := iv.End - iv.Start + 1
	if iv.Start == 0 && iv.End == math.MaxUint64 {
		return "18446744073709551616"
	}
	if n > math.MaxInt64 {
		return strconv.FormatUint(n, 10)
	}
	return humanize.Comma(int64(n))
}

func init() {
	Intervals.Flags().StringVar(&intervalsOptions.Source, "source", "", "Only print the intervals of this source id.")
}
