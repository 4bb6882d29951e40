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
	"bytes"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gtidkit/gtidkit/go/mysql/replication"
	"github.com/gtidkit/gtidkit/go/vt/vterrors"
)

const (
	uuid1 = "3e11fa47-71ca-11e1-9e33-c80aa9429562"
	uuid2 = "fbd8c4ef-c2e5-11e9-9b4d-0242ac110002"
)

// resetFlags puts every flag of cmd and its children back to its default,
// since the commands are package level and keep state between runs.
func resetFlags(t *testing.T, cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			require.NoError(t, sv.Replace(nil))
		} else {
			require.NoError(t, f.Value.Set(f.DefValue))
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, child := range cmd.Commands() {
		resetFlags(t, child)
	}
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(t, Root)
	var out bytes.Buffer
	Root.SetOut(&out)
	Root.SetErr(&out)
	Root.SetArgs(args)
	err := Root.Execute()
	return out.String(), err
}

func TestParse(t *testing.T) {
	out, err := run(t, "parse", "U:1-191:192-199:1000-1033:1035-1036:1038-1039")
	require.NoError(t, err)
	assert.Equal(t, "U:1-199:1000-1033:1035-1036:1038-1039\n", out)

	_, err = run(t, "parse", "U:10-1")
	assert.Equal(t, vterrors.InvalidInterval, vterrors.ErrState(err))

	_, err = run(t, "parse")
	assert.Error(t, err)
}

func TestAlgebra(t *testing.T) {
	out, err := run(t, "union", "U:1-100", "U:101-150,V:1")
	require.NoError(t, err)
	assert.Equal(t, "U:1-150,V:1\n", out)

	out, err = run(t, "subtract", "U:1-200", "U:1-100")
	require.NoError(t, err)
	assert.Equal(t, "U:101-200\n", out)

	out, err = run(t, "subtract", "U:1-100", "U:1-100")
	require.NoError(t, err)
	assert.Equal(t, "\n", out)
}

func TestContains(t *testing.T) {
	out, err := run(t, "contains", "U:1-100", "U:1-100,V:1-50")
	require.NoError(t, err)
	assert.Equal(t, "contained\n", out)

	out, err = run(t, "contains", "U:1-250", "U:1-200")
	assert.ErrorIs(t, err, ErrFalse)
	assert.Equal(t, "not contained, missing: U:201-250\n", out)

	out, err = run(t, "contains", "-q", "U:1-100,V:1-50", "U:1-100")
	assert.ErrorIs(t, err, ErrFalse)
	assert.Empty(t, out)
}

func TestEqual(t *testing.T) {
	out, err := run(t, "equal", "U:1-5,V:1", "V:1,U:1-3:4-5")
	require.NoError(t, err)
	assert.Equal(t, "equal\n", out)

	out, err = run(t, "equal", "U:1-5", "U:1-6")
	assert.ErrorIs(t, err, ErrFalse)
	assert.Equal(t, "different\n", out)
}

func TestIntervals(t *testing.T) {
	out, err := run(t, "intervals", uuid1+":1-191:192-199:1000-1033,"+uuid2+":1-12345")
	require.NoError(t, err)
	for _, want := range []string{uuid1[:8], uuid2[:8], "199", "1000", "1033", "34", "12,345"} {
		assert.Contains(t, out, want)
	}

	out, err = run(t, "intervals", "--source", uuid2, uuid1+":1-5,"+uuid2+":7")
	require.NoError(t, err)
	assert.Contains(t, out, uuid2[:8])
	assert.NotContains(t, out, uuid1[:8])
}

func TestCount(t *testing.T) {
	assert.Equal(t, "1", count(replication.Interval{Start: 7, End: 7}))
	assert.Equal(t, "1,000,000", count(replication.Interval{Start: 1, End: 1000000}))
	assert.Equal(t, "18446744073709551615", count(replication.Interval{Start: 1, End: math.MaxUint64}))
	assert.Equal(t, "18446744073709551616", count(replication.Interval{Start: 0, End: math.MaxUint64}))
}

func TestDecide(t *testing.T) {
	out, err := run(t, "decide", "--recorded", "U:1-100", "--executed", "U:1-200")
	require.NoError(t, err)
	assert.Contains(t, out, "mode: stream\n")
	assert.Contains(t, out, "pending: U:101-200\n")

	out, err = run(t, "decide", "--recorded", "U:1-100", "--executed", "U:1-200", "--purged", "U:1-150")
	require.NoError(t, err)
	assert.Contains(t, out, "mode: snapshot\n")
	assert.Contains(t, out, "purged: U:101-150\n")

	out, err = run(t, "decide", "--fail-on-snapshot", "--recorded", "U:1-100,V:1-50", "--executed", "U:1-100")
	assert.ErrorIs(t, err, ErrFalse)
	assert.Contains(t, out, "unknown to server: V:1-50\n")

	out, err = run(t, "decide", "--recorded", "U:1-100,V:1-50", "--executed", "U:1-100", "--source-exclude", "V")
	require.NoError(t, err)
	assert.Contains(t, out, "mode: stream\n")

	_, err = run(t, "decide", "--require-uuids", "--recorded", "U:1", "--executed", "U:1")
	assert.Equal(t, vterrors.InvalidArgument, vterrors.Code(err))

	_, err = run(t, "decide", "--upstream-dsn", "root@tcp(127.0.0.1:1)/", "--executed", "U:1")
	assert.Equal(t, vterrors.InvalidArgument, vterrors.Code(err))
}

func TestCheckpoint(t *testing.T) {
	dir := t.TempDir()
	store := []string{"--store-kind", "file", "--store-dsn", dir, "--connector", "orders"}

	_, err := run(t, append([]string{"checkpoint", "get"}, store...)...)
	assert.Equal(t, vterrors.PositionNotFound, vterrors.ErrState(err))

	out, err := run(t, append([]string{"decide", "--executed", uuid1 + ":1-10"}, store...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "reason: no recorded position\n")

	out, err = run(t, append([]string{"checkpoint", "put", uuid1 + ":1-5"}, store...)...)
	require.NoError(t, err)
	assert.Equal(t, uuid1+":1-5\n", out)

	out, err = run(t, append([]string{"checkpoint", "put", "--merge", uuid1 + ":6-7"}, store...)...)
	require.NoError(t, err)
	assert.Equal(t, uuid1+":1-7\n", out)

	out, err = run(t, append([]string{"checkpoint", "get"}, store...)...)
	require.NoError(t, err)
	assert.Equal(t, uuid1+":1-7\n", out)

	out, err = run(t, append([]string{"checkpoint", "get", "--show-time"}, store...)...)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, uuid1+":1-7", lines[0])
	savedAt, err := time.Parse(time.RFC3339, strings.TrimPrefix(lines[1], "saved at: "))
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now(), savedAt, time.Minute)

	out, err = run(t, append([]string{"decide", "--executed", uuid1 + ":1-10"}, store...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "pending: "+uuid1+":8-10\n")

	// Non-UUID source ids are rejected whether the position comes from
	// the store or the server.
	out, err = run(t, append([]string{"decide", "--require-uuids", "--executed", uuid1 + ":1-10,U:1"}, store...)...)
	assert.Equal(t, vterrors.InvalidArgument, vterrors.Code(err))
	assert.Empty(t, out)

	_, err = run(t, append([]string{"checkpoint", "put", "U:1-5"}, store...)...)
	require.NoError(t, err)
	out, err = run(t, append([]string{"decide", "--require-uuids", "--executed", uuid1 + ":1-10"}, store...)...)
	assert.ErrorContains(t, err, "recorded position of orders")
	assert.Equal(t, vterrors.MalformedToken, vterrors.ErrState(err))
	assert.Empty(t, out)
}

func TestCheckpointMergeKeepsCorruptRecord(t *testing.T) {
	dir := t.TempDir()
	store := []string{"--store-kind", "file", "--store-dsn", dir, "--connector", "orders"}
	record := filepath.Join(dir, "orders.json")
	corrupt := []byte(`{"position":"U:1-1000:garbage"}`)
	require.NoError(t, os.WriteFile(record, corrupt, 0o600))

	out, err := run(t, append([]string{"checkpoint", "put", "--merge", "U:2000"}, store...)...)
	assert.ErrorContains(t, err, "cannot merge with the recorded position of orders")
	assert.Equal(t, vterrors.InvalidInterval, vterrors.ErrState(err))
	assert.Empty(t, out)

	data, err := os.ReadFile(record)
	require.NoError(t, err)
	assert.Equal(t, corrupt, data)

	// Without a recorded position, --merge stores the argument.
	out, err = run(t, "checkpoint", "put", "--merge", "U:2000", "--store-kind", "file", "--store-dsn", dir, "--connector", "billing")
	require.NoError(t, err)
	assert.Equal(t, "U:2000\n", out)
}

func TestConfigSources(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("GTIDCTL_STORE_KIND", "bolt")
	t.Setenv("GTIDCTL_STORE_DSN", filepath.Join(dir, "positions.db"))

	config := filepath.Join(dir, "gtidctl.yaml")
	require.NoError(t, os.WriteFile(config, []byte("connector: billing\nstore-kind: sqlite\n"), 0o600))

	out, err := run(t, "--config", config, "checkpoint", "put", uuid2+":1-3")
	require.NoError(t, err)
	assert.Equal(t, uuid2+":1-3\n", out)
	assert.Equal(t, "bolt", storeOptions.Kind, "environment wins over the config file")
	assert.Equal(t, "billing", storeOptions.Connector)

	// Command line flags win over both.
	_, err = run(t, "--config", config, "--connector", "orders", "checkpoint", "get")
	assert.Equal(t, vterrors.PositionNotFound, vterrors.ErrState(err))

	out, err = run(t, "--config", config, "checkpoint", "get")
	require.NoError(t, err)
	assert.Equal(t, uuid2+":1-3\n", out)

	_, err = run(t, "--config", filepath.Join(dir, "missing.yaml"), "parse", "U:1")
	assert.Error(t, err)
}
