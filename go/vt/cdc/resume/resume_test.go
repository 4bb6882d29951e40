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

package resume

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gtidkit/gtidkit/go/mysql/replication"
	"github.com/gtidkit/gtidkit/go/vt/cdc/offsetstore"
	"github.com/gtidkit/gtidkit/go/vt/cdc/upstream"
	"github.com/gtidkit/gtidkit/go/vt/vterrors"
)

func server(t *testing.T, executed, purged string) upstream.Positions {
	t.Helper()
	src, err := upstream.NewStatic(executed, purged)
	require.NoError(t, err)
	return upstream.Positions(src)
}

func TestDecide(t *testing.T) {
	testcases := []struct {
		name     string
		recorded string
		executed string
		purged   string
		filter   FilterConfig

		mode         Mode
		reason       Reason
		pending      string
		unknown      string
		purgedNeeded string
	}{{
		name:     "contained",
		recorded: "U:1-100",
		executed: "U:1-200",
		mode:     Stream,
		pending:  "U:101-200",
	}, {
		name:     "caught up",
		recorded: "U:1-200",
		executed: "U:1-200",
		mode:     Stream,
	}, {
		name:     "ahead of server",
		recorded: "U:1-250",
		executed: "U:1-200",
		mode:     Snapshot,
		reason:   NotContained,
		unknown:  "U:201-250",
	}, {
		name:     "server has extra source",
		recorded: "U:1-100",
		executed: "U:1-100,V:1-50",
		mode:     Stream,
		pending:  "V:1-50",
	}, {
		name:     "source missing on server",
		recorded: "U:1-100,V:1-50",
		executed: "U:1-100",
		mode:     Snapshot,
		reason:   NotContained,
		unknown:  "V:1-50",
	}, {
		name:     "purged already seen",
		recorded: "U:1-100",
		executed: "U:1-200",
		purged:   "U:1-80",
		mode:     Stream,
		pending:  "U:101-200",
	}, {
		name:         "purged unseen",
		recorded:     "U:1-100",
		executed:     "U:1-200",
		purged:       "U:1-150",
		mode:         Snapshot,
		reason:       Purged,
		purgedNeeded: "U:101-150",
	}, {
		name:     "excluded source ignored",
		recorded: "U:1-100,V:1-50",
		executed: "U:1-100",
		purged:   "W:1-10",
		filter:   FilterConfig{Exclude: []string{"V", "W"}},
		mode:     Stream,
	}, {
		name:     "included source only",
		recorded: "U:1-100",
		executed: "U:1-300,V:1-50",
		filter:   FilterConfig{Include: []string{"U"}},
		mode:     Stream,
		pending:  "U:101-300",
	}, {
		name:     "empty recorded",
		recorded: "",
		executed: "U:1-10",
		mode:     Stream,
		pending:  "U:1-10",
	}}

	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			filter, err := NewFilter(tc.filter)
			require.NoError(t, err)
			d := Decide(replication.MustParsePositionSet(tc.recorded), server(t, tc.executed, tc.purged), filter)
			assert.Equal(t, tc.mode, d.Mode)
			assert.Equal(t, tc.reason, d.Reason)
			assert.Equal(t, tc.pending, d.Pending.String())
			assert.Equal(t, tc.unknown, d.Unknown.String())
			assert.Equal(t, tc.purgedNeeded, d.PurgedNeeded.String())
		})
	}
}

func TestFilter(t *testing.T) {
	ps := replication.MustParsePositionSet("db-a1:1-5,db-a2:1,db-b1:7")

	f, err := NewFilter(FilterConfig{Include: []string{"db-a.*"}})
	require.NoError(t, err)
	assert.Equal(t, "db-a1:1-5,db-a2:1", f.Apply(ps).String())
	assert.True(t, f.Match("db-a9"))
	assert.False(t, f.Match("xdb-a9"))

	f, err = NewFilter(FilterConfig{Exclude: []string{"db-a1", " "}})
	require.NoError(t, err)
	assert.Equal(t, "db-a2:1,db-b1:7", f.Apply(ps).String())

	f, err = NewFilter(FilterConfig{})
	require.NoError(t, err)
	assert.Nil(t, f)
	assert.True(t, f.Match("anything"))
	assert.True(t, ps.Equal(f.Apply(ps)))

	_, err = NewFilter(FilterConfig{Include: []string{"a"}, Exclude: []string{"b"}})
	assert.Equal(t, vterrors.InvalidArgument, vterrors.Code(err))
	_, err = NewFilter(FilterConfig{Include: []string{"("}})
	assert.ErrorContains(t, err, `invalid source pattern "("`)
}

type failingSource struct{ err error }

func (f failingSource) Positions(context.Context) (upstream.Positions, error) {
	return upstream.Positions{}, f.err
}

func TestResolver(t *testing.T) {
	ctx := context.Background()
	store := offsetstore.NewMemory()
	src, err := upstream.NewStatic("U:1-200", "U:1-50")
	require.NoError(t, err)
	r := &Resolver{Store: store, Source: src}

	d, err := r.Resolve(ctx, "orders")
	require.NoError(t, err)
	assert.Equal(t, Snapshot, d.Mode)
	assert.Equal(t, NoRecordedPosition, d.Reason)
	assert.Equal(t, "U:1-200", d.Executed.String())

	require.NoError(t, store.Save(ctx, "orders", replication.MustParsePositionSet("U:1-120")))
	d, err = r.Resolve(ctx, "orders")
	require.NoError(t, err)
	assert.Equal(t, Stream, d.Mode)
	assert.Equal(t, "U:121-200", d.Pending.String())

	require.NoError(t, store.Save(ctx, "orders", replication.MustParsePositionSet("U:1-20")))
	d, err = r.Resolve(ctx, "orders")
	require.NoError(t, err)
	assert.Equal(t, Snapshot, d.Mode)
	assert.Equal(t, Purged, d.Reason)
	assert.Equal(t, "U:21-50", d.PurgedNeeded.String())

	boom := errors.New("connection refused")
	_, err = (&Resolver{Store: store, Source: failingSource{boom}}).Resolve(ctx, "orders")
	assert.ErrorIs(t, err, boom)

	require.NoError(t, store.Close())
	_, err = r.Resolve(ctx, "orders")
	assert.ErrorContains(t, err, "cannot load recorded position for orders")
}

func TestResolverValidate(t *testing.T) {
	ctx := context.Background()
	const uuid1 = "3e11fa47-71ca-11e1-9e33-c80aa9429562"
	store := offsetstore.NewMemory()
	src, err := upstream.NewStatic(uuid1+":1-10", "")
	require.NoError(t, err)
	r := &Resolver{Store: store, Source: src, Validate: upstream.ValidateSourceUUIDs}

	require.NoError(t, store.Save(ctx, "orders", replication.MustParsePositionSet(uuid1+":1-5")))
	d, err := r.Resolve(ctx, "orders")
	require.NoError(t, err)
	assert.Equal(t, Stream, d.Mode)

	require.NoError(t, store.Save(ctx, "orders", replication.MustParsePositionSet("U:1-5")))
	_, err = r.Resolve(ctx, "orders")
	assert.ErrorContains(t, err, "recorded position of orders")
	assert.Equal(t, vterrors.MalformedToken, vterrors.ErrState(err))

	src, err = upstream.NewStatic(uuid1+":1-10", "U:1")
	require.NoError(t, err)
	r.Source = src
	_, err = r.Resolve(ctx, "billing")
	assert.ErrorContains(t, err, "gtid_purged")
	assert.Equal(t, vterrors.InvalidArgument, vterrors.Code(err))
}

func TestStrings(t *testing.T) {
	assert.Equal(t, "stream", Stream.String())
	assert.Equal(t, "snapshot", Snapshot.String())
	assert.Equal(t, "required transactions were purged", Purged.String())
	assert.Equal(t, "unknown", Reason(42).String())
}
