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

package offsetstore

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gtidkit/gtidkit/go/mysql/replication"
	"github.com/gtidkit/gtidkit/go/vt/vterrors"
)

const (
	uuid1 = "3e11fa47-71ca-11e1-9e33-c80aa9429562"
	uuid2 = "fbd8c4ef-c2e5-11e9-9b4d-0242ac110002"
)

// checkStore runs the behavior every Store implementation must have.
func checkStore(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	_, err := store.Load(ctx, "orders")
	require.Error(t, err)
	assert.True(t, IsNotFound(err), "got %v", err)
	assert.Equal(t, vterrors.NotFound, vterrors.Code(err))

	first := replication.MustParsePositionSet(uuid1 + ":1-5")
	before := time.Now()
	require.NoError(t, store.Save(ctx, "orders", first))
	got, err := store.Load(ctx, "orders")
	require.NoError(t, err)
	assert.True(t, first.Equal(got), "got %v", got)

	rec, err := store.LoadRecord(ctx, "orders")
	require.NoError(t, err)
	assert.True(t, first.Equal(rec.Position), "got %v", rec.Position)
	assert.WithinRange(t, rec.UpdatedAt, before.Add(-time.Second), time.Now().Add(time.Second))

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = store.Load(canceled, "orders")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, vterrors.Canceled, vterrors.Code(err))
	err = store.Save(canceled, "orders", replication.NewPositionSet())
	assert.ErrorIs(t, err, context.Canceled)
	got, err = store.Load(ctx, "orders")
	require.NoError(t, err)
	assert.True(t, first.Equal(got), "a canceled save must not write")

	second := replication.MustParsePositionSet(uuid1 + ":1-9:11," + uuid2 + ":1-3")
	require.NoError(t, store.Save(ctx, "orders", second))
	got, err = store.Load(ctx, "orders")
	require.NoError(t, err)
	assert.Equal(t, second.String(), got.String())

	// Names are independent, including ones that are not valid file names.
	odd := "billing/eu west"
	require.NoError(t, store.Save(ctx, odd, replication.NewPositionSet()))
	got, err = store.Load(ctx, odd)
	require.NoError(t, err)
	assert.True(t, got.IsEmpty())
	got, err = store.Load(ctx, "orders")
	require.NoError(t, err)
	assert.Equal(t, second.String(), got.String())

	err = store.Save(ctx, "", first)
	assert.Equal(t, vterrors.InvalidArgument, vterrors.Code(err))

	var wg sync.WaitGroup
	for i := uint64(1); i <= 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			pos := replication.NewPositionSet().Add(replication.SourceID(uuid2), replication.Interval{Start: 1, End: i})
			assert.NoError(t, store.Save(ctx, "concurrent", pos))
			_, err := store.Load(ctx, "concurrent")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	require.NoError(t, store.Close())
}

func TestMemory(t *testing.T) {
	checkStore(t, NewMemory())
}

func TestMemoryClosed(t *testing.T) {
	store := NewMemory()
	require.NoError(t, store.Close())
	err := store.Save(context.Background(), "orders", replication.NewPositionSet())
	assert.Equal(t, vterrors.FailedPrecondition, vterrors.Code(err))
}

func TestFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	store, err := NewFile(fs)
	require.NoError(t, err)
	checkStore(t, store)

	// No temporary files are left behind.
	matches, err := afero.Glob(fs, "/*.tmp")
	require.NoError(t, err)
	assert.Empty(t, matches)
	exists, err := afero.Exists(fs, "/orders.json")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestFileCorrupt(t *testing.T) {
	fs := afero.NewMemMapFs()
	store, err := NewFile(fs)
	require.NoError(t, err)
	require.NoError(t, afero.WriteFile(fs, "/orders.json", []byte(`{"position":"U:5-1"}`), 0o600))

	_, err = store.Load(context.Background(), "orders")
	require.Error(t, err)
	assert.Equal(t, vterrors.InvalidInterval, vterrors.ErrState(err))

	require.NoError(t, afero.WriteFile(fs, "/orders.json", []byte(`not json`), 0o600))
	_, err = store.Load(context.Background(), "orders")
	assert.ErrorContains(t, err, "corrupt position file")
}

func TestBolt(t *testing.T) {
	store, err := NewBolt(filepath.Join(t.TempDir(), "positions.db"))
	require.NoError(t, err)
	checkStore(t, store)
}

func TestBoltReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "positions.db")
	store, err := NewBolt(path)
	require.NoError(t, err)
	pos := replication.MustParsePositionSet(uuid1 + ":1-100")
	require.NoError(t, store.Save(context.Background(), "orders", pos))
	require.NoError(t, store.Close())

	store, err = NewBolt(path)
	require.NoError(t, err)
	defer store.Close()
	got, err := store.Load(context.Background(), "orders")
	require.NoError(t, err)
	assert.True(t, pos.Equal(got))
}

func TestSQLite(t *testing.T) {
	store, err := NewSQLite(context.Background(), filepath.Join(t.TempDir(), "positions.sqlite"))
	require.NoError(t, err)
	checkStore(t, store)
}

func TestOpen(t *testing.T) {
	assert.Equal(t, []string{"bolt", "file", "memory", "sqlite"}, Kinds())

	dir := t.TempDir()
	for kind, dsn := range map[string]string{
		"memory": "",
		"file":   dir,
		"bolt":   filepath.Join(dir, "positions.db"),
		"sqlite": filepath.Join(dir, "positions.sqlite"),
	} {
		t.Run(kind, func(t *testing.T) {
			store, err := Open(kind, dsn)
			require.NoError(t, err)
			ctx := context.Background()
			pos := replication.MustParsePositionSet(uuid1 + ":1-3")
			require.NoError(t, store.Save(ctx, "orders", pos))
			got, err := store.Load(ctx, "orders")
			require.NoError(t, err)
			assert.True(t, pos.Equal(got))
			require.NoError(t, store.Close())
		})
	}

	_, err := Open("etcd", "")
	assert.Equal(t, vterrors.InvalidArgument, vterrors.Code(err))
	_, err = Open("file", "")
	assert.ErrorContains(t, err, "cannot open file offset store")
	assert.Panics(t, func() { RegisterFactory("memory", nil) })
}
