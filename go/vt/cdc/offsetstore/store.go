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

// Package offsetstore persists the last position a connector has committed,
// keyed by connector name.
//
// Implementations register themselves by name with RegisterFactory and are
// opened with Open. The built-in kinds are "memory", "file", "bolt" and
// "sqlite".
package offsetstore

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/gtidkit/gtidkit/go/mysql/replication"
	"github.com/gtidkit/gtidkit/go/vt/vterrors"
)

// Store is the interface offset stores implement. All methods must be safe
// for concurrent use.
type Store interface {
	// Load returns the position saved under name. It returns an error
	// with code NOT_FOUND if nothing was saved yet.
	Load(ctx context.Context, name string) (replication.PositionSet, error)

	// LoadRecord is like Load and also returns when the position was saved.
	LoadRecord(ctx context.Context, name string) (Record, error)

	// Save replaces the position saved under name.
	Save(ctx context.Context, name string, pos replication.PositionSet) error

	// Close releases the resources held by the store.
	Close() error
}

// Factory opens a Store from a kind-specific DSN.
type Factory func(dsn string) (Store, error)

var (
	factoriesMu sync.Mutex
	factories   = make(map[string]Factory)
)

// RegisterFactory adds a Store implementation under kind.
// If an implementation with that name already exists, panics.
// Call this in the 'init' function in your module.
func RegisterFactory(kind string, factory Factory) {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()
	if _, ok := factories[kind]; ok {
		panic(fmt.Sprintf("duplicate offsetstore factory registration for %q", kind))
	}
	factories[kind] = factory
}

// Kinds returns the registered store kinds, sorted.
func Kinds() []string {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()
	kinds := make([]string, 0, len(factories))
	for kind := range factories {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	return kinds
}

// Open opens a Store of the given kind.
func Open(kind, dsn string) (Store, error) {
	factoriesMu.Lock()
	factory, ok := factories[kind]
	factoriesMu.Unlock()
	if !ok {
		return nil, vterrors.Errorf(vterrors.InvalidArgument, "unknown offset store kind %q, expected one of %v", kind, Kinds())
	}
	store, err := factory(dsn)
	if err != nil {
		return nil, vterrors.Wrapf(err, "cannot open %s offset store", kind)
	}
	return store, nil
}

// Record is a saved position with the time it was saved.
type Record struct {
	Position  replication.PositionSet
	UpdatedAt time.Time
}

// record is the persisted form of a saved position.
type record struct {
	Position  string    `json:"position"`
	UpdatedAt time.Time `json:"updated_at"`
}

func newRecord(pos replication.PositionSet) record {
	return record{Position: pos.String(), UpdatedAt: time.Now().UTC()}
}

func (r record) decode(name string) (Record, error) {
	pos, err := replication.ParsePositionSet(r.Position)
	if err != nil {
		return Record{}, vterrors.Wrapf(err, "corrupt position saved for %q", name)
	}
	return Record{Position: pos, UpdatedAt: r.UpdatedAt}, nil
}

func notFound(name string) error {
	return vterrors.NewErrorf(vterrors.NotFound, vterrors.PositionNotFound, "no position saved for %q", name)
}

// IsNotFound reports whether err means nothing was saved under the name.
func IsNotFound(err error) bool {
	return vterrors.ErrState(err) == vterrors.PositionNotFound
}

func checkName(name string) error {
	if name == "" {
		return vterrors.New(vterrors.InvalidArgument, "empty connector name")
	}
	return nil
}
