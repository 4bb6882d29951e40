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
	"sync"

	"github.com/gtidkit/gtidkit/go/mysql/replication"
	"github.com/gtidkit/gtidkit/go/vt/vterrors"
)

func init() {
	RegisterFactory("memory", func(string) (Store, error) {
		return NewMemory(), nil
	})
}

// Memory is a Store that keeps positions in process memory.
type Memory struct {
	mu      sync.RWMutex
	records map[string]record
	closed  bool
}

// NewMemory returns an empty Memory store.
func NewMemory() *Memory {
	return &Memory{records: make(map[string]record)}
}

// Load is part of the Store interface.
func (m *Memory) Load(ctx context.Context, name string) (replication.PositionSet, error) {
	rec, err := m.LoadRecord(ctx, name)
	return rec.Position, err
}

// LoadRecord is part of the Store interface.
func (m *Memory) LoadRecord(ctx context.Context, name string) (Record, error) {
	if err := checkName(name); err != nil {
		return Record{}, err
	}
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return Record{}, errClosed
	}
	rec, ok := m.records[name]
	if !ok {
		return Record{}, notFound(name)
	}
	return rec.decode(name)
}

// Save is part of the Store interface.
func (m *Memory) Save(ctx context.Context, name string, pos replication.PositionSet) error {
	if err := checkName(name); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return errClosed
	}
	m.records[name] = newRecord(pos)
	return nil
}

// Close is part of the Store interface.
func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

var errClosed = vterrors.New(vterrors.FailedPrecondition, "offset store is closed")
