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

// Package upstream reads the replication positions of the server a
// connector streams from.
package upstream

import (
	"context"

	"github.com/google/uuid"

	"github.com/gtidkit/gtidkit/go/mysql/replication"
	"github.com/gtidkit/gtidkit/go/vt/vterrors"
)

// Positions is a snapshot of the server's GTID state.
type Positions struct {
	// Executed is @@global.gtid_executed.
	Executed replication.PositionSet
	// Purged is @@global.gtid_purged, the transactions whose binlogs are gone.
	Purged replication.PositionSet
	// ServerUUID is @@global.server_uuid. It may be empty for static sources.
	ServerUUID string
}

// Source returns the current server positions.
type Source interface {
	Positions(ctx context.Context) (Positions, error)
}

// Static is a Source that always returns the same positions.
type Static Positions

// NewStatic parses the executed and purged sets into a Static source.
func NewStatic(executed, purged string) (Static, error) {
	e, err := replication.ParsePositionSet(executed)
	if err != nil {
		return Static{}, vterrors.Wrap(err, "executed")
	}
	p, err := replication.ParsePositionSet(purged)
	if err != nil {
		return Static{}, vterrors.Wrap(err, "purged")
	}
	return Static{Executed: e, Purged: p}, nil
}

// Positions is part of the Source interface.
func (s Static) Positions(ctx context.Context) (Positions, error) {
	if err := ctx.Err(); err != nil {
		return Positions{}, err
	}
	return Positions(s), nil
}

// ValidateSourceUUIDs checks that every source id in ps is a UUID, as is
// the case for sets reported by MySQL.
func ValidateSourceUUIDs(ps replication.PositionSet) error {
	for _, sid := range ps.Sources() {
		if _, err := uuid.Parse(string(sid)); err != nil {
			return vterrors.NewErrorf(vterrors.InvalidArgument, vterrors.MalformedToken, "source id %q is not a server UUID: %v", sid, err)
		}
	}
	return nil
}
