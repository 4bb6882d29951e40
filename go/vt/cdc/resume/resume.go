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

// Package resume decides whether a connector can continue streaming from
// its last recorded position or has to take a new snapshot.
package resume

import (
	"context"

	"github.com/gtidkit/gtidkit/go/mysql/replication"
	"github.com/gtidkit/gtidkit/go/vt/cdc/offsetstore"
	"github.com/gtidkit/gtidkit/go/vt/cdc/upstream"
	"github.com/gtidkit/gtidkit/go/vt/log"
	"github.com/gtidkit/gtidkit/go/vt/vterrors"
)

// Mode is how a connector should start.
type Mode int

const (
	// Stream resumes replication right after the recorded position.
	Stream Mode = iota
	// Snapshot discards the recorded position and copies the data again.
	Snapshot
)

func (m Mode) String() string {
	if m == Stream {
		return "stream"
	}
	return "snapshot"
}

// Reason explains a Snapshot decision.
type Reason int

const (
	// None is the reason of every Stream decision.
	None Reason = iota
	// NotContained means the recorded position has transactions the
	// server never executed, typically after a failover to another host
	// or when a source was removed.
	NotContained
	// Purged means the server already purged binlogs the connector has
	// not read yet.
	Purged
	// NoRecordedPosition means nothing was saved for the connector.
	NoRecordedPosition
)

var reasonNames = [...]string{
	None:               "none",
	NotContained:       "recorded position not contained in gtid_executed",
	Purged:             "required transactions were purged",
	NoRecordedPosition: "no recorded position",
}

func (r Reason) String() string {
	if int(r) < len(reasonNames) {
		return reasonNames[r]
	}
	return "unknown"
}

// Decision is the outcome of comparing a recorded position to the server.
type Decision struct {
	Mode   Mode
	Reason Reason

	// Recorded and Executed are the filtered sets the decision was made on.
	Recorded replication.PositionSet
	Executed replication.PositionSet

	// Pending is what the server executed after Recorded. Only set for Stream.
	Pending replication.PositionSet
	// Unknown is the part of Recorded the server does not have.
	Unknown replication.PositionSet
	// PurgedNeeded is the purged part of the server history the connector
	// has not seen.
	PurgedNeeded replication.PositionSet
}

// Decide compares the recorded position with the server state. A failed
// containment check is a Snapshot decision, not an error.
func Decide(recorded replication.PositionSet, server upstream.Positions, filter *Filter) Decision {
	d := Decision{
		Recorded: filter.Apply(recorded),
		Executed: filter.Apply(server.Executed),
	}
	purged := filter.Apply(server.Purged)

	if !d.Recorded.IsContainedWithin(d.Executed) {
		d.Mode = Snapshot
		d.Reason = NotContained
		d.Unknown = d.Recorded.Subtract(d.Executed)
		return d
	}
	if d.PurgedNeeded = purged.Subtract(d.Recorded); !d.PurgedNeeded.IsEmpty() {
		d.Mode = Snapshot
		d.Reason = Purged
		return d
	}
	d.Mode = Stream
	d.Pending = d.Executed.Subtract(d.Recorded)
	return d
}

// Resolver combines an offset store and an upstream source.
type Resolver struct {
	Store  offsetstore.Store
	Source upstream.Source
	Filter *Filter

	// Validate, when set, is applied to the server's executed and purged
	// sets and to the recorded position. Its error aborts Resolve.
	Validate func(replication.PositionSet) error
}

func (r *Resolver) validate(what string, ps replication.PositionSet) error {
	if r.Validate == nil {
		return nil
	}
	if err := r.Validate(ps); err != nil {
		return vterrors.Wrap(err, what)
	}
	return nil
}

// Resolve decides how the connector called name should start.
func (r *Resolver) Resolve(ctx context.Context, name string) (Decision, error) {
	server, err := r.Source.Positions(ctx)
	if err != nil {
		return Decision{}, vterrors.Wrap(err, "cannot read upstream positions")
	}
	if err := r.validate("gtid_executed", server.Executed); err != nil {
		return Decision{}, err
	}
	if err := r.validate("gtid_purged", server.Purged); err != nil {
		return Decision{}, err
	}

	recorded, err := r.Store.Load(ctx, name)
	if offsetstore.IsNotFound(err) {
		log.Infof("connector %s has no recorded position, a snapshot is required", name)
		return Decision{
			Mode:     Snapshot,
			Reason:   NoRecordedPosition,
			Executed: r.Filter.Apply(server.Executed),
		}, nil
	}
	if err != nil {
		return Decision{}, vterrors.Wrapf(err, "cannot load recorded position for %s", name)
	}
	if err := r.validate("recorded position of "+name, recorded); err != nil {
		return Decision{}, err
	}

	d := Decide(recorded, server, r.Filter)
	switch d.Reason {
	case NotContained:
		log.Warningf("connector %s: %v, unknown transactions %v", name, d.Reason, d.Unknown)
	case Purged:
		log.Warningf("connector %s: %v, missing %v", name, d.Reason, d.PurgedNeeded)
	default:
		log.Infof("connector %s resumes streaming after %v", name, d.Recorded)
	}
	return d, nil
}
