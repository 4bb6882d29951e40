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

// Package tracker holds the current replication position of a connector.
//
// The streaming loop is the single writer: it calls Advance or Publish as
// transactions are applied. Any number of readers call Current and always
// get a complete PositionSet, since each publish swaps one immutable value.
// A background loop started with Run saves the position to an offset store.
package tracker

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gtidkit/gtidkit/go/mysql/replication"
	"github.com/gtidkit/gtidkit/go/vt/cdc/offsetstore"
	"github.com/gtidkit/gtidkit/go/vt/log"
	"github.com/gtidkit/gtidkit/go/vt/vterrors"
)

// DefaultInterval is used when Config.Interval is not set.
const DefaultInterval = 10 * time.Second

// Config configures a Tracker.
type Config struct {
	// Name is the connector name, used as the offset store key.
	Name string
	// Interval is the period between two checkpoints in Run.
	Interval time.Duration
}

// Tracker publishes and checkpoints the current position of one connector.
type Tracker struct {
	cfg     Config
	store   offsetstore.Store
	metrics *Metrics

	current atomic.Pointer[replication.PositionSet]

	// mu serializes checkpoints. saved is the last position written.
	mu    sync.Mutex
	saved *replication.PositionSet
}

// New returns a Tracker starting at initial. If metrics is nil, the
// collectors are created without being registered.
func New(cfg Config, store offsetstore.Store, initial replication.PositionSet, metrics *Metrics) (*Tracker, error) {
	if cfg.Name == "" {
		return nil, vterrors.New(vterrors.InvalidArgument, "tracker needs a connector name")
	}
	if store == nil {
		return nil, vterrors.New(vterrors.InvalidArgument, "tracker needs an offset store")
	}
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	t := &Tracker{cfg: cfg, store: store, metrics: metrics}
	t.current.Store(&initial)
	t.metrics.sources.WithLabelValues(cfg.Name).Set(float64(initial.Len()))
	return t, nil
}

// Current returns the last published position.
func (t *Tracker) Current() replication.PositionSet {
	return *t.current.Load()
}

// Publish makes ps the current position.
func (t *Tracker) Publish(ps replication.PositionSet) {
	t.current.Store(&ps)
	t.metrics.publishes.WithLabelValues(t.cfg.Name).Inc()
	t.metrics.sources.WithLabelValues(t.cfg.Name).Set(float64(ps.Len()))
}

// Advance adds gtid to the current position and publishes the result.
// Only the streaming loop may call it.
func (t *Tracker) Advance(gtid replication.GTID) replication.PositionSet {
	next := t.Current().AddGTID(gtid)
	t.Publish(next)
	return next
}

// Checkpoint saves the current position if it changed since the last
// successful save. It reports whether anything was written.
func (t *Tracker) Checkpoint(ctx context.Context) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	pos := t.current.Load()
	// Equal ignores source order but the stored text does not.
	if t.saved != nil && (t.saved == pos || t.saved.String() == pos.String()) {
		return false, nil
	}
	if err := t.store.Save(ctx, t.cfg.Name, *pos); err != nil {
		t.metrics.checkpointErrors.WithLabelValues(t.cfg.Name).Inc()
		return false, vterrors.Wrapf(err, "checkpoint of %s failed", t.cfg.Name)
	}
	t.saved = pos
	t.metrics.checkpoints.WithLabelValues(t.cfg.Name).Inc()
	t.metrics.lastCheckpoint.WithLabelValues(t.cfg.Name).SetToCurrentTime()
	log.V(1).Infof("checkpointed %s at %v", t.cfg.Name, pos)
	return true, nil
}

// Run checkpoints every Interval until ctx is done, then writes a final
// checkpoint. Failed periodic checkpoints are logged and retried on the
// next tick; the error of the final one is returned.
func (t *Tracker) Run(ctx context.Context) error {
	ticker := time.NewTicker(t.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			// The caller's context is gone, give the final save its own.
			final, cancel := context.WithTimeout(context.WithoutCancel(ctx), t.cfg.Interval)
			defer cancel()
			_, err := t.Checkpoint(final)
			return err
		case <-ticker.C:
			if _, err := t.Checkpoint(ctx); err != nil {
				log.Warningf("%v", err)
			}
		}
	}
}
