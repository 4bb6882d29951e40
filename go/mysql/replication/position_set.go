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

package replication

import (
	"encoding/json"
	"strings"
)

// SourceID identifies one upstream server instance whose transactions are
// tracked, typically its server_uuid. It is compared as an opaque token.
type SourceID string

// PositionSet is the full replicated-transaction position: an ordered
// mapping from source to the IntervalSet of transactions recorded for it.
//
// Sources keep the order in which they were first seen. That order is
// part of the canonical string form; algebra operations never reorder
// existing sources and append new ones at the end. No source ever maps to
// an empty IntervalSet.
//
// PositionSet is an immutable value. The zero value is the empty set.
type PositionSet struct {
	sources []SourceID
	sets    map[SourceID]IntervalSet
}

// NewPositionSet returns the empty PositionSet.
func NewPositionSet() PositionSet {
	return PositionSet{}
}

// clone returns a copy whose key slice and map may be modified.
func (ps PositionSet) clone(extra int) PositionSet {
	out := PositionSet{
		sources: make([]SourceID, len(ps.sources), len(ps.sources)+extra),
		sets:    make(map[SourceID]IntervalSet, len(ps.sources)+extra),
	}
	copy(out.sources, ps.sources)
	for sid, set := range ps.sets {
		out.sets[sid] = set
	}
	return out
}

// put sets the interval set of sid on a PositionSet under construction.
func (ps *PositionSet) put(sid SourceID, set IntervalSet) {
	if set.IsEmpty() {
		return
	}
	if _, ok := ps.sets[sid]; !ok {
		ps.sources = append(ps.sources, sid)
	}
	ps.sets[sid] = set
}

// Add returns a new PositionSet that also records iv for sid.
func (ps PositionSet) Add(sid SourceID, iv Interval) PositionSet {
	if iv.Start > iv.End {
		return ps
	}
	out := ps.clone(1)
	out.put(sid, out.sets[sid].Insert(iv))
	return out
}

// AddGTID returns a new PositionSet that also records gtid.
func (ps PositionSet) AddGTID(gtid GTID) PositionSet {
	return ps.Add(gtid.Source, Interval{Start: gtid.Sequence, End: gtid.Sequence})
}

// Union returns the transactions present in ps or other. Sources of ps keep
// their position; sources only found in other are appended in other's
// order.
func (ps PositionSet) Union(other PositionSet) PositionSet {
	if other.IsEmpty() {
		return ps
	}
	out := ps.clone(len(other.sources))
	for _, sid := range other.sources {
		out.put(sid, out.sets[sid].Union(other.sets[sid]))
	}
	return out
}

// IsContainedWithin reports whether every transaction recorded in ps is
// also recorded in other.
//
// A source known to other but absent from ps does not matter. A source
// recorded in ps but unknown to other makes the result false: the server
// no longer reports transactions the caller has already seen.
func (ps PositionSet) IsContainedWithin(other PositionSet) bool {
	for _, sid := range ps.sources {
		theirs, ok := other.sets[sid]
		if !ok || !ps.sets[sid].IsSubsetOf(theirs) {
			return false
		}
	}
	return true
}

// Contains reports whether every transaction recorded in other is also
// recorded in ps. It is the mirror of IsContainedWithin.
func (ps PositionSet) Contains(other PositionSet) bool {
	return other.IsContainedWithin(ps)
}

// ContainsGTID reports whether gtid is recorded in ps.
func (ps PositionSet) ContainsGTID(gtid GTID) bool {
	set, ok := ps.sets[gtid.Source]
	return ok && set.ContainsSequence(gtid.Sequence)
}

// Subtract returns the transactions present in ps but not in other.
// Sources keep the order of ps; sources left with nothing are dropped.
func (ps PositionSet) Subtract(other PositionSet) PositionSet {
	if ps.IsEmpty() || other.IsEmpty() {
		return ps
	}
	out := PositionSet{sets: make(map[SourceID]IntervalSet, len(ps.sources))}
	for _, sid := range ps.sources {
		out.put(sid, ps.sets[sid].Subtract(other.sets[sid]))
	}
	return out
}

// Retain returns the PositionSet restricted to the sources for which keep
// returns true.
func (ps PositionSet) Retain(keep func(SourceID) bool) PositionSet {
	out := PositionSet{sets: make(map[SourceID]IntervalSet, len(ps.sources))}
	for _, sid := range ps.sources {
		if keep(sid) {
			out.put(sid, ps.sets[sid])
		}
	}
	return out
}

// Equal reports whether ps and other record the same transactions for the
// same sources. Source order is ignored.
func (ps PositionSet) Equal(other PositionSet) bool {
	if len(ps.sources) != len(other.sources) {
		return false
	}
	for _, sid := range ps.sources {
		theirs, ok := other.sets[sid]
		if !ok || !ps.sets[sid].Equal(theirs) {
			return false
		}
	}
	return true
}

// IntervalsFor returns the ordered intervals recorded for sid, or nil if
// sid is unknown.
func (ps PositionSet) IntervalsFor(sid SourceID) []Interval {
	set, ok := ps.sets[sid]
	if !ok {
		return nil
	}
	return set.Intervals()
}

// IntervalSetFor returns the IntervalSet recorded for sid.
func (ps PositionSet) IntervalSetFor(sid SourceID) (IntervalSet, bool) {
	set, ok := ps.sets[sid]
	return set, ok
}

// Sources returns the sources in canonical order.
func (ps PositionSet) Sources() []SourceID {
	out := make([]SourceID, len(ps.sources))
	copy(out, ps.sources)
	return out
}

// Len returns the number of sources.
func (ps PositionSet) Len() int {
	return len(ps.sources)
}

// IsEmpty reports whether no transaction is recorded.
func (ps PositionSet) IsEmpty() bool {
	return len(ps.sources) == 0
}

// Last returns the highest GTID recorded for the last source, as
// "source:sequence", or "" when ps is empty.
func (ps PositionSet) Last() string {
	if ps.IsEmpty() {
		return ""
	}
	sid := ps.sources[len(ps.sources)-1]
	iv, _ := ps.sets[sid].Highest()
	return GTID{Source: sid, Sequence: iv.End}.String()
}

// String returns the canonical form: sources in order, each followed by
// its ':'-joined intervals, sources joined by ','.
func (ps PositionSet) String() string {
	var b strings.Builder
	for i, sid := range ps.sources {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(string(sid))
		b.WriteByte(':')
		ps.sets[sid].writeTo(&b)
	}
	return b.String()
}

// MarshalText implements encoding.TextMarshaler.
func (ps PositionSet) MarshalText() ([]byte, error) {
	return []byte(ps.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. It is meant for
// decoding into a fresh value.
func (ps *PositionSet) UnmarshalText(text []byte) error {
	parsed, err := ParsePositionSet(string(text))
	if err != nil {
		return err
	}
	*ps = parsed
	return nil
}

// MarshalJSON encodes the canonical form as a JSON string.
func (ps PositionSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(ps.String())
}

// UnmarshalJSON decodes a JSON string holding the canonical form.
func (ps *PositionSet) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	return ps.UnmarshalText([]byte(s))
}
