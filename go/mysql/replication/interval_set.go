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
	"math"
	"slices"
	"sort"
	"strings"
)

// IntervalSet is the set of transaction numbers recorded for one source,
// kept as intervals sorted by Start with no two intervals overlapping or
// adjacent.
//
// IntervalSet is an immutable value: every operation that looks like it
// modifies the set returns a new one, so values may be shared freely
// between goroutines.
type IntervalSet struct {
	intervals []Interval
}

// NewIntervalSet returns the set holding the union of ivs. The intervals
// may be given in any order.
func NewIntervalSet(ivs ...Interval) IntervalSet {
	var s IntervalSet
	for _, iv := range ivs {
		s = s.Insert(iv)
	}
	return s
}

// Insert returns a new set that also covers iv. Every stored interval that
// overlaps or is adjacent to iv is absorbed into a single interval, which
// includes the case where iv bridges several stored intervals.
// An Interval with Start > End is empty and inserting it is a no-op.
func (s IntervalSet) Insert(iv Interval) IntervalSet {
	if iv.Start > iv.End {
		return s
	}
	ivs := s.intervals
	n := len(ivs)

	// lo is the first interval that ends no earlier than one before iv.
	lo := sort.Search(n, func(i int) bool {
		return ivs[i].End == math.MaxUint64 || ivs[i].End+1 >= iv.Start
	})
	// hi is the first interval that starts strictly after one past iv.
	hi := sort.Search(n, func(i int) bool {
		return iv.End != math.MaxUint64 && ivs[i].Start > iv.End+1
	})

	merged := iv
	for _, cur := range ivs[lo:hi] {
		merged.Start = min(merged.Start, cur.Start)
		merged.End = max(merged.End, cur.End)
	}

	out := make([]Interval, 0, n-(hi-lo)+1)
	out = append(out, ivs[:lo]...)
	out = append(out, merged)
	out = append(out, ivs[hi:]...)
	return IntervalSet{intervals: out}
}

// Union returns the set of numbers present in s or other.
func (s IntervalSet) Union(other IntervalSet) IntervalSet {
	if len(s.intervals) == 0 {
		return other
	}
	for _, iv := range other.intervals {
		s = s.Insert(iv)
	}
	return s
}

// Contains reports whether a single stored interval covers all of iv.
// Coverage is never split across stored intervals: the gap between two of
// them holds transactions that were not recorded.
func (s IntervalSet) Contains(iv Interval) bool {
	if iv.Start > iv.End {
		return true
	}
	ivs := s.intervals
	i := sort.Search(len(ivs), func(i int) bool { return ivs[i].End >= iv.Start })
	return i < len(ivs) && ivs[i].Contains(iv)
}

// ContainsSequence reports whether transaction number n is in the set.
func (s IntervalSet) ContainsSequence(n uint64) bool {
	return s.Contains(Interval{Start: n, End: n})
}

// IsSubsetOf reports whether every number in s is also in other.
func (s IntervalSet) IsSubsetOf(other IntervalSet) bool {
	theirs := other.intervals
	j := 0
	for _, iv := range s.intervals {
		for j < len(theirs) && theirs[j].End < iv.Start {
			j++
		}
		if j == len(theirs) || !theirs[j].Contains(iv) {
			return false
		}
	}
	return true
}

// Subtract returns the numbers present in s but not in other. A stored
// interval is split in two when other removes a range from its middle.
func (s IntervalSet) Subtract(other IntervalSet) IntervalSet {
	theirs := other.intervals
	if len(s.intervals) == 0 || len(theirs) == 0 {
		return s
	}

	var out []Interval
	j := 0
	for _, iv := range s.intervals {
		for j < len(theirs) && theirs[j].End < iv.Start {
			j++
		}
		start := iv.Start
		covered := false
		for k := j; k < len(theirs) && theirs[k].Start <= iv.End; k++ {
			cut := theirs[k]
			if cut.Start > start {
				out = append(out, Interval{Start: start, End: cut.Start - 1})
			}
			if cut.End >= iv.End {
				covered = true
				break
			}
			start = cut.End + 1
			j = k + 1
		}
		if !covered {
			out = append(out, Interval{Start: start, End: iv.End})
		}
	}
	return IntervalSet{intervals: out}
}

// Equal reports whether s and other hold the same numbers.
func (s IntervalSet) Equal(other IntervalSet) bool {
	return slices.Equal(s.intervals, other.intervals)
}

// IsEmpty reports whether the set holds no numbers.
func (s IntervalSet) IsEmpty() bool {
	return len(s.intervals) == 0
}

// Len returns the number of stored intervals.
func (s IntervalSet) Len() int {
	return len(s.intervals)
}

// Lowest returns the first stored interval.
func (s IntervalSet) Lowest() (Interval, bool) {
	if len(s.intervals) == 0 {
		return Interval{}, false
	}
	return s.intervals[0], true
}

// Highest returns the last stored interval.
func (s IntervalSet) Highest() (Interval, bool) {
	if len(s.intervals) == 0 {
		return Interval{}, false
	}
	return s.intervals[len(s.intervals)-1], true
}

// Intervals returns a copy of the stored intervals in ascending order.
func (s IntervalSet) Intervals() []Interval {
	return slices.Clone(s.intervals)
}

// String renders the intervals joined by ':', e.g. "1-5:7:10-20".
func (s IntervalSet) String() string {
	var b strings.Builder
	s.writeTo(&b)
	return b.String()
}

func (s IntervalSet) writeTo(b *strings.Builder) {
	for i, iv := range s.intervals {
		if i > 0 {
			b.WriteByte(':')
		}
		b.WriteString(iv.String())
	}
}
