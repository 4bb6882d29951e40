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
	"strconv"

	"github.com/gtidkit/gtidkit/go/vt/vterrors"
)

// Interval is an inclusive range [Start, End] of transaction sequence
// numbers recorded for a single source.
type Interval struct {
	Start uint64
	End   uint64
}

// NewInterval returns the interval [start, end]. It fails when start > end.
func NewInterval(start, end uint64) (Interval, error) {
	if start > end {
		return Interval{}, vterrors.NewErrorf(vterrors.InvalidArgument, vterrors.InvalidRangeConstruction,
			"invalid interval: start %d is greater than end %d", start, end)
	}
	return Interval{Start: start, End: end}, nil
}

// Contains reports whether iv covers every number in other.
func (iv Interval) Contains(other Interval) bool {
	return iv.Start <= other.Start && other.End <= iv.End
}

// ContainsSequence reports whether n is in [Start, End].
func (iv Interval) ContainsSequence(n uint64) bool {
	return iv.Start <= n && n <= iv.End
}

// touches reports whether iv and other overlap or are adjacent, i.e.
// whether their union is a single interval.
func (iv Interval) touches(other Interval) bool {
	if iv.Start > other.Start {
		iv, other = other, iv
	}
	return iv.End == math.MaxUint64 || other.Start <= iv.End+1
}

// String renders the interval as "start-end", or "n" for a singleton.
func (iv Interval) String() string {
	if iv.Start == iv.End {
		return strconv.FormatUint(iv.Start, 10)
	}
	return strconv.FormatUint(iv.Start, 10) + "-" + strconv.FormatUint(iv.End, 10)
}
