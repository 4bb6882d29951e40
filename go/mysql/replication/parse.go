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
	"strconv"
	"strings"

	"github.com/gtidkit/gtidkit/go/vt/vterrors"
)

// ParsePositionSet parses the canonical text form of a PositionSet:
//
//	source:interval[:interval...][,source:interval[:interval...]...]
//
// where an interval is "n" or "start-end". Intervals may appear in any
// order and are merged as they are read. A source repeated later in the
// string extends its first occurrence. Whitespace around entries and
// intervals is ignored, as MySQL inserts newlines after the commas of
// gtid_executed. The empty string is the empty PositionSet.
//
// Parsing is all or nothing: on error the returned PositionSet is empty
// and the error state is one of InvalidInterval, EmptySourceEntry or
// MalformedToken.
func ParsePositionSet(s string) (PositionSet, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return PositionSet{}, nil
	}

	out := PositionSet{sets: make(map[SourceID]IntervalSet)}
	for _, entry := range strings.Split(s, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			return PositionSet{}, vterrors.NewErrorf(vterrors.InvalidArgument, vterrors.MalformedToken,
				"invalid GTID set (%q): empty entry", s)
		}
		tokens := strings.Split(entry, ":")
		sid := strings.TrimSpace(tokens[0])
		if err := validateSourceID(sid); err != nil {
			return PositionSet{}, vterrors.Wrapf(err, "invalid GTID set (%q)", s)
		}
		tokens = tokens[1:]
		if len(tokens) == 0 || (len(tokens) == 1 && strings.TrimSpace(tokens[0]) == "") {
			return PositionSet{}, vterrors.NewErrorf(vterrors.InvalidArgument, vterrors.EmptySourceEntry,
				"invalid GTID set (%q): source %s has no intervals", s, sid)
		}

		set := out.sets[SourceID(sid)]
		for _, tok := range tokens {
			iv, err := parseInterval(strings.TrimSpace(tok))
			if err != nil {
				return PositionSet{}, vterrors.Wrapf(err, "invalid GTID set (%q)", s)
			}
			set = set.Insert(iv)
		}
		out.put(SourceID(sid), set)
	}
	return out, nil
}

// MustParsePositionSet is like ParsePositionSet but panics on error.
func MustParsePositionSet(s string) PositionSet {
	ps, err := ParsePositionSet(s)
	if err != nil {
		panic(err)
	}
	return ps
}

// Subtract parses lhs and rhs and returns the canonical form of the
// transactions in lhs that are missing from rhs.
func Subtract(lhs, rhs string) (string, error) {
	lhsSet, err := ParsePositionSet(lhs)
	if err != nil {
		return "", err
	}
	rhsSet, err := ParsePositionSet(rhs)
	if err != nil {
		return "", err
	}
	return lhsSet.Subtract(rhsSet).String(), nil
}

func validateSourceID(sid string) error {
	if sid == "" {
		return vterrors.NewErrorf(vterrors.InvalidArgument, vterrors.MalformedToken, "empty source id")
	}
	for i := 0; i < len(sid); i++ {
		c := sid[i]
		if !isDigit(c) && !isAlpha(c) && c != '-' {
			return vterrors.NewErrorf(vterrors.InvalidArgument, vterrors.MalformedToken,
				"invalid character %q in source id %q", c, sid)
		}
	}
	return nil
}

func parseInterval(tok string) (Interval, error) {
	if tok == "" {
		return Interval{}, vterrors.NewErrorf(vterrors.InvalidArgument, vterrors.MalformedToken, "empty interval")
	}
	startStr, endStr, isRange := strings.Cut(tok, "-")
	start, err := parseNumber(startStr)
	if err != nil {
		return Interval{}, err
	}
	if !isRange {
		return Interval{Start: start, End: start}, nil
	}
	end, err := parseNumber(endStr)
	if err != nil {
		return Interval{}, err
	}
	if start > end {
		return Interval{}, vterrors.NewErrorf(vterrors.InvalidArgument, vterrors.InvalidInterval,
			"invalid interval %q: start is greater than end", tok)
	}
	return Interval{Start: start, End: end}, nil
}

func parseNumber(s string) (uint64, error) {
	if s == "" {
		return 0, vterrors.NewErrorf(vterrors.InvalidArgument, vterrors.InvalidInterval, "missing transaction number")
	}
	for i := 0; i < len(s); i++ {
		if !isDigit(s[i]) {
			return 0, vterrors.NewErrorf(vterrors.InvalidArgument, vterrors.InvalidInterval, "invalid transaction number %q", s)
		}
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, vterrors.NewErrorf(vterrors.InvalidArgument, vterrors.InvalidInterval, "transaction number %q out of range", s)
	}
	return n, nil
}

func isDigit(c byte) bool { return '0' <= c && c <= '9' }

func isAlpha(c byte) bool { return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') }
