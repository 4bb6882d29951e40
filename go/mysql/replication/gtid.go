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

// GTID is a single transaction: a sequence number on one source.
type GTID struct {
	Source   SourceID
	Sequence uint64
}

// ParseGTID parses a GTID of the form "source:sequence".
func ParseGTID(s string) (GTID, error) {
	sid, seq, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return GTID{}, vterrors.NewErrorf(vterrors.InvalidArgument, vterrors.MalformedToken,
			"invalid GTID (%q): expected source:sequence", s)
	}
	if err := validateSourceID(sid); err != nil {
		return GTID{}, vterrors.Wrapf(err, "invalid GTID (%q)", s)
	}
	n, err := parseNumber(seq)
	if err != nil {
		return GTID{}, vterrors.Wrapf(err, "invalid GTID (%q)", s)
	}
	return GTID{Source: SourceID(sid), Sequence: n}, nil
}

// String returns "source:sequence".
func (gtid GTID) String() string {
	return string(gtid.Source) + ":" + strconv.FormatUint(gtid.Sequence, 10)
}
