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

package resume

import (
	"regexp"
	"strings"

	"github.com/gtidkit/gtidkit/go/mysql/replication"
	"github.com/gtidkit/gtidkit/go/vt/vterrors"
)

// FilterConfig selects the source ids a connector tracks. Patterns are
// regular expressions matched against the whole source id. At most one of
// the two lists may be set.
type FilterConfig struct {
	Include []string
	Exclude []string
}

// Filter restricts position sets to the tracked source ids. A nil *Filter
// keeps everything.
type Filter struct {
	patterns []*regexp.Regexp
	include  bool
}

// NewFilter compiles cfg.
func NewFilter(cfg FilterConfig) (*Filter, error) {
	if len(cfg.Include) > 0 && len(cfg.Exclude) > 0 {
		return nil, vterrors.New(vterrors.InvalidArgument, "source include and exclude lists are mutually exclusive")
	}
	f := &Filter{include: len(cfg.Include) > 0}
	raw := cfg.Exclude
	if f.include {
		raw = cfg.Include
	}
	for _, p := range raw {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		re, err := regexp.Compile("^(?:" + p + ")$")
		if err != nil {
			return nil, vterrors.Wrapf(err, "invalid source pattern %q", p)
		}
		f.patterns = append(f.patterns, re)
	}
	if len(f.patterns) == 0 {
		return nil, nil
	}
	return f, nil
}

// Match reports whether sid is tracked.
func (f *Filter) Match(sid replication.SourceID) bool {
	if f == nil {
		return true
	}
	for _, re := range f.patterns {
		if re.MatchString(string(sid)) {
			return f.include
		}
	}
	return !f.include
}

// Apply returns ps restricted to the tracked source ids.
func (f *Filter) Apply(ps replication.PositionSet) replication.PositionSet {
	if f == nil {
		return ps
	}
	return ps.Retain(f.Match)
}
