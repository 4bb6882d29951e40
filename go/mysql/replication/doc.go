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

// Package replication models MySQL replication positions as GTID sets.
//
// A PositionSet maps each source (a server_uuid) to the IntervalSet of
// transaction numbers executed from that source. The package parses and
// renders the canonical text form used by @@global.gtid_executed and
// implements the set algebra a change-data-capture reader needs on
// restart: union, containment and subtraction.
//
// All types are immutable values and safe to share between goroutines.
package replication
