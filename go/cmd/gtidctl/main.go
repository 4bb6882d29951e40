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

// gtidctl inspects and compares MySQL GTID sets and connector positions.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/gtidkit/gtidkit/go/cmd/gtidctl/command"
	"github.com/gtidkit/gtidkit/go/vt/log"
)

func main() {
	defer log.Flush()

	if err := command.Root.Execute(); err != nil {
		// A negative answer is reported through the exit status only.
		if !errors.Is(err, command.ErrFalse) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		log.Flush()
		os.Exit(1)
	}
}
