// Copyright 2025 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

/*
Package depgraphtest builds test clients from a compact text schema.

The schema lists packages at the left margin, their available versions
indented one tab, and each version's requirements indented two tabs,
newest versions first or in any order. A version carrying the word
"installed" is part of the installed set as well as the repository. A
requirement prefixed with "extra:" belongs to that extra instead of the
default set.

	fabric
		0.9.2
			pycrypto<=2.1
			paramiko
		0.9.1 installed
			pycrypto
	pycrypto
		2.3
		2.1 installed
*/
package depgraphtest

import (
	"strings"
	"testing"

	"deps.dev/util/depgraph"
)

// NewClient parses the schema and returns a LocalClient holding its
// packages. Malformed schemas fail the test immediately.
func NewClient(t *testing.T, schema string) *depgraph.LocalClient {
	t.Helper()
	lc := depgraph.NewLocalClient()

	var (
		pkg       string
		version   string
		installed bool
		requires  map[string][]string
	)
	flush := func() {
		if version == "" {
			return
		}
		d, err := depgraph.NewLocalDistribution(pkg, version, requires)
		if err != nil {
			t.Fatalf("schema: %v", err)
		}
		lc.AddAvailable(d)
		if installed {
			lc.AddInstalled(d)
		}
		version, installed, requires = "", false, nil
	}

	for i, line := range strings.Split(schema, "\n") {
		if strings.TrimSpace(line) == "" || strings.HasPrefix(strings.TrimSpace(line), "#") {
			continue
		}
		depth := 0
		for depth < len(line) && line[depth] == '\t' {
			depth++
		}
		text := strings.TrimSpace(line[depth:])
		switch depth {
		case 0:
			flush()
			pkg = text
		case 1:
			flush()
			if pkg == "" {
				t.Fatalf("schema line %d: version %q before any package", i+1, text)
			}
			fields := strings.Fields(text)
			version = fields[0]
			for _, f := range fields[1:] {
				if f != "installed" {
					t.Fatalf("schema line %d: unknown flag %q", i+1, f)
				}
				installed = true
			}
			requires = make(map[string][]string)
		case 2:
			if version == "" {
				t.Fatalf("schema line %d: requirement %q before any version", i+1, text)
			}
			extra := ""
			if name, rest, ok := strings.Cut(text, ":"); ok {
				extra, text = strings.TrimSpace(name), strings.TrimSpace(rest)
			}
			requires[extra] = append(requires[extra], text)
		default:
			t.Fatalf("schema line %d: indentation too deep", i+1)
		}
	}
	flush()
	return lc
}
