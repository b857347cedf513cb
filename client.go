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

package depgraph

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"

	"deps.dev/util/pypi"
)

// LocalClient is an in-memory Client. It holds an installed set and a
// repository of available distributions, and is primarily useful for
// tests and for callers that have already gathered their package data.
type LocalClient struct {
	installed []Distribution
	available map[string][]Distribution
}

// NewLocalClient creates a new, empty, LocalClient.
func NewLocalClient() *LocalClient {
	return &LocalClient{available: make(map[string][]Distribution)}
}

// AddInstalled records d as installed. Callers must add at most one
// distribution per canonical name.
func (lc *LocalClient) AddInstalled(d Distribution) {
	lc.installed = append(lc.installed, d)
}

// AddAvailable records d as available from the repository. The versions
// of a package are kept ordered newest first, as the Client contract
// requires.
func (lc *LocalClient) AddAvailable(d Distribution) {
	vs := append(lc.available[d.Name()], d)
	sortDistributions(vs)
	lc.available[d.Name()] = vs
}

// InstalledDistributions implements Client.
func (lc *LocalClient) InstalledDistributions(ctx context.Context) ([]Distribution, error) {
	return slices.Clone(lc.installed), nil
}

// AvailableDistributions implements Client, returning the known
// versions of the named package, newest first.
func (lc *LocalClient) AvailableDistributions(ctx context.Context, name string) ([]Distribution, error) {
	return slices.Clone(lc.available[pypi.CanonPackageName(name)]), nil
}

// LocalDistribution is a Distribution held entirely in memory, with its
// requirements grouped by extra.
type LocalDistribution struct {
	name, version string
	// requires maps an extra to the requirements it contributes; the
	// empty extra is the default set.
	requires map[string][]Requirement
}

// NewLocalDistribution builds a distribution from requirement strings
// grouped by extra; the empty key holds the default requirements. The
// name is canonicalized and the requirement strings are parsed
// immediately.
func NewLocalDistribution(name, version string, requires map[string][]string) (*LocalDistribution, error) {
	d := &LocalDistribution{
		name:     pypi.CanonPackageName(name),
		version:  version,
		requires: make(map[string][]Requirement),
	}
	for _, extra := range slices.Sorted(maps.Keys(requires)) {
		key := strings.ToLower(strings.TrimSpace(extra))
		for _, s := range requires[extra] {
			r, err := ParseRequirement(s)
			if err != nil {
				return nil, fmt.Errorf("distribution %s-%s: %w", name, version, err)
			}
			d.requires[key] = append(d.requires[key], r)
		}
	}
	return d, nil
}

// Name implements Distribution.
func (d *LocalDistribution) Name() string { return d.name }

// Version implements Distribution.
func (d *LocalDistribution) Version() string { return d.version }

// FullName implements Distribution.
func (d *LocalDistribution) FullName() string { return d.name + "-" + d.version }

// Requirements implements Distribution, returning the default
// requirements (unless excluded) followed by those of the requested
// extras. Unknown extras contribute nothing.
func (d *LocalDistribution) Requirements(extras []string, excludeDefault bool) []Requirement {
	var rs []Requirement
	if !excludeDefault {
		rs = append(rs, d.requires[""]...)
	}
	seen := map[string]bool{"": true}
	for _, e := range extras {
		e = strings.ToLower(strings.TrimSpace(e))
		if seen[e] {
			continue
		}
		seen[e] = true
		rs = append(rs, d.requires[e]...)
	}
	return rs
}
