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

	"deps.dev/util/semver"

	"deps.dev/util/depgraph/internal/lru"
)

// New builds a Graph over the given client, loading the installed
// distributions and the dependency edges between them.
func New(ctx context.Context, client Client) (*Graph, error) {
	g := &Graph{
		client:   client,
		nodes:    make(map[string]*node),
		edges:    make(map[string]map[string][]Requirement),
		versions: lru.New[string, *semver.Version](versionCacheSize),
	}
	if err := g.loadInstalled(ctx); err != nil {
		return nil, err
	}
	return g, nil
}

// extraEdge is a requirement with extras deferred from the base pass:
// dependent requires dependency with the named extra enabled.
type extraEdge struct {
	dependency, extra, dependent string
}

// loadInstalled populates the graph from the installed distributions.
// Requirements on packages that are not installed are dropped, so the
// graph never carries edges to unknown names.
func (g *Graph) loadInstalled(ctx context.Context) error {
	installed, err := g.client.InstalledDistributions(ctx)
	if err != nil {
		return err
	}

	// Pass 1: a node per installed distribution.
	for _, d := range installed {
		g.nodes[d.Name()] = &node{name: d.Name(), installed: d}
	}

	// Pass 2: base requirement edges, deferring extras.
	deferred := make(map[extraEdge]bool)
	for _, d := range installed {
		for _, r := range d.Requirements(nil, false) {
			if !g.HasPackage(r.Name) {
				continue
			}
			g.addEdge(r.Name, d.Name(), r)
			for _, e := range r.Extras {
				deferred[extraEdge{r.Name, e, d.Name()}] = true
			}
		}
	}

	// Pass 3: for each extra in use, record indirect edges for the
	// requirements that extra contributes.
	for ee := range deferred {
		dep := g.nodes[ee.dependency].installed
		for _, r := range dep.Requirements([]string{ee.extra}, true) {
			if !g.HasPackage(r.Name) {
				continue
			}
			g.addEdge(r.Name, ee.dependent, r)
		}
	}
	return nil
}
