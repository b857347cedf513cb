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
	"fmt"
	"maps"
	"slices"
	"sort"
	"strings"

	"deps.dev/util/semver"

	"deps.dev/util/depgraph/internal/lru"
)

// versionCacheSize bounds the cache of parsed versions held by a Graph.
// Install states rarely approach this many distinct version strings.
const versionCacheSize = 10000

// action is the pending operation recorded on a node.
type action byte

const (
	actionNone action = iota
	actionInstall
	actionChange
	actionRemove
)

// node tracks one package in the graph. The pair (installed, action)
// encodes its state: installed with no action is steady state, a nil
// installed with actionInstall is a fresh install, and installed
// combined with actionChange or actionRemove is an upgrade/downgrade or
// an uninstall. next holds the target distribution for actionInstall
// and actionChange.
type node struct {
	name      string
	installed Distribution
	next      Distribution
	action    action
}

// effective returns the distribution the node will hold once the
// current marks are applied: the pending one if present, otherwise the
// installed one.
func (n *node) effective() Distribution {
	if n.next != nil {
		return n.next
	}
	return n.installed
}

// Graph is a dependency graph of the installed distributions, onto
// which requirements and removals are marked. Use New to construct one;
// the zero Graph is not usable.
//
// A Graph is not safe for concurrent use.
type Graph struct {
	client Client

	nodes map[string]*node

	// edges records reverse dependencies: edges[n1][n2] holds the
	// requirements under which n1 is required by n2. The empty n2
	// names a requirement given directly to AddRequirement. Edges are
	// only ever appended; superseding a distribution does not retract
	// the edges its requirements created.
	edges map[string]map[string][]Requirement

	// Stamp the order in which nodes were marked. Marks uses these to
	// sequence the plan so an interrupted run leaves no package with a
	// missing dependency.
	orderNew    order
	orderChange order
	orderRemove order

	// versions caches parsed versions; version strings repeat heavily
	// across constraint checks.
	versions *lru.Cache[string, *semver.Version]
}

// HasPackage reports whether the named package has a node in the graph,
// either installed or marked for install.
func (g *Graph) HasPackage(name string) bool {
	_, ok := g.nodes[name]
	return ok
}

// addEdge records that dependency is required by dependent under r.
// The empty dependent stands for a direct user requirement.
func (g *Graph) addEdge(dependency, dependent string, r Requirement) {
	m := g.edges[dependency]
	if m == nil {
		m = make(map[string][]Requirement)
		g.edges[dependency] = m
	}
	m[dependent] = append(m[dependent], r)
}

// markForInstall creates a node for a package that is not installed and
// marks it for install. It is a programming error to call it for a name
// already in the graph.
func (g *Graph) markForInstall(name string, p Distribution, requiredBy string, r Requirement) *node {
	if _, ok := g.nodes[name]; ok {
		panic(fmt.Sprintf("depgraph: %q is already in the graph", name))
	}
	n := &node{name: name, next: p, action: actionInstall}
	g.nodes[name] = n
	g.addEdge(name, requiredBy, r)
	g.orderNew.push(name)
	return n
}

// markForChange marks an installed package for upgrade or downgrade to
// p. If p is the installed version the mark collapses to no action; the
// caller can check node.next to see whether a change was recorded. It
// is a programming error to call it for a name not in the graph or one
// marked for removal.
func (g *Graph) markForChange(name string, p Distribution, requiredBy string, r Requirement) *node {
	n, ok := g.nodes[name]
	if !ok {
		panic(fmt.Sprintf("depgraph: %q is not in the graph", name))
	}
	if n.action == actionRemove {
		panic(fmt.Sprintf("depgraph: %q is marked for removal", name))
	}
	if n.installed == nil {
		panic(fmt.Sprintf("depgraph: %q is not installed", name))
	}
	if g.compareVersions(p.Version(), n.installed.Version()) == 0 {
		n.next = nil
		n.action = actionNone
	} else {
		n.next = p
		n.action = actionChange
	}
	g.addEdge(name, requiredBy, r)
	g.orderChange.push(name)
	return n
}

// markForRemoval marks the installed package for removal and returns
// its node, or nil if it was already so marked. It is a programming
// error to call it for a name not in the graph or one marked for
// install or change.
func (g *Graph) markForRemoval(name string) *node {
	n, ok := g.nodes[name]
	if !ok {
		panic(fmt.Sprintf("depgraph: %q is not in the graph", name))
	}
	if n.action == actionRemove {
		return nil
	}
	if n.action != actionNone {
		panic(fmt.Sprintf("depgraph: %q was already marked for install/change", name))
	}
	n.action = actionRemove
	g.orderRemove.push(name)
	return n
}

// parseVersion returns the parsed form of the given version string, or
// nil if it does not parse under PEP 440.
func (g *Graph) parseVersion(s string) *semver.Version {
	if v, ok := g.versions.Get(s); ok {
		return v
	}
	v, err := semver.PyPI.Parse(s)
	if err != nil {
		v = nil
	}
	g.versions.Put(s, v)
	return v
}

// compareVersions orders two version strings by PEP 440 precedence,
// falling back to string comparison when either does not parse.
func (g *Graph) compareVersions(a, b string) int {
	va, vb := g.parseVersion(a), g.parseVersion(b)
	if va == nil || vb == nil {
		return strings.Compare(a, b)
	}
	return va.Compare(vb)
}

// String produces a text representation of the graph: its nodes, its
// reverse-dependency edges, and any accumulated marks. Downgrades are
// annotated with the requirements that forced them.
func (g *Graph) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "DepGraph with %d nodes\n", len(g.nodes))

	names := slices.Sorted(maps.Keys(g.nodes))
	b.WriteString("Nodes:\n")
	fmt.Fprintf(&b, "\t%s\n", strings.Join(names, ", "))

	b.WriteString("Edges:\n")
	for _, n1 := range names {
		deps := g.edges[n1]
		if len(deps) == 0 {
			continue
		}
		first := n1
		for _, n2 := range slices.Sorted(maps.Keys(deps)) {
			shown := n2
			if shown == "" {
				shown = "(user)"
			}
			fmt.Fprintf(&b, "\t%-18s <- %-18s [%s]\n", first, shown, reqsString(deps[n2]))
			first = ""
		}
	}

	b.WriteString("Marks:\n")
	marks := g.Marks()
	for _, p := range marks.Install {
		fmt.Fprintf(&b, "\t[+] %s\n", p.FullName())
	}
	for _, p := range marks.Remove {
		fmt.Fprintf(&b, "\t[-] %s\n", p.FullName())
	}
	for _, c := range marks.Change {
		fmt.Fprintf(&b, "\t[c] %s -> %s\n", c.Old.FullName(), c.New.FullName())
		if g.compareVersions(c.Old.Version(), c.New.Version()) > 0 {
			// Show the reason for the downgrade.
			because := "because "
			for _, n2 := range slices.Sorted(maps.Keys(g.edges[c.Old.Name()])) {
				for _, r := range g.edges[c.Old.Name()][n2] {
					shown := n2
					if shown == "" {
						shown = "(user)"
					}
					fmt.Fprintf(&b, "\t    %s%s requires %s\n", because, shown, r)
					because = strings.Repeat(" ", len(because))
				}
			}
		}
	}
	return b.String()
}

// sortDistributions sorts distributions newest first by PEP 440
// precedence, falling back to string order for versions that do not
// parse.
func sortDistributions(ds []Distribution) {
	vers := make(map[string]*semver.Version, len(ds))
	for _, d := range ds {
		if _, ok := vers[d.Version()]; ok {
			continue
		}
		v, err := semver.PyPI.Parse(d.Version())
		if err != nil {
			continue
		}
		vers[d.Version()] = v
	}
	sort.SliceStable(ds, func(i, j int) bool {
		vi, vj := vers[ds[i].Version()], vers[ds[j].Version()]
		if vi == nil || vj == nil {
			return ds[i].Version() > ds[j].Version()
		}
		return vi.Compare(vj) > 0
	})
}
