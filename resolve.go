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
	"log"
	"maps"
	"slices"

	"deps.dev/util/pypi"
)

const debug = false

// debugf prints a resolution trace message if debug is true.
func debugf(pattern string, args ...any) {
	if !debug {
		return
	}
	fmt.Printf(pattern, args...)
}

// AddRequirement adds a requirement to the graph, marking whatever
// installs, upgrades or downgrades are needed to satisfy it, and
// recursing into the requirements of any distribution it marks unless
// nodeps is set. It reports whether the graph changed; re-adding an
// already satisfied requirement records the new constraint edge and
// returns false.
//
// The requirement must be satisfiable together with every constraint
// already recorded for the same package; otherwise a NotFoundError
// listing the combined constraints is returned and any marks
// accumulated before the conflict remain in place.
func (g *Graph) AddRequirement(ctx context.Context, req string, nodeps bool) (bool, error) {
	r, err := ParseRequirement(req)
	if err != nil {
		return false, err
	}
	return g.addRequirement(ctx, r, nodeps, "")
}

func (g *Graph) addRequirement(ctx context.Context, r Requirement, nodeps bool, parent string) (bool, error) {
	name := r.Name
	debugf("add %v (parent %q)\n", r, parent)

	// The candidate must satisfy r and every requirement other
	// dependents have recorded for this package.
	toSatisfy := []Requirement{r}
	n := g.nodes[name]
	if n != nil {
		for _, dependent := range slices.Sorted(maps.Keys(g.edges[name])) {
			toSatisfy = append(toSatisfy, g.edges[name][dependent]...)
		}
	}

	releases, err := g.client.AvailableDistributions(ctx, name)
	if err != nil {
		return false, err
	}
	if len(releases) == 0 {
		return false, &NotFoundError{Requirement: r.String(), RequiredBy: parent}
	}

	// Releases are newest first, so the first satisfying release is
	// the highest one.
	var p Distribution
	for _, rel := range releases {
		if satisfiesAll(rel.Version(), toSatisfy) {
			p = rel
			break
		}
	}
	if p == nil {
		return false, &NotFoundError{Requirement: reqsString(toSatisfy), RequiredBy: parent}
	}

	changed := false
	if n == nil {
		n = g.markForInstall(name, p, parent, r)
		changed = true
	} else {
		// current is the distribution that will be present once the
		// plan so far is applied.
		current := n.effective()
		change := true
		switch cmp := g.compareVersions(current.Version(), p.Version()); {
		case cmp == 0:
			change = false
		case cmp > 0:
			// The candidate would be a downgrade. Keep the newer
			// version if it satisfies every requirement; an explicit
			// tighter constraint still forces the downgrade.
			if satisfiesAll(current.Version(), toSatisfy) {
				change = false
			}
		}
		switch {
		case !change:
			g.addEdge(name, parent, r)
		case n.installed == nil:
			// The node is only marked for install; retarget the
			// pending install rather than recording a change with
			// nothing to change from.
			n.next = p
			g.addEdge(name, parent, r)
			g.orderNew.push(name)
			changed = true
		default:
			g.markForChange(name, p, parent, r)
			if n.next != nil {
				changed = true
				if !nodeps {
					warnRequirementsDiffer(name, current, n.next, r.Extras)
				}
			}
		}
	}

	// Recurse into the marked distribution's requirements. Only a node
	// that was created or genuinely changed recurses: a cycle arriving
	// back at an unchanged node stops here.
	if changed && !nodeps {
		for _, sub := range n.effective().Requirements(r.Extras, false) {
			if _, err := g.addRequirement(ctx, sub, nodeps, name); err != nil {
				return false, err
			}
		}
	}
	return changed, nil
}

// satisfiesAll reports whether the version satisfies every requirement.
func satisfiesAll(version string, reqs []Requirement) bool {
	for _, r := range reqs {
		if !r.Matches(version) {
			return false
		}
	}
	return true
}

// warnRequirementsDiffer notes when a superseding distribution declares
// different requirements than the one it replaces. Edges recorded for
// the old requirements are not retracted, so the plan may retain
// packages nothing depends on any more.
func warnRequirementsDiffer(name string, prev, next Distribution, extras []string) {
	rl0 := reqsString(prev.Requirements(extras, false))
	rl1 := reqsString(next.Requirements(extras, false))
	if rl0 != rl1 {
		log.Printf("depgraph: requirements differ across versions; edges may be stale:\n    %s-%s [%s]\n -> %s-%s [%s]",
			name, prev.Version(), rl0, name, next.Version(), rl1)
	}
}

// RemovePackage marks the named package for removal, along with every
// package that requires it, transitively, unless nodeps is set.
// Removing a package that is already marked for removal is a no-op.
// It returns an error wrapping ErrNotFound if the package is not in the
// graph.
func (g *Graph) RemovePackage(name string, nodeps bool) error {
	name = pypi.CanonPackageName(name)
	if !g.HasPackage(name) {
		return fmt.Errorf("package %q: %w", name, ErrNotFound)
	}
	g.removePackage(name, nodeps)
	return nil
}

func (g *Graph) removePackage(name string, nodeps bool) {
	if g.markForRemoval(name) == nil {
		return
	}
	if nodeps {
		return
	}
	// Take a sorted snapshot of the dependents, so the cascade visits
	// them in a fixed order. The empty name records direct user
	// requirements, not a dependent package.
	dependents := slices.Sorted(maps.Keys(g.edges[name]))
	for _, dependent := range dependents {
		if dependent == "" {
			continue
		}
		g.removePackage(dependent, false)
	}
	// Stamp this package again now that its dependents are stamped:
	// removals execute in stamp order, and dependents must be removed
	// before the packages they require.
	g.orderRemove.push(name)
}
