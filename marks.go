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

// Change is a planned upgrade or downgrade of an installed
// distribution.
type Change struct {
	Old, New Distribution
}

// Marks is the plan accumulated by AddRequirement and RemovePackage:
// the distributions to install, the version changes to apply, and the
// distributions to remove.
type Marks struct {
	Install []Distribution
	Change  []Change
	Remove  []Distribution
}

// Marks extracts the plan from the graph. Within each list the order is
// safe to execute sequentially: installs and changes are ordered
// dependencies first, removals dependents first, so aborting the plan
// partway never leaves an installed package with a missing dependency.
func (g *Graph) Marks() Marks {
	var m Marks
	for _, n := range g.nodes {
		switch n.action {
		case actionInstall:
			m.Install = append(m.Install, n.next)
		case actionChange:
			m.Change = append(m.Change, Change{Old: n.installed, New: n.next})
		case actionRemove:
			m.Remove = append(m.Remove, n.installed)
		}
	}
	// Requirements are discovered parents before children, so the
	// install and change sequences are replayed newest stamp first.
	rearrange(&g.orderNew, m.Install, Distribution.Name, true)
	rearrange(&g.orderChange, m.Change, func(c Change) string { return c.Old.Name() }, true)
	rearrange(&g.orderRemove, m.Remove, Distribution.Name, false)
	return m
}
