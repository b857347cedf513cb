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
	"math"
	"slices"
	"sort"
)

// order remembers the sequence in which names were stamped, so that
// lists of marked packages can later be rearranged into the same order.
type order struct {
	names   []string
	present map[string]bool
}

// push appends the name at the last position. If the name was already
// stamped, its previous occurrence is removed first, moving it to the
// end.
func (o *order) push(name string) {
	if o.present[name] {
		i := slices.Index(o.names, name)
		o.names = slices.Delete(o.names, i, i+1)
	}
	if o.present == nil {
		o.present = make(map[string]bool)
	}
	o.present[name] = true
	o.names = append(o.names, name)
}

// rearrange sorts list by the position key(e) holds in the order,
// earliest first, or latest first if reverse is set. Names never stamped
// rank after every stamped name. The sort is stable.
func rearrange[E any](o *order, list []E, key func(E) string, reverse bool) {
	idx := make(map[string]int, len(o.names))
	for i, n := range o.names {
		idx[n] = i
	}
	rank := func(e E) int {
		if i, ok := idx[key(e)]; ok {
			return i
		}
		return math.MaxInt
	}
	sort.SliceStable(list, func(i, j int) bool {
		ri, rj := rank(list[i]), rank(list[j])
		if reverse {
			return ri > rj
		}
		return ri < rj
	})
}
