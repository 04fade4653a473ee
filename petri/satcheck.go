// Copyright 2026 The JazzPetri Authors
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

package petri

import (
	"github.com/go-air/gini"
	"github.com/go-air/gini/z"
)

// SiphonMembers returns the union of all siphons of up that avoid the
// places in avoid, computed with a SAT solver: place p gets variable p+1,
// and each transition t of up contributes, for every p in t°, the clause
// p -> OR(°t). The union of siphons is a siphon, so the result is the
// largest siphon inside the complement of avoid and must coincide with
// LargestSiphon when avoid is the support of the source marking.
func (n *Net) SiphonMembers(up, avoid Set) Set {
	return n.satMembers(up, avoid, false)
}

// TrapMembers is the dual of SiphonMembers: for every p in °t the clause
// p -> OR(t°).
func (n *Net) TrapMembers(up, avoid Set) Set {
	return n.satMembers(up, avoid, true)
}

func (n *Net) satMembers(up, avoid Set, trap bool) Set {
	g := gini.New()
	lit := func(p int) z.Lit { return z.Var(p + 1).Pos() }
	seen := NewSet(n.NumPlaces())

	for p := 0; p < n.NumPlaces(); p++ {
		if avoid.Has(p) {
			g.Add(lit(p).Not())
			g.Add(0)
			seen[p] = true
		}
	}
	for _, t := range up.IDs() {
		heads, bodies := n.transitions[t].Post, n.transitions[t].Pre
		if trap {
			heads, bodies = bodies, heads
		}
		for _, h := range heads {
			g.Add(lit(h.Place).Not())
			seen[h.Place] = true
			for _, b := range bodies {
				g.Add(lit(b.Place))
				seen[b.Place] = true
			}
			g.Add(0)
		}
	}

	members := NewSet(n.NumPlaces())
	for p := 0; p < n.NumPlaces(); p++ {
		if members[p] || avoid.Has(p) {
			continue
		}
		if !seen[p] {
			// unconstrained: {p} alone qualifies
			members[p] = true
			continue
		}
		g.Assume(lit(p))
		if g.Solve() != 1 {
			continue
		}
		// every true variable of the model lies in a siphon (trap)
		for _, q := range seen.IDs() {
			if g.Value(lit(q)) {
				members[q] = true
			}
		}
	}
	return members
}
