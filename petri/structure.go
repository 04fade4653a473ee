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

import "math/big"

// Support returns the places holding a positive quantity in m.
func (n *Net) Support(m Marking) Set {
	s := NewSet(n.NumPlaces())
	for p, v := range m {
		if p < len(s) && v > 0 {
			s[p] = true
		}
	}
	return s
}

// SupportTransitions returns the transitions with a nonzero entry in the
// firing vector x.
func (n *Net) SupportTransitions(x []*big.Rat) Set {
	s := NewSet(n.NumTransitions())
	for t, v := range x {
		if t < len(s) && v != nil && v.Sign() != 0 {
			s[t] = true
		}
	}
	return s
}

// Restrict returns m with every place outside ps set to zero.
func (n *Net) Restrict(m Marking, ps Set) Marking {
	r := make(Marking, len(m))
	for p, v := range m {
		if ps.Has(p) {
			r[p] = v
		}
	}
	return r
}

// Touched returns °ts°, the places in the preset or postset of some
// transition of ts.
func (n *Net) Touched(ts Set) Set {
	s := NewSet(n.NumPlaces())
	for _, t := range ts.IDs() {
		for _, a := range n.transitions[t].Pre {
			s[a.Place] = true
		}
		for _, a := range n.transitions[t].Post {
			s[a.Place] = true
		}
	}
	return s
}

// Postset returns Q° restricted to within: the transitions of within that
// consume from some place of q.
func (n *Net) Postset(q, within Set) Set {
	s := NewSet(n.NumTransitions())
	for _, p := range q.IDs() {
		for _, t := range n.consumers[p] {
			if within.Has(t) {
				s[t] = true
			}
		}
	}
	return s
}

// Preset returns °R restricted to within: the transitions of within that
// produce into some place of r.
func (n *Net) Preset(r, within Set) Set {
	s := NewSet(n.NumTransitions())
	for _, p := range r.IDs() {
		for _, t := range n.producers[p] {
			if within.Has(t) {
				s[t] = true
			}
		}
	}
	return s
}

// IncidenceEntry is one nonzero cell of an incidence row.
type IncidenceEntry struct {
	Transition int
	Value      float64
}

// Incidence is the incidence matrix restricted to a set of columns, stored
// by rows.
type Incidence struct {
	// Rows[p] lists the nonzero effects on place p, by ascending transition.
	Rows [][]IncidenceEntry

	// Columns is the transition set the matrix was restricted to.
	Columns Set
}

// Incidence returns the incidence matrix restricted to the columns in ts.
func (n *Net) Incidence(ts Set) *Incidence {
	inc := &Incidence{
		Rows:    make([][]IncidenceEntry, n.NumPlaces()),
		Columns: ts.Clone(),
	}
	for _, t := range ts.IDs() {
		for _, a := range n.transitions[t].Effect {
			inc.Rows[a.Place] = append(inc.Rows[a.Place], IncidenceEntry{Transition: t, Value: a.Weight})
		}
	}
	return inc
}

// FiringSetClosure grows the set of transitions of tp that can be fired in
// sequence from the places marked in m. A transition is admitted once its
// preset lies within the enabled places; its postset then becomes enabled.
// With inverse set, presets and postsets swap roles, which explores the
// reversed net from m.
//
// It returns whether every transition of tp was admitted, and the admitted
// set.
func (n *Net) FiringSetClosure(tp Set, m Marking, inverse bool) (bool, Set) {
	enabled := n.Support(m)
	admitted := NewSet(n.NumTransitions())
	pending := tp.IDs()

	for progress := true; progress; {
		progress = false
		rest := pending[:0]
		for _, t := range pending {
			inputs, outputs := n.transitions[t].Pre, n.transitions[t].Post
			if inverse {
				inputs, outputs = outputs, inputs
			}
			if !arcsWithin(inputs, enabled) {
				rest = append(rest, t)
				continue
			}
			admitted[t] = true
			for _, a := range outputs {
				enabled[a.Place] = true
			}
			progress = true
		}
		pending = rest
	}
	return len(pending) == 0, admitted
}

func arcsWithin(arcs []Arc, s Set) bool {
	for _, a := range arcs {
		if !s[a.Place] {
			return false
		}
	}
	return true
}

func arcsMeet(arcs []Arc, s Set) bool {
	for _, a := range arcs {
		if s[a.Place] {
			return true
		}
	}
	return false
}

// LargestSiphon returns the largest set Q of places unmarked in msrc such
// that every transition of up producing into Q also consumes from Q.
//
// Starting from all unmarked places, a place p is evicted while some
// transition of up produces into p without consuming from the current set.
func (n *Net) LargestSiphon(up Set, msrc Marking) Set {
	q := NewSet(n.NumPlaces())
	for p := range q {
		q[p] = p >= len(msrc) || msrc[p] == 0
	}
	for changed := true; changed; {
		changed = false
		for _, p := range q.IDs() {
			for _, t := range n.producers[p] {
				if up.Has(t) && !arcsMeet(n.transitions[t].Pre, q) {
					q[p] = false
					changed = true
					break
				}
			}
		}
	}
	return q
}

// LargestTrap returns the largest set R of places unmarked in mtgt such
// that every transition of up consuming from R also produces into R.
func (n *Net) LargestTrap(up Set, mtgt Marking) Set {
	r := NewSet(n.NumPlaces())
	for p := range r {
		r[p] = p >= len(mtgt) || mtgt[p] == 0
	}
	for changed := true; changed; {
		changed = false
		for _, p := range r.IDs() {
			for _, t := range n.consumers[p] {
				if up.Has(t) && !arcsMeet(n.transitions[t].Post, r) {
					r[p] = false
					changed = true
					break
				}
			}
		}
	}
	return r
}

// IsSiphon reports whether every transition of up producing into q also
// consumes from q.
func (n *Net) IsSiphon(up, q Set) bool {
	for _, t := range up.IDs() {
		tr := n.transitions[t]
		if arcsMeet(tr.Post, q) && !arcsMeet(tr.Pre, q) {
			return false
		}
	}
	return true
}

// IsTrap reports whether every transition of up consuming from r also
// produces into r.
func (n *Net) IsTrap(up, r Set) bool {
	for _, t := range up.IDs() {
		tr := n.transitions[t]
		if arcsMeet(tr.Pre, r) && !arcsMeet(tr.Post, r) {
			return false
		}
	}
	return true
}
