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

// Package petri provides the continuous Petri net model used by the
// reachability procedures, the separator generator and the checkers.
//
// A Net is built once through a Builder and is immutable afterwards, so it
// can be shared freely between goroutines. Places and transitions are
// addressed by dense integer ids assigned in insertion order; names are only
// kept for input and output.
//
// # Structural queries
//
// Besides the incidence matrix the package answers the structural questions
// of the analysis: supports of markings and firing vectors, pre- and
// postsets of place sets, the firing-set closure, and the largest siphon and
// trap fixpoints. The fixpoints can be cross-checked against a SAT
// formulation (see SiphonMembers and TrapMembers).
package petri

import "fmt"

// Net is an immutable continuous Petri net.
type Net struct {
	// Name identifies the net in logs, reports and stored certificates.
	Name string

	places      []Place
	transitions []Transition
	placeIndex  map[string]int
	transIndex  map[string]int

	// consumers[p] lists transitions with p in their preset (p°),
	// producers[p] those with p in their postset (°p), ascending.
	consumers [][]int
	producers [][]int
}

// NumPlaces returns the number of places.
func (n *Net) NumPlaces() int { return len(n.places) }

// NumTransitions returns the number of transitions.
func (n *Net) NumTransitions() int { return len(n.transitions) }

// Place returns the place with the given id.
func (n *Net) Place(id int) Place { return n.places[id] }

// Transition returns the transition with the given id. The arc slices are
// shared and must not be modified.
func (n *Net) Transition(id int) Transition { return n.transitions[id] }

// PlaceID looks up a place by name.
func (n *Net) PlaceID(name string) (int, bool) {
	id, ok := n.placeIndex[name]
	return id, ok
}

// TransitionID looks up a transition by name.
func (n *Net) TransitionID(name string) (int, bool) {
	id, ok := n.transIndex[name]
	return id, ok
}

// PlaceName returns the name of place id.
func (n *Net) PlaceName(id int) string { return n.places[id].Name }

// TransitionName returns the name of transition id.
func (n *Net) TransitionName(id int) string { return n.transitions[id].Name }

// Pre returns the sparse preset weights of transition t.
func (n *Net) Pre(t int) []Arc { return n.transitions[t].Pre }

// Post returns the sparse postset weights of transition t.
func (n *Net) Post(t int) []Arc { return n.transitions[t].Post }

// Effect returns the sparse incidence column of transition t.
func (n *Net) Effect(t int) []Arc { return n.transitions[t].Effect }

// PreVector returns the preset weights of t as a dense vector.
func (n *Net) PreVector(t int) []float64 { return dense(n.transitions[t].Pre, len(n.places)) }

// PostVector returns the postset weights of t as a dense vector.
func (n *Net) PostVector(t int) []float64 { return dense(n.transitions[t].Post, len(n.places)) }

// InitialMarking returns a fresh copy of the initial marking.
func (n *Net) InitialMarking() Marking {
	m := make(Marking, len(n.places))
	for i, p := range n.places {
		m[i] = p.Initial
	}
	return m
}

// AllTransitions returns the set of every transition id.
func (n *Net) AllTransitions() Set { return FullSet(len(n.transitions)) }

// AllPlaces returns the set of every place id.
func (n *Net) AllPlaces() Set { return FullSet(len(n.places)) }

// TransitionNames maps a transition set to names, in id order.
func (n *Net) TransitionNames(ts Set) []string {
	ids := ts.IDs()
	names := make([]string, len(ids))
	for i, id := range ids {
		names[i] = n.transitions[id].Name
	}
	return names
}

// PlaceNames maps a place set to names, in id order.
func (n *Net) PlaceNames(ps Set) []string {
	ids := ps.IDs()
	names := make([]string, len(ids))
	for i, id := range ids {
		names[i] = n.places[id].Name
	}
	return names
}

// String returns a short description of the net.
func (n *Net) String() string {
	return fmt.Sprintf("Net[%s: %d places, %d transitions]", n.Name, len(n.places), len(n.transitions))
}
