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
	"fmt"
	"math"
)

// Builder assembles a Net. Methods report malformed input as errors; Build
// returns an immutable net and leaves the builder reusable.
//
// Example:
//
//	b := petri.NewBuilder("mutex")
//	_ = b.AddPlace("idle", 1)
//	_ = b.AddPlace("busy", 0)
//	_ = b.AddTransition("enter")
//	_ = b.AddArc("idle", "enter", 1)
//	_ = b.AddArc("enter", "busy", 1)
//	net, err := b.Build()
type Builder struct {
	name        string
	places      []Place
	transitions []string
	placeIndex  map[string]int
	transIndex  map[string]int
	pre         []map[int]float64
	post        []map[int]float64
}

// NewBuilder creates a builder for a net called name.
func NewBuilder(name string) *Builder {
	return &Builder{
		name:       name,
		placeIndex: make(map[string]int),
		transIndex: make(map[string]int),
	}
}

// AddPlace adds a place with its initial quantity.
// Returns an error if the name is empty or taken, or the quantity is
// negative or not finite.
func (b *Builder) AddPlace(name string, initial float64) error {
	if name == "" {
		return fmt.Errorf("place name cannot be empty")
	}
	if _, exists := b.placeIndex[name]; exists {
		return fmt.Errorf("place %s already exists", name)
	}
	if math.IsNaN(initial) || math.IsInf(initial, 0) || initial < 0 {
		return fmt.Errorf("place %s: initial quantity must be finite and nonnegative, got %v", name, initial)
	}
	b.placeIndex[name] = len(b.places)
	b.places = append(b.places, Place{ID: len(b.places), Name: name, Initial: initial})
	return nil
}

// SetInitial changes the initial quantity of an existing place.
func (b *Builder) SetInitial(name string, initial float64) error {
	id, ok := b.placeIndex[name]
	if !ok {
		return fmt.Errorf("place %s not found", name)
	}
	if math.IsNaN(initial) || math.IsInf(initial, 0) || initial < 0 {
		return fmt.Errorf("place %s: initial quantity must be finite and nonnegative, got %v", name, initial)
	}
	b.places[id].Initial = initial
	return nil
}

// AddTransition adds a transition without arcs.
// Returns an error if the name is empty or taken.
func (b *Builder) AddTransition(name string) error {
	if name == "" {
		return fmt.Errorf("transition name cannot be empty")
	}
	if _, exists := b.transIndex[name]; exists {
		return fmt.Errorf("transition %s already exists", name)
	}
	b.transIndex[name] = len(b.transitions)
	b.transitions = append(b.transitions, name)
	b.pre = append(b.pre, make(map[int]float64))
	b.post = append(b.post, make(map[int]float64))
	return nil
}

// AddArc connects source to target. A place-to-transition arc adds to the
// transition's preset, a transition-to-place arc to its postset. Repeated
// arcs accumulate. Zero weights are accepted and leave the structure
// unchanged.
func (b *Builder) AddArc(source, target string, weight float64) error {
	sp, srcIsPlace := b.placeIndex[source]
	st, srcIsTrans := b.transIndex[source]
	tp, tgtIsPlace := b.placeIndex[target]
	tt, tgtIsTrans := b.transIndex[target]

	inputArc := srcIsPlace && tgtIsTrans
	outputArc := srcIsTrans && tgtIsPlace
	switch {
	case inputArc && outputArc:
		return fmt.Errorf("arc %s -> %s is ambiguous: both names denote a place and a transition", source, target)
	case inputArc:
		return b.addWeight(b.pre, tt, sp, source, target, weight)
	case outputArc:
		return b.addWeight(b.post, st, tp, source, target, weight)
	case !srcIsPlace && !srcIsTrans:
		return fmt.Errorf("arc %s -> %s: source %s does not exist", source, target, source)
	case !tgtIsPlace && !tgtIsTrans:
		return fmt.Errorf("arc %s -> %s: target %s does not exist", source, target, target)
	default:
		return fmt.Errorf("arc %s -> %s must connect a place and a transition", source, target)
	}
}

// AddInput adds weight to the preset of transition on place.
func (b *Builder) AddInput(place, transition string, weight float64) error {
	p, ok := b.placeIndex[place]
	if !ok {
		return fmt.Errorf("place %s not found", place)
	}
	t, ok := b.transIndex[transition]
	if !ok {
		return fmt.Errorf("transition %s not found", transition)
	}
	return b.addWeight(b.pre, t, p, place, transition, weight)
}

// AddOutput adds weight to the postset of transition on place.
func (b *Builder) AddOutput(transition, place string, weight float64) error {
	p, ok := b.placeIndex[place]
	if !ok {
		return fmt.Errorf("place %s not found", place)
	}
	t, ok := b.transIndex[transition]
	if !ok {
		return fmt.Errorf("transition %s not found", transition)
	}
	return b.addWeight(b.post, t, p, transition, place, weight)
}

func (b *Builder) addWeight(side []map[int]float64, t, p int, source, target string, weight float64) error {
	if math.IsNaN(weight) || math.IsInf(weight, 0) {
		return fmt.Errorf("arc %s -> %s: weight is not finite", source, target)
	}
	if weight < 0 {
		return fmt.Errorf("arc %s -> %s: negative weight %v", source, target, weight)
	}
	side[t][p] += weight
	return nil
}

// Build returns the immutable net.
func (b *Builder) Build() (*Net, error) {
	n := &Net{
		Name:        b.name,
		places:      make([]Place, len(b.places)),
		transitions: make([]Transition, len(b.transitions)),
		placeIndex:  make(map[string]int, len(b.places)),
		transIndex:  make(map[string]int, len(b.transitions)),
		consumers:   make([][]int, len(b.places)),
		producers:   make([][]int, len(b.places)),
	}
	copy(n.places, b.places)
	for name, id := range b.placeIndex {
		n.placeIndex[name] = id
	}
	for name, id := range b.transIndex {
		n.transIndex[name] = id
	}

	for id, name := range b.transitions {
		pre := arcsFromMap(b.pre[id])
		post := arcsFromMap(b.post[id])
		n.transitions[id] = Transition{
			ID:     id,
			Name:   name,
			Pre:    pre,
			Post:   post,
			Effect: effectOf(pre, post),
		}
		for _, a := range pre {
			n.consumers[a.Place] = append(n.consumers[a.Place], id)
		}
		for _, a := range post {
			n.producers[a.Place] = append(n.producers[a.Place], id)
		}
	}
	return n, nil
}
