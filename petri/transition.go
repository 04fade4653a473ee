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

import "fmt"

// Transition is a net transition with its sparse pre and post vectors.
type Transition struct {
	// ID is the dense index of the transition, in insertion order.
	ID int

	// Name is the transition name as given to the builder.
	Name string

	// Pre lists the quantities consumed per unit of firing.
	Pre []Arc

	// Post lists the quantities produced per unit of firing.
	Post []Arc

	// Effect is Post - Pre, the column of the incidence matrix.
	Effect []Arc
}

// String returns a human-readable representation of the transition.
func (t Transition) String() string {
	return fmt.Sprintf("Transition[%d %s: %d in, %d out]", t.ID, t.Name, len(t.Pre), len(t.Post))
}

func effectOf(pre, post []Arc) []Arc {
	w := make(map[int]float64, len(pre)+len(post))
	for _, a := range post {
		w[a.Place] += a.Weight
	}
	for _, a := range pre {
		w[a.Place] -= a.Weight
	}
	return arcsFromMap(w)
}
