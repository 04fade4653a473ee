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

// Place is a net place with its dense id and initial quantity.
type Place struct {
	// ID is the dense index of the place, in insertion order.
	ID int

	// Name is the place name as given to the builder.
	Name string

	// Initial is the quantity of the place in the initial marking.
	Initial float64
}

// String returns a human-readable representation of the place.
func (p Place) String() string {
	return fmt.Sprintf("Place[%d %s: %g]", p.ID, p.Name, p.Initial)
}
