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
	"math/big"
	"strconv"
	"strings"
)

// Marking assigns a nonnegative real quantity to each place, indexed by
// place id.
type Marking []float64

// Clone returns a copy of the marking.
func (m Marking) Clone() Marking {
	c := make(Marking, len(m))
	copy(c, m)
	return c
}

// Equal reports whether both markings agree on every place.
func (m Marking) Equal(o Marking) bool {
	if len(m) != len(o) {
		return false
	}
	for i := range m {
		if m[i] != o[i] {
			return false
		}
	}
	return true
}

// LessEq reports whether m ≤ o componentwise.
func (m Marking) LessEq(o Marking) bool {
	if len(m) != len(o) {
		return false
	}
	for i := range m {
		if m[i] > o[i] {
			return false
		}
	}
	return true
}

// Rats converts the marking exactly to rationals.
func (m Marking) Rats() []*big.Rat {
	out := make([]*big.Rat, len(m))
	for i, v := range m {
		out[i] = ExactRat(v)
	}
	return out
}

// String renders the marking as [1 0 2.5].
func (m Marking) String() string {
	parts := make([]string, len(m))
	for i, v := range m {
		parts[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// ValidateMarking checks that m has one finite entry per place. Negative
// entries are accepted: markings double as plain vectors in the linear
// algebra.
func (n *Net) ValidateMarking(m Marking) error {
	if len(m) != n.NumPlaces() {
		return fmt.Errorf("marking has %d entries, net %s has %d places", len(m), n.Name, n.NumPlaces())
	}
	for i, v := range m {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("marking entry for place %s is not finite", n.places[i].Name)
		}
	}
	return nil
}

// ExactRat converts f to the rational it denotes exactly. It panics on NaN
// and infinities, which callers reject at their entry points.
func ExactRat(f float64) *big.Rat {
	r := new(big.Rat)
	if r.SetFloat64(f) == nil {
		panic(fmt.Sprintf("petri: non-finite value %v", f))
	}
	return r
}

// Dot returns the exact inner product of a and b. Missing trailing entries
// count as zero.
func Dot(a, b []float64) *big.Rat {
	sum := new(big.Rat)
	term := new(big.Rat)
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i] == 0 || b[i] == 0 {
			continue
		}
		term.Mul(ExactRat(a[i]), ExactRat(b[i]))
		sum.Add(sum, term)
	}
	return sum
}

// DotArcs returns the exact inner product of the sparse vector arcs with the
// dense vector v.
func DotArcs(arcs []Arc, v []float64) *big.Rat {
	sum := new(big.Rat)
	term := new(big.Rat)
	for _, a := range arcs {
		if a.Place >= len(v) || v[a.Place] == 0 {
			continue
		}
		term.Mul(ExactRat(a.Weight), ExactRat(v[a.Place]))
		sum.Add(sum, term)
	}
	return sum
}
