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

// Package separator represents and generates bi-separators for continuous
// Petri nets.
//
// A bi-separator for a transition set U and markings msrc, mtgt is a formula
// φ(m, m') in disjunctive normal form over linear atoms such that φ(msrc,
// msrc) and φ(mtgt, mtgt) hold, φ(msrc, mtgt) does not, and φ is preserved
// by firing any transition of U forward on m' and backward on m. Such a
// formula certifies that mtgt is not reachable from msrc using U.
//
// Generated formulas carry a Syndrome: for every clause, transition and
// direction it names the clause that the fired clause implies, together
// with the atom correspondence, so that a checker can verify the
// certificate atom by atom.
package separator

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/jazzpetri/bisep/petri"
)

// Atom is the linear constraint Left·m ≤ Right·m', or Left·m < Right·m'
// when Strict is set. Left and Right have one entry per place.
type Atom struct {
	Left   []float64
	Right  []float64
	Strict bool
}

// NewAtom returns an atom owning copies of left and right.
func NewAtom(left, right []float64, strict bool) Atom {
	return Atom{
		Left:   append([]float64(nil), left...),
		Right:  append([]float64(nil), right...),
		Strict: strict,
	}
}

// Holds evaluates the atom on (m, mp) in exact arithmetic.
func (a Atom) Holds(m, mp petri.Marking) bool {
	cmp := petri.Dot(a.Left, m).Cmp(petri.Dot(a.Right, mp))
	if a.Strict {
		return cmp < 0
	}
	return cmp <= 0
}

// Dim returns the number of places the atom ranges over, or -1 if its two
// sides disagree.
func (a Atom) Dim() int {
	if len(a.Left) != len(a.Right) {
		return -1
	}
	return len(a.Left)
}

// WithStrict returns a copy of a with the given strictness.
func (a Atom) WithStrict(strict bool) Atom {
	return NewAtom(a.Left, a.Right, strict)
}

// String renders the atom as "[1 0]·m <= [0 1]·m'".
func (a Atom) String() string {
	rel := "<="
	if a.Strict {
		rel = "<"
	}
	return fmt.Sprintf("%v·m %s %v·m'", a.Left, rel, a.Right)
}

// Clause is a conjunction of atoms. ID is the clause's index in its formula.
type Clause struct {
	ID    int
	Atoms []Atom
}

// Holds reports whether every atom holds on (m, mp).
func (c Clause) Holds(m, mp petri.Marking) bool {
	for _, a := range c.Atoms {
		if !a.Holds(m, mp) {
			return false
		}
	}
	return true
}

func (c Clause) String() string {
	parts := make([]string, len(c.Atoms))
	for i, a := range c.Atoms {
		parts[i] = a.String()
	}
	return "(" + strings.Join(parts, " && ") + ")"
}

// Formula is a disjunction of clauses over a net with Places places, closed
// under the transitions of Transitions.
type Formula struct {
	Net         string
	Places      int
	Transitions petri.Set
	Clauses     []Clause

	// Syndrome is nil for formulas that were not produced by the generator.
	Syndrome *Syndrome
}

// NewFormula builds a formula from clause bodies, numbering clauses in
// order. The atoms are copied.
func NewFormula(net string, places int, transitions petri.Set, clauses [][]Atom) *Formula {
	f := &Formula{
		Net:         net,
		Places:      places,
		Transitions: transitions.Clone(),
		Clauses:     make([]Clause, len(clauses)),
	}
	for i, body := range clauses {
		atoms := make([]Atom, len(body))
		for j, a := range body {
			atoms[j] = NewAtom(a.Left, a.Right, a.Strict)
		}
		f.Clauses[i] = Clause{ID: i, Atoms: atoms}
	}
	return f
}

// Holds reports whether some clause holds on (m, mp).
func (f *Formula) Holds(m, mp petri.Marking) bool {
	for _, c := range f.Clauses {
		if c.Holds(m, mp) {
			return true
		}
	}
	return false
}

// NumAtoms returns the total number of atoms.
func (f *Formula) NumAtoms() int {
	n := 0
	for _, c := range f.Clauses {
		n += len(c.Atoms)
	}
	return n
}

// Size renders the shape of the formula as "n(c1,c2,...)" where n is the
// number of clauses and ci the number of atoms of clause i.
func (f *Formula) Size() string {
	var b strings.Builder
	b.WriteString(strconv.Itoa(len(f.Clauses)))
	b.WriteByte('(')
	for i, c := range f.Clauses {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(len(c.Atoms)))
	}
	b.WriteByte(')')
	return b.String()
}

// Validate checks that every atom ranges over f.Places places, that no
// clause is empty, and that clause ids match their positions.
func (f *Formula) Validate() error {
	if f.Places < 0 {
		return fmt.Errorf("negative place count %d", f.Places)
	}
	for i, c := range f.Clauses {
		if c.ID != i {
			return fmt.Errorf("clause at position %d has id %d", i, c.ID)
		}
		if len(c.Atoms) == 0 {
			return fmt.Errorf("clause %d is empty", i)
		}
		for j, a := range c.Atoms {
			if a.Dim() != f.Places {
				return fmt.Errorf("clause %d atom %d: has %d/%d coefficients, want %d",
					i, j, len(a.Left), len(a.Right), f.Places)
			}
			if !finite(a.Left) || !finite(a.Right) {
				return fmt.Errorf("clause %d atom %d has a non-finite coefficient", i, j)
			}
		}
	}
	if f.Syndrome != nil {
		if f.Syndrome.NumClauses() != len(f.Clauses) || f.Syndrome.NumTransitions() != len(f.Transitions) {
			return fmt.Errorf("syndrome shape %dx%d does not match formula %dx%d",
				f.Syndrome.NumClauses(), f.Syndrome.NumTransitions(), len(f.Clauses), len(f.Transitions))
		}
	}
	return nil
}

func finite(v []float64) bool {
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}

// Clone returns a deep copy of f.
func (f *Formula) Clone() *Formula {
	bodies := make([][]Atom, len(f.Clauses))
	for i, c := range f.Clauses {
		bodies[i] = c.Atoms
	}
	c := NewFormula(f.Net, f.Places, f.Transitions, bodies)
	if f.Syndrome != nil {
		c.Syndrome = f.Syndrome.Clone()
	}
	return c
}

func (f *Formula) String() string {
	parts := make([]string, len(f.Clauses))
	for i, c := range f.Clauses {
		parts[i] = c.String()
	}
	return strings.Join(parts, " || ")
}
