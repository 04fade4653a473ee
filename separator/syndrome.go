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

package separator

import "fmt"

// Direction selects how a transition is fired against a pair (m, m').
type Direction int

const (
	// Forward fires the transition on m'.
	Forward Direction = iota
	// Backward fires the transition in reverse on m.
	Backward
)

// Directions lists both directions in index order.
var Directions = [2]Direction{Forward, Backward}

func (d Direction) String() string {
	if d == Backward {
		return "backward"
	}
	return "forward"
}

// ParseDirection is the inverse of Direction.String.
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "forward":
		return Forward, nil
	case "backward":
		return Backward, nil
	}
	return Forward, fmt.Errorf("unknown direction %q", s)
}

// Pointer names the clause implied by a fired clause. Atoms[k] is the atom
// of the source clause that implies atom k of clause Clause. A negative
// Clause marks an undefined entry.
type Pointer struct {
	Clause int
	Atoms  []int
}

// Defined reports whether p points anywhere.
func (p Pointer) Defined() bool { return p.Clause >= 0 }

// Syndrome is a flat table of pointers indexed by (clause, transition,
// direction).
type Syndrome struct {
	clauses     int
	transitions int
	entries     []Pointer
}

// NewSyndrome returns a syndrome with every entry undefined.
func NewSyndrome(clauses, transitions int) *Syndrome {
	s := &Syndrome{
		clauses:     clauses,
		transitions: transitions,
		entries:     make([]Pointer, clauses*transitions*2),
	}
	for i := range s.entries {
		s.entries[i].Clause = -1
	}
	return s
}

// NumClauses returns the number of source clauses.
func (s *Syndrome) NumClauses() int { return s.clauses }

// NumTransitions returns the number of transitions of the net.
func (s *Syndrome) NumTransitions() int { return s.transitions }

func (s *Syndrome) index(clause, t int, dir Direction) int {
	return (clause*s.transitions+t)*2 + int(dir)
}

func (s *Syndrome) inRange(clause, t int, dir Direction) bool {
	return clause >= 0 && clause < s.clauses && t >= 0 && t < s.transitions &&
		(dir == Forward || dir == Backward)
}

// Set records p for (clause, t, dir). The atom map is copied.
func (s *Syndrome) Set(clause, t int, dir Direction, p Pointer) {
	if !s.inRange(clause, t, dir) {
		panic(fmt.Sprintf("separator: syndrome entry (%d, %d, %v) out of range", clause, t, dir))
	}
	s.entries[s.index(clause, t, dir)] = Pointer{Clause: p.Clause, Atoms: append([]int(nil), p.Atoms...)}
}

// Get returns the entry for (clause, t, dir); ok is false when it is
// undefined or out of range.
func (s *Syndrome) Get(clause, t int, dir Direction) (p Pointer, ok bool) {
	if !s.inRange(clause, t, dir) {
		return Pointer{Clause: -1}, false
	}
	p = s.entries[s.index(clause, t, dir)]
	return p, p.Defined()
}

// Clone returns a deep copy of s.
func (s *Syndrome) Clone() *Syndrome {
	c := NewSyndrome(s.clauses, s.transitions)
	for i, p := range s.entries {
		c.entries[i] = Pointer{Clause: p.Clause, Atoms: append([]int(nil), p.Atoms...)}
	}
	return c
}

// Entry is one defined syndrome entry.
type Entry struct {
	Clause     int
	Transition int
	Direction  Direction
	Pointer    Pointer
}

// Entries lists the defined entries in index order.
func (s *Syndrome) Entries() []Entry {
	var out []Entry
	for c := 0; c < s.clauses; c++ {
		for t := 0; t < s.transitions; t++ {
			for _, d := range Directions {
				if p, ok := s.Get(c, t, d); ok {
					out = append(out, Entry{Clause: c, Transition: t, Direction: d, Pointer: p})
				}
			}
		}
	}
	return out
}
