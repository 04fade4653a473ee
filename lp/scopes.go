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

package lp

import (
	"fmt"
	"math/big"
)

// scopes holds the validated constraints of a solver together with the
// constraint counts recorded by Push.
type scopes struct {
	numVars     int
	constraints []Constraint
	frames      []int
}

func (s *scopes) NumVars() int { return s.numVars }

func (s *scopes) Push() {
	s.frames = append(s.frames, len(s.constraints))
}

// add copies c after checking its variables, coefficients and relation.
func (s *scopes) add(c Constraint) error {
	terms := make([]Term, 0, len(c.Terms))
	for _, t := range c.Terms {
		if t.Var < 0 || t.Var >= s.numVars {
			return fmt.Errorf("constraint %s: variable %d out of range [0,%d)", c, t.Var, s.numVars)
		}
		if t.Coef == nil {
			return fmt.Errorf("constraint on x%d: nil coefficient", t.Var)
		}
		terms = append(terms, Term{Var: t.Var, Coef: new(big.Rat).Set(t.Coef)})
	}
	if c.Rel < GE || c.Rel > LT {
		return fmt.Errorf("constraint %s: unknown relation", c)
	}
	rhs := new(big.Rat)
	if c.RHS != nil {
		rhs.Set(c.RHS)
	}
	s.constraints = append(s.constraints, Constraint{Terms: terms, Rel: c.Rel, RHS: rhs})
	return nil
}

func (s *scopes) pop() error {
	if len(s.frames) == 0 {
		return fmt.Errorf("pop without matching push")
	}
	top := s.frames[len(s.frames)-1]
	s.frames = s.frames[:len(s.frames)-1]
	s.constraints = s.constraints[:top]
	return nil
}

func (s *scopes) clone() scopes {
	c := scopes{
		numVars:     s.numVars,
		constraints: make([]Constraint, len(s.constraints)),
		frames:      make([]int, len(s.frames)),
	}
	// constraints are never mutated after add, sharing them is safe
	copy(c.constraints, s.constraints)
	copy(c.frames, s.frames)
	return c
}

func copyRats(v []*big.Rat) []*big.Rat {
	if v == nil {
		return nil
	}
	out := make([]*big.Rat, len(v))
	for i, x := range v {
		out[i] = new(big.Rat).Set(x)
	}
	return out
}
