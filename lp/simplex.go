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
	"context"
	"fmt"
	"math/big"
)

// checkEvery is the number of pivots between cancellation checks.
const checkEvery = 32

// Simplex is an exact oracle: a two-phase primal simplex over math/big
// rationals with Bland's rule, so it neither cycles nor rounds.
//
// Strict constraints are decided by maximizing a shared slack ε ≤ 1
// subtracted from every strict row; the system is satisfiable iff ε can be
// made positive. Unbounded variables are split into a difference of two
// nonnegative columns, except variables carrying an explicit x ≥ 0 (or
// x > 0) bound.
type Simplex struct{}

// NewSimplex returns the exact simplex oracle.
func NewSimplex() *Simplex { return &Simplex{} }

// NewSolver creates an empty solver over numVars variables.
func (s *Simplex) NewSolver(numVars int) Solver {
	return &simplexSolver{scopes: scopes{numVars: numVars}}
}

type simplexSolver struct {
	scopes
	model []*big.Rat
}

func (s *simplexSolver) Add(c Constraint) error {
	s.model = nil
	return s.add(c)
}

func (s *simplexSolver) Pop() error {
	s.model = nil
	return s.pop()
}

func (s *simplexSolver) Check(ctx context.Context) (Status, error) {
	s.model = nil
	if err := ctx.Err(); err != nil {
		return Unsat, err
	}
	status, model, err := solve(ctx, s.numVars, s.constraints)
	if err != nil {
		return Unsat, err
	}
	if status == Sat {
		s.model = model
	}
	return status, nil
}

func (s *simplexSolver) Model() []*big.Rat { return copyRats(s.model) }

func (s *simplexSolver) Clone() Solver {
	return &simplexSolver{scopes: s.clone()}
}

// row is a constraint normalized to Σ coefs·x (≥ | > | =) rhs.
type row struct {
	coefs  map[int]*big.Rat
	strict bool
	eq     bool
	rhs    *big.Rat
}

func normalize(c Constraint) row {
	r := row{coefs: make(map[int]*big.Rat), rhs: new(big.Rat)}
	for _, t := range c.Terms {
		if t.Coef.Sign() == 0 {
			continue
		}
		if acc, ok := r.coefs[t.Var]; ok {
			acc.Add(acc, t.Coef)
		} else {
			r.coefs[t.Var] = new(big.Rat).Set(t.Coef)
		}
	}
	for v, a := range r.coefs {
		if a.Sign() == 0 {
			delete(r.coefs, v)
		}
	}
	r.rhs.Set(c.RHS)

	switch c.Rel {
	case LE, LT:
		for _, a := range r.coefs {
			a.Neg(a)
		}
		r.rhs.Neg(r.rhs)
	}
	r.strict = c.Rel.Strict()
	r.eq = c.Rel == EQ
	return r
}

// holdsTrivially decides a row without variables.
func (r row) holdsTrivially() bool {
	switch {
	case r.eq:
		return r.rhs.Sign() == 0
	case r.strict:
		return r.rhs.Sign() < 0
	default:
		return r.rhs.Sign() <= 0
	}
}

// tableau is a dense simplex tableau in canonical form. cells[i] holds row
// i with the right-hand side in the last column; obj holds the reduced
// costs of the maximized objective with -value in the last column.
type tableau struct {
	cells   [][]big.Rat
	obj     []big.Rat
	basis   []int
	cols    int
	allowed []bool
	pivots  int
}

func solve(ctx context.Context, numVars int, constraints []Constraint) (Status, []*big.Rat, error) {
	rows := make([]row, 0, len(constraints)+1)
	nonneg := make([]bool, numVars)
	anyStrict := false
	for _, c := range constraints {
		r := normalize(c)
		if len(r.coefs) == 0 {
			if !r.holdsTrivially() {
				return Unsat, nil, nil
			}
			continue
		}
		if len(r.coefs) == 1 && !r.eq && r.rhs.Sign() == 0 {
			for v, a := range r.coefs {
				if a.Sign() > 0 {
					nonneg[v] = true
					if !r.strict {
						// a plain bound, carried by the column itself
						r.coefs = nil
					}
				}
			}
			if r.coefs == nil {
				continue
			}
		}
		anyStrict = anyStrict || r.strict
		rows = append(rows, r)
	}

	// column layout: x+ (or x), x-, ε, slacks, artificials
	plus := make([]int, numVars)
	minus := make([]int, numVars)
	cols := 0
	for v := 0; v < numVars; v++ {
		plus[v] = cols
		cols++
		minus[v] = -1
		if !nonneg[v] {
			minus[v] = cols
			cols++
		}
	}
	eps := -1
	if anyStrict {
		eps = cols
		cols++
		// ε ≤ 1, written -ε ≥ -1
		rows = append(rows, row{coefs: map[int]*big.Rat{}, rhs: big.NewRat(-1, 1)})
	}
	epsRow := len(rows) - 1

	slack := make([]int, len(rows))
	for i, r := range rows {
		slack[i] = -1
		if !r.eq {
			slack[i] = cols
			cols++
		}
	}
	needsArt := make([]bool, len(rows))
	artStart := cols
	for i, r := range rows {
		// ≥ rows with rhs ≤ 0 are negated so that their slack is basic
		if r.eq || r.rhs.Sign() > 0 {
			needsArt[i] = true
			cols++
		}
	}

	tab := &tableau{
		cells:   make([][]big.Rat, len(rows)),
		basis:   make([]int, len(rows)),
		cols:    cols,
		allowed: make([]bool, cols),
	}
	for j := range tab.allowed {
		tab.allowed[j] = true
	}
	art := artStart
	for i, r := range rows {
		cells := make([]big.Rat, cols+1)
		for v, a := range r.coefs {
			cells[plus[v]].Set(a)
			if minus[v] >= 0 {
				cells[minus[v]].Neg(a)
			}
		}
		if r.strict {
			cells[eps].SetInt64(-1)
		}
		if anyStrict && i == epsRow {
			cells[eps].SetInt64(-1)
		}
		if slack[i] >= 0 {
			cells[slack[i]].SetInt64(-1)
		}
		cells[cols].Set(r.rhs)
		if needsArt[i] {
			if r.rhs.Sign() < 0 {
				negateRow(cells)
			}
			cells[art].SetInt64(1)
			tab.basis[i] = art
			art++
		} else {
			negateRow(cells)
			tab.basis[i] = slack[i]
		}
		tab.cells[i] = cells
	}

	// phase 1: maximize -Σ artificials
	if art > artStart {
		tab.obj = make([]big.Rat, cols+1)
		for j := artStart; j < art; j++ {
			tab.obj[j].SetInt64(-1)
		}
		for i := range tab.cells {
			if tab.basis[i] >= artStart {
				addRow(tab.obj, tab.cells[i])
			}
		}
		if _, err := tab.maximize(ctx, nil); err != nil {
			return Unsat, nil, err
		}
		if tab.obj[cols].Sign() != 0 {
			return Unsat, nil, nil
		}
		if err := tab.evictArtificials(artStart); err != nil {
			return Unsat, nil, err
		}
		for j := artStart; j < cols; j++ {
			tab.allowed[j] = false
		}
	}

	// phase 2: maximize ε until it is positive
	if anyStrict {
		tab.obj = make([]big.Rat, cols+1)
		tab.obj[eps].SetInt64(1)
		for i := range tab.cells {
			if tab.basis[i] == eps {
				subRow(tab.obj, tab.cells[i])
			}
		}
		positive := func(t *tableau) bool { return t.obj[t.cols].Sign() < 0 }
		if _, err := tab.maximize(ctx, positive); err != nil {
			return Unsat, nil, err
		}
		if !positive(tab) {
			return Unsat, nil, nil
		}
	}

	z := make([]big.Rat, cols)
	for i, b := range tab.basis {
		z[b].Set(&tab.cells[i][cols])
	}
	model := make([]*big.Rat, numVars)
	for v := 0; v < numVars; v++ {
		x := new(big.Rat).Set(&z[plus[v]])
		if minus[v] >= 0 {
			x.Sub(x, &z[minus[v]])
		}
		model[v] = x
	}
	for _, c := range constraints {
		if !Satisfies(c, model) {
			return Unsat, nil, fmt.Errorf("%w: model violates %s", ErrOracle, c)
		}
	}
	return Sat, model, nil
}

// maximize runs Bland pivots until the reduced costs are nonpositive or
// stop reports true.
func (t *tableau) maximize(ctx context.Context, stop func(*tableau) bool) (bool, error) {
	for {
		if stop != nil && stop(t) {
			return true, nil
		}
		enter := -1
		for j := 0; j < t.cols; j++ {
			if t.allowed[j] && t.obj[j].Sign() > 0 {
				enter = j
				break
			}
		}
		if enter < 0 {
			return false, nil
		}
		leave := -1
		var best, ratio big.Rat
		for i := range t.cells {
			a := &t.cells[i][enter]
			if a.Sign() <= 0 {
				continue
			}
			ratio.Quo(&t.cells[i][t.cols], a)
			if leave < 0 {
				leave = i
				best.Set(&ratio)
				continue
			}
			switch c := ratio.Cmp(&best); {
			case c < 0, c == 0 && t.basis[i] < t.basis[leave]:
				leave = i
				best.Set(&ratio)
			}
		}
		if leave < 0 {
			return false, fmt.Errorf("%w: objective unbounded", ErrOracle)
		}
		t.pivot(leave, enter)
		t.pivots++
		if t.pivots%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return false, err
			}
		}
	}
}

// evictArtificials pivots zero-valued artificials out of the basis after a
// successful phase 1, dropping rows that turn out to be redundant.
func (t *tableau) evictArtificials(artStart int) error {
	for i := 0; i < len(t.cells); i++ {
		if t.basis[i] < artStart {
			continue
		}
		enter := -1
		for j := 0; j < artStart; j++ {
			if t.cells[i][j].Sign() != 0 {
				enter = j
				break
			}
		}
		if enter >= 0 {
			t.pivot(i, enter)
			continue
		}
		t.cells = append(t.cells[:i], t.cells[i+1:]...)
		t.basis = append(t.basis[:i], t.basis[i+1:]...)
		i--
	}
	return nil
}

func (t *tableau) pivot(r, c int) {
	pr := t.cells[r]
	var inv big.Rat
	inv.Inv(&pr[c])
	nz := make([]int, 0, len(pr))
	for j := range pr {
		if pr[j].Sign() != 0 {
			pr[j].Mul(&pr[j], &inv)
			nz = append(nz, j)
		}
	}
	var f, tmp big.Rat
	eliminate := func(target []big.Rat) {
		if target[c].Sign() == 0 {
			return
		}
		f.Set(&target[c])
		for _, j := range nz {
			tmp.Mul(&f, &pr[j])
			target[j].Sub(&target[j], &tmp)
		}
	}
	for i := range t.cells {
		if i != r {
			eliminate(t.cells[i])
		}
	}
	eliminate(t.obj)
	t.basis[r] = c
}

func negateRow(cells []big.Rat) {
	for j := range cells {
		cells[j].Neg(&cells[j])
	}
}

func addRow(dst, src []big.Rat) {
	for j := range src {
		dst[j].Add(&dst[j], &src[j])
	}
}

func subRow(dst, src []big.Rat) {
	for j := range src {
		dst[j].Sub(&dst[j], &src[j])
	}
}

// Satisfies reports whether x satisfies c exactly.
func Satisfies(c Constraint, x []*big.Rat) bool {
	lhs := new(big.Rat)
	var tmp big.Rat
	for _, t := range c.Terms {
		if t.Var >= len(x) || x[t.Var] == nil {
			continue
		}
		tmp.Mul(t.Coef, x[t.Var])
		lhs.Add(lhs, &tmp)
	}
	rhs := c.RHS
	if rhs == nil {
		rhs = new(big.Rat)
	}
	cmp := lhs.Cmp(rhs)
	switch c.Rel {
	case GE:
		return cmp >= 0
	case GT:
		return cmp > 0
	case EQ:
		return cmp == 0
	case LE:
		return cmp <= 0
	case LT:
		return cmp < 0
	}
	return false
}
