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

	"github.com/jazzpetri/bisep/petri"
)

// Witness is a solution of a Displacement problem.
type Witness struct {
	// Firing is indexed by transition id; zero outside the problem's
	// transitions.
	Firing []*big.Rat

	// Slack is indexed by place id; nil when the problem has no slack.
	Slack []*big.Rat
}

// Displacement is the problem X over a transition set ts:
//
//	x ≥ 0, supp(x) ⊆ ts, C·x = delta        (reachability)
//	x ≥ 0, w ≥ 0, supp(x) ⊆ ts, C·x - w = delta (coverability)
//
// Only the transitions of ts get variables.
type Displacement struct {
	solver    Solver
	numTrans  int
	numPlaces int
	columns   []int
	varOf     []int
	slack     bool
}

// NewDisplacement states X for net, ts and delta on a fresh solver of o.
func NewDisplacement(o Oracle, net *petri.Net, ts petri.Set, delta []*big.Rat, withSlack bool) (*Displacement, error) {
	if len(delta) != net.NumPlaces() {
		return nil, fmt.Errorf("displacement has %d entries, net has %d places", len(delta), net.NumPlaces())
	}
	d := &Displacement{
		numTrans:  net.NumTransitions(),
		numPlaces: net.NumPlaces(),
		columns:   ts.IDs(),
		varOf:     make([]int, net.NumTransitions()),
		slack:     withSlack,
	}
	for i := range d.varOf {
		d.varOf[i] = -1
	}
	for v, t := range d.columns {
		d.varOf[t] = v
	}
	n := len(d.columns)
	if withSlack {
		n += d.numPlaces
	}
	d.solver = o.NewSolver(n)

	for v := 0; v < n; v++ {
		if err := d.solver.Add(NonNegative(v)); err != nil {
			return nil, err
		}
	}
	inc := net.Incidence(ts)
	for p, entries := range inc.Rows {
		terms := make([]Term, 0, len(entries)+1)
		for _, e := range entries {
			terms = append(terms, Term{Var: d.varOf[e.Transition], Coef: petri.ExactRat(e.Value)})
		}
		if withSlack {
			terms = append(terms, T(len(d.columns)+p, -1))
		}
		if len(terms) == 0 && delta[p].Sign() == 0 {
			continue
		}
		if err := d.solver.Add(Constraint{Terms: terms, Rel: EQ, RHS: delta[p]}); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// Clone returns an independent copy for use on another goroutine.
func (d *Displacement) Clone() *Displacement {
	c := *d
	c.solver = d.solver.Clone()
	return &c
}

// Solve checks X itself.
func (d *Displacement) Solve(ctx context.Context) (*Witness, error) {
	return d.solveWith(ctx, nil)
}

// SolvePositive checks X ∧ x_t > 0. A transition outside the problem's set
// is infeasible without an oracle call.
func (d *Displacement) SolvePositive(ctx context.Context, t int) (*Witness, error) {
	if t < 0 || t >= d.numTrans || d.varOf[t] < 0 {
		return nil, nil
	}
	c := Positive(d.varOf[t])
	return d.solveWith(ctx, &c)
}

// SolvePositiveSlack checks X ∧ w_p > 0. Without slack it is infeasible.
func (d *Displacement) SolvePositiveSlack(ctx context.Context, p int) (*Witness, error) {
	if !d.slack || p < 0 || p >= d.numPlaces {
		return nil, nil
	}
	c := Positive(len(d.columns) + p)
	return d.solveWith(ctx, &c)
}

// solveWith returns nil without error when the problem is infeasible.
func (d *Displacement) solveWith(ctx context.Context, extra *Constraint) (*Witness, error) {
	d.solver.Push()
	defer d.solver.Pop()
	if extra != nil {
		if err := d.solver.Add(*extra); err != nil {
			return nil, err
		}
	}
	status, err := d.solver.Check(ctx)
	if err != nil || status == Unsat {
		return nil, err
	}
	model := d.solver.Model()
	w := &Witness{Firing: make([]*big.Rat, d.numTrans)}
	for t := range w.Firing {
		w.Firing[t] = new(big.Rat)
	}
	for v, t := range d.columns {
		w.Firing[t] = model[v]
	}
	if d.slack {
		w.Slack = make([]*big.Rat, d.numPlaces)
		for p := range w.Slack {
			w.Slack[p] = model[len(d.columns)+p]
		}
	}
	return w, nil
}

// Potential is the problem Y over a transition set ts with free y:
//
//	C_t·y ≥ 0 for t in ts,  delta·y ≤ 0
//
// Its solutions are linear potentials that no transition of ts decreases
// and that do not increase from source to target.
type Potential struct {
	solver Solver
	net    *petri.Net
	delta  []*big.Rat
	dTerms []Term
}

// NewPotential states Y for net, ts and delta on a fresh solver of o.
func NewPotential(o Oracle, net *petri.Net, ts petri.Set, delta []*big.Rat) (*Potential, error) {
	if len(delta) != net.NumPlaces() {
		return nil, fmt.Errorf("displacement has %d entries, net has %d places", len(delta), net.NumPlaces())
	}
	p := &Potential{
		solver: o.NewSolver(net.NumPlaces()),
		net:    net,
		delta:  delta,
	}
	for _, t := range ts.IDs() {
		if err := p.solver.Add(Constraint{Terms: arcTerms(net.Effect(t)), Rel: GE}); err != nil {
			return nil, err
		}
	}
	for i, v := range delta {
		if v.Sign() != 0 {
			p.dTerms = append(p.dTerms, Term{Var: i, Coef: v})
		}
	}
	if err := p.solver.Add(Constraint{Terms: p.dTerms, Rel: LE}); err != nil {
		return nil, err
	}
	return p, nil
}

// Clone returns an independent copy for use on another goroutine.
func (p *Potential) Clone() *Potential {
	c := *p
	c.solver = p.solver.Clone()
	return &c
}

// StrictDecrease checks Y ∧ delta·y < 0 and returns y, or nil when
// infeasible.
func (p *Potential) StrictDecrease(ctx context.Context) ([]*big.Rat, error) {
	return p.solveWith(ctx, Constraint{Terms: p.dTerms, Rel: LT})
}

// Exceeds checks Y ∧ delta·y < C_t·y and returns y, or nil when
// infeasible.
func (p *Potential) Exceeds(ctx context.Context, t int) ([]*big.Rat, error) {
	terms := arcTerms(p.net.Effect(t))
	for _, d := range p.dTerms {
		terms = append(terms, Term{Var: d.Var, Coef: new(big.Rat).Neg(d.Coef)})
	}
	return p.solveWith(ctx, Constraint{Terms: terms, Rel: GT})
}

func (p *Potential) solveWith(ctx context.Context, extra Constraint) ([]*big.Rat, error) {
	p.solver.Push()
	defer p.solver.Pop()
	if err := p.solver.Add(extra); err != nil {
		return nil, err
	}
	status, err := p.solver.Check(ctx)
	if err != nil || status == Unsat {
		return nil, err
	}
	return p.solver.Model(), nil
}

func arcTerms(arcs []petri.Arc) []Term {
	terms := make([]Term, len(arcs))
	for i, a := range arcs {
		terms[i] = Term{Var: a.Place, Coef: petri.ExactRat(a.Weight)}
	}
	return terms
}
