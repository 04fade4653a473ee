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

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"testing"

	bctx "github.com/jazzpetri/bisep/context"
	"github.com/jazzpetri/bisep/lp"
	"github.com/jazzpetri/bisep/petri"
)

func TestGenerate_SiphonAndTrap(t *testing.T) {
	net := makeCatalystNet(t)
	msrc := petri.Marking{0, 0}
	mtgt := petri.Marking{0, 1}

	f, err := NewGenerator(net, lp.NewSimplex(), Options{}).
		Generate(bctx.Background(), net.AllTransitions(), msrc, mtgt)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := f.Size(); got != "2(1,2)" {
		t.Fatalf("Size = %q, want %q: %v", got, "2(1,2)", f)
	}

	// case 2: the siphon {p0,p1} is marked in m or the trap {p0} in m'.
	a := f.Clauses[0].Atoms[0]
	if !a.Strict || !floatsEqual(a.Left, []float64{-1, -1}) || !floatsEqual(a.Right, []float64{1, 0}) {
		t.Errorf("case-2 atom = %v", a)
	}
	// case 3: both empty, and the leaf separating on p1.
	b := f.Clauses[1].Atoms[0]
	if b.Strict || !floatsEqual(b.Left, []float64{1, 0}) || !floatsEqual(b.Right, []float64{-1, -1}) {
		t.Errorf("case-3 atom = %v", b)
	}
	c := f.Clauses[1].Atoms[1]
	if c.Strict || !floatsEqual(c.Left, []float64{0, -1}) || !floatsEqual(c.Right, []float64{0, -1}) {
		t.Errorf("leaf atom = %v", c)
	}

	for _, d := range Directions {
		p, ok := f.Syndrome.Get(0, 0, d)
		if !ok || p.Clause != 0 || !intsEqual(p.Atoms, []int{0}) {
			t.Errorf("syndrome(0, t0, %v) = %+v, %v", d, p, ok)
		}
		p, ok = f.Syndrome.Get(1, 0, d)
		if !ok || p.Clause != 0 || !intsEqual(p.Atoms, []int{0}) {
			t.Errorf("syndrome(1, t0, %v) = %+v, %v", d, p, ok)
		}
	}
	assertBoundary(t, f, msrc, mtgt)
	if err := f.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestGenerate_ExcludedTransition(t *testing.T) {
	net := makeTwoComponentNet(t)
	msrc := petri.Marking{0, 0, 0, 0}
	mtgt := petri.Marking{0, 1, 0, 0}

	f, err := NewGenerator(net, lp.NewSimplex(), Options{Workers: 2}).
		Generate(bctx.Background(), net.AllTransitions(), msrc, mtgt)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := f.Size(); got != "3(1,2,3)" {
		t.Fatalf("Size = %q, want %q: %v", got, "3(1,2,3)", f)
	}

	y := f.Clauses[0].Atoms[0]
	if !y.Strict || !floatsEqual(y.Left, y.Right) {
		t.Errorf("case-1 atom = %v", y)
	}
	// t1 strictly raises the potential.
	if petri.DotArcs(net.Effect(1), y.Left).Sign() <= 0 {
		t.Errorf("t1 does not raise potential %v", y.Left)
	}
	if inv := f.Clauses[1].Atoms[0]; inv.Strict || !floatsEqual(inv.Left, y.Left) {
		t.Errorf("case-2 does not start with the invariant: %v", inv)
	}
	if a := f.Clauses[1].Atoms[1]; !floatsEqual(a.Left, []float64{-1, -1, -1, -1}) || !floatsEqual(a.Right, []float64{1, 0, 1, 1}) {
		t.Errorf("case-2 siphon/trap atom = %v", a)
	}

	tests := []struct {
		clause, transition int
		want               Pointer
	}{
		{0, 0, Pointer{Clause: 0, Atoms: []int{0}}},
		{0, 1, Pointer{Clause: 0, Atoms: []int{0}}},
		{1, 0, Pointer{Clause: 1, Atoms: []int{0, 1}}},
		{1, 1, Pointer{Clause: 0, Atoms: []int{0}}},
		{2, 0, Pointer{Clause: 1, Atoms: []int{0, 1}}},
		{2, 1, Pointer{Clause: 0, Atoms: []int{0}}},
	}
	for _, tt := range tests {
		for _, d := range Directions {
			t.Run(fmt.Sprintf("c%d/t%d/%v", tt.clause, tt.transition, d), func(t *testing.T) {
				p, ok := f.Syndrome.Get(tt.clause, tt.transition, d)
				if !ok {
					t.Fatal("undefined syndrome entry")
				}
				if p.Clause != tt.want.Clause || !intsEqual(p.Atoms, tt.want.Atoms) {
					t.Errorf("got %+v, want %+v", p, tt.want)
				}
			})
		}
	}
	assertBoundary(t, f, msrc, mtgt)
}

func TestGenerate_DisplacementInfeasible(t *testing.T) {
	net := makeLineNet(t)
	msrc := petri.Marking{1, 0}
	mtgt := petri.Marking{0, 2}

	f, err := NewGenerator(net, lp.NewSimplex(), Options{}).
		Generate(bctx.Background(), net.AllTransitions(), msrc, mtgt)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := f.Size(); got != "1(1)" {
		t.Fatalf("Size = %q, want %q", got, "1(1)")
	}
	a := f.Clauses[0].Atoms[0]
	if a.Strict || !floatsEqual(a.Left, a.Right) {
		t.Errorf("atom = %v, want a non-strict potential", a)
	}
	if petri.DotArcs(net.Effect(0), a.Left).Sign() < 0 {
		t.Errorf("t0 decreases potential %v", a.Left)
	}
	for _, d := range Directions {
		if p, ok := f.Syndrome.Get(0, 0, d); !ok || p.Clause != 0 {
			t.Errorf("syndrome(0, t0, %v) = %+v, %v", d, p, ok)
		}
	}
	assertBoundary(t, f, msrc, mtgt)
}

func TestGenerate_EmptyTransitionSet(t *testing.T) {
	net := makeLineNet(t)
	tests := []struct {
		name       string
		msrc, mtgt petri.Marking
		want       []float64
	}{
		{"source larger", petri.Marking{1, 0}, petri.Marking{0, 2}, []float64{1, 0}},
		{"source smaller", petri.Marking{1, 0}, petri.Marking{1, 3}, []float64{0, -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := NewGenerator(net, lp.NewSimplex(), Options{}).
				Generate(bctx.Background(), petri.NewSet(1), tt.msrc, tt.mtgt)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			a := f.Clauses[0].Atoms[0]
			if a.Strict || !floatsEqual(a.Left, tt.want) || !floatsEqual(a.Right, tt.want) {
				t.Errorf("atom = %v, want %v", a, tt.want)
			}
			if len(f.Syndrome.Entries()) != 0 {
				t.Errorf("expected no syndrome entries, got %v", f.Syndrome.Entries())
			}
			assertBoundary(t, f, tt.msrc, tt.mtgt)
		})
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	net := makeTwoComponentNet(t)
	msrc := petri.Marking{0, 0, 0, 0}
	mtgt := petri.Marking{0, 1, 0, 0}

	var first string
	for _, workers := range []int{1, 4} {
		f, err := NewGenerator(net, lp.NewSimplex(), Options{Workers: workers}).
			Generate(bctx.Background(), net.AllTransitions(), msrc, mtgt)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if first == "" {
			first = f.String()
		} else if f.String() != first {
			t.Errorf("workers=%d produced %s, want %s", workers, f, first)
		}
	}
}

func TestGenerate_Errors(t *testing.T) {
	line := makeLineNet(t)

	t.Run("equal markings", func(t *testing.T) {
		_, err := NewGenerator(line, lp.NewSimplex(), Options{}).
			Generate(bctx.Background(), line.AllTransitions(), petri.Marking{1, 0}, petri.Marking{1, 0})
		if !errors.Is(err, ErrMarkingsEqual) {
			t.Errorf("err = %v, want ErrMarkingsEqual", err)
		}
	})

	t.Run("reachable target", func(t *testing.T) {
		_, err := NewGenerator(line, lp.NewSimplex(), Options{}).
			Generate(bctx.Background(), line.AllTransitions(), petri.Marking{1, 0}, petri.Marking{0, 1})
		if !errors.Is(err, ErrNotSeparable) {
			t.Errorf("err = %v, want ErrNotSeparable", err)
		}
	})

	t.Run("reachable target with precondition check", func(t *testing.T) {
		budget := lp.WithBudget(lp.NewSimplex(), 0)
		_, err := NewGenerator(line, budget, Options{VerifyPrecondition: true}).
			Generate(bctx.Background(), line.AllTransitions(), petri.Marking{1, 0}, petri.Marking{0, 1})
		if !errors.Is(err, ErrNotSeparable) {
			t.Errorf("err = %v, want ErrNotSeparable", err)
		}
		if budget.Calls() == 0 {
			t.Error("expected the precondition check to consult the oracle")
		}
	})

	t.Run("wrong marking size", func(t *testing.T) {
		_, err := NewGenerator(line, lp.NewSimplex(), Options{}).
			Generate(bctx.Background(), line.AllTransitions(), petri.Marking{1}, petri.Marking{0, 1})
		if err == nil {
			t.Error("expected error, got nil")
		}
	})

	t.Run("wrong transition set size", func(t *testing.T) {
		_, err := NewGenerator(line, lp.NewSimplex(), Options{}).
			Generate(bctx.Background(), petri.NewSet(3), petri.Marking{1, 0}, petri.Marking{0, 2})
		if err == nil {
			t.Error("expected error, got nil")
		}
	})

	t.Run("oracle failure", func(t *testing.T) {
		_, err := NewGenerator(line, failingOracle{}, Options{}).
			Generate(bctx.Background(), line.AllTransitions(), petri.Marking{1, 0}, petri.Marking{0, 2})
		if !errors.Is(err, lp.ErrOracle) {
			t.Errorf("err = %v, want an oracle error", err)
		}
	})

	t.Run("budget exceeded", func(t *testing.T) {
		net := makeTwoComponentNet(t)
		_, err := NewGenerator(net, lp.WithBudget(lp.NewSimplex(), 1), Options{}).
			Generate(bctx.Background(), net.AllTransitions(), petri.Marking{0, 0, 0, 0}, petri.Marking{0, 1, 0, 0})
		if !errors.Is(err, lp.ErrBudgetExceeded) {
			t.Errorf("err = %v, want ErrBudgetExceeded", err)
		}
	})

	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := NewGenerator(line, lp.NewSimplex(), Options{}).
			Generate(bctx.Background().WithContext(ctx), line.AllTransitions(), petri.Marking{1, 0}, petri.Marking{0, 2})
		if !errors.Is(err, context.Canceled) {
			t.Errorf("err = %v, want context.Canceled", err)
		}
	})
}

func TestGenerate_RecordsMetrics(t *testing.T) {
	net := makeCatalystNet(t)
	metrics := bctx.NewCounterMetrics()
	ac := bctx.Background().WithMetrics(metrics)

	_, err := NewGenerator(net, lp.NewSimplex(), Options{}).
		Generate(ac, net.AllTransitions(), petri.Marking{0, 0}, petri.Marking{0, 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := metrics.Counter(MetricLevels); got != 2 {
		t.Errorf("%s = %v, want 2", MetricLevels, got)
	}
	if got := metrics.Counter(MetricClauses); got != 2 {
		t.Errorf("%s = %v, want 2", MetricClauses, got)
	}
}

func TestInvariantError(t *testing.T) {
	var err error = fmt.Errorf("level 2: %w", &InvariantError{Invariant: "Y must have a solution"})
	var ie *InvariantError
	if !errors.As(err, &ie) {
		t.Fatal("expected errors.As to find the invariant error")
	}
	if ie.Invariant != "Y must have a solution" {
		t.Errorf("Invariant = %q", ie.Invariant)
	}
}

type failingOracle struct{}

func (failingOracle) NewSolver(n int) lp.Solver {
	return &failingSolver{Solver: lp.NewSimplex().NewSolver(n)}
}

type failingSolver struct {
	lp.Solver
}

func (s *failingSolver) Check(ctx context.Context) (lp.Status, error) {
	return lp.Unsat, fmt.Errorf("%w: solver crashed", lp.ErrOracle)
}

func (s *failingSolver) Clone() lp.Solver {
	return &failingSolver{Solver: s.Solver.Clone()}
}

func TestPotentialAtom_RejectsInexactCoefficients(t *testing.T) {
	// 2^53+1 and 1 are coprime, so scaling keeps the odd entry.
	huge := new(big.Int).Add(new(big.Int).Lsh(big.NewInt(1), 53), big.NewInt(1))
	y := []*big.Rat{new(big.Rat).SetInt(huge), big.NewRat(1, 1)}
	if _, err := potentialAtom(y, false); !errors.Is(err, lp.ErrInexact) {
		t.Fatalf("error = %v, want lp.ErrInexact", err)
	}

	a, err := potentialAtom([]*big.Rat{big.NewRat(2, 3), big.NewRat(-4, 3)}, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.Left[0] != 1 || a.Left[1] != -2 || a.Right[1] != -2 || !a.Strict {
		t.Errorf("potentialAtom = %v, want 1*m0 - 2*m1 < 1*m'0 - 2*m'1", a)
	}
}
