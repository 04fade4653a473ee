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
	"errors"
	"fmt"
	"math/big"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/jazzpetri/bisep/clock"
	bctx "github.com/jazzpetri/bisep/context"
	"github.com/jazzpetri/bisep/lp"
	"github.com/jazzpetri/bisep/petri"
	"github.com/jazzpetri/bisep/reachability"
)

var (
	// ErrMarkingsEqual is returned when source and target coincide, so no
	// separator can exist.
	ErrMarkingsEqual = errors.New("source and target markings are equal")

	// ErrNotSeparable is returned when the target turns out to be reachable
	// from the source using the given transitions.
	ErrNotSeparable = errors.New("target is reachable from source")
)

// InvariantError reports an internal property that failed to hold during
// generation. It indicates an oracle answer inconsistent with LP duality.
type InvariantError struct {
	Invariant string
}

func (e *InvariantError) Error() string {
	return "separator invariant violated: " + e.Invariant
}

// Metric names recorded during generation.
const (
	MetricLevels   = "separator_levels_total"
	MetricClauses  = "separator_clauses_total"
	MetricDuration = "separator_generate_seconds"
)

// Options configures a Generator.
type Options struct {
	// Workers bounds the number of concurrent oracle queries per level.
	// Zero or less means GOMAXPROCS.
	Workers int

	// VerifyPrecondition runs a reachability check before generating and
	// fails with ErrNotSeparable when the target is reachable.
	VerifyPrecondition bool
}

// Generator builds bi-separators for one net.
type Generator struct {
	net    *petri.Net
	oracle lp.Oracle
	opts   Options
}

// NewGenerator returns a generator for net using oracle.
func NewGenerator(net *petri.Net, oracle lp.Oracle, opts Options) *Generator {
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}
	return &Generator{net: net, oracle: oracle, opts: opts}
}

// Generate returns a bi-separator for u, msrc and mtgt, with its syndrome.
// The target must be unreachable from the source using u; ErrMarkingsEqual
// or ErrNotSeparable is returned when that is detected.
func (g *Generator) Generate(ctx *bctx.AnalysisContext, u petri.Set, msrc, mtgt petri.Marking) (*Formula, error) {
	if err := g.net.ValidateMarking(msrc); err != nil {
		return nil, fmt.Errorf("source: %w", err)
	}
	if err := g.net.ValidateMarking(mtgt); err != nil {
		return nil, fmt.Errorf("target: %w", err)
	}
	if len(u) != g.net.NumTransitions() {
		return nil, fmt.Errorf("transition set has %d entries, net has %d transitions", len(u), g.net.NumTransitions())
	}
	if msrc.Equal(mtgt) {
		return nil, ErrMarkingsEqual
	}

	span := ctx.Tracer.StartSpan("separator.generate")
	defer span.End()
	span.SetAttribute("net", g.net.Name)
	span.SetAttribute("transitions", u.Len())
	start := ctx.Clock.Now()

	if g.opts.VerifyPrecondition {
		reachable, err := reachability.NewAnalyzer(g.net, g.oracle).ReachableWithin(ctx, msrc, mtgt, u)
		if err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("precondition check: %w", err)
		}
		if reachable {
			return nil, ErrNotSeparable
		}
	}

	delta := lp.Sub(mtgt.Rats(), msrc.Rats())
	root, err := g.build(ctx, u.Clone(), msrc, mtgt, delta, 0)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	bodies, syn, err := g.assemble(root)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	f := NewFormula(g.net.Name, g.net.NumPlaces(), u, bodies)
	f.Syndrome = syn

	ctx.Metrics.Add(MetricClauses, float64(len(f.Clauses)))
	ctx.Metrics.Observe(MetricDuration, clock.Since(ctx.Clock, start).Seconds())
	span.SetAttribute("size", f.Size())
	ctx.Logger.Info("separator generated", map[string]interface{}{
		"net":     g.net.Name,
		"size":    f.Size(),
		"atoms":   f.NumAtoms(),
		"elapsed": clock.Since(ctx.Clock, start).String(),
	})
	return f, nil
}

// level is one node of the generation tree. A leaf carries a single atom
// forming a one-clause separator. An inner level carries the case-1
// witnesses for the excluded transitions, the siphon and trap, and the
// separator of its reduced transition set.
type level struct {
	u    petri.Set
	leaf *Atom

	excluded []int
	ys       [][]float64
	q, r     petri.Set
	emptied  petri.Set
	child    *level
}

func (g *Generator) build(ctx *bctx.AnalysisContext, u petri.Set, msrc, mtgt petri.Marking, delta []*big.Rat, depth int) (*level, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ctx.Metrics.Inc(MetricLevels)

	if u.IsEmpty() {
		return g.distinguishingPlace(u, msrc, mtgt)
	}

	x, err := lp.NewDisplacement(g.oracle, g.net, u, delta, false)
	if err != nil {
		return nil, err
	}
	w, err := x.Solve(ctx.Context)
	if err != nil {
		return nil, fmt.Errorf("displacement: %w", err)
	}
	pot, err := lp.NewPotential(g.oracle, g.net, u, delta)
	if err != nil {
		return nil, err
	}

	if w == nil {
		y, err := pot.StrictDecrease(ctx.Context)
		if err != nil {
			return nil, fmt.Errorf("potential: %w", err)
		}
		if y == nil {
			return nil, &InvariantError{Invariant: "Y must have a solution when X has none"}
		}
		ctx.Logger.Debug("displacement infeasible", map[string]interface{}{
			"depth":       depth,
			"transitions": u.Len(),
		})
		a, err := potentialAtom(y, false)
		if err != nil {
			return nil, fmt.Errorf("potential: %w", err)
		}
		return &level{u: u, leaf: &a}, nil
	}

	up, err := g.upSet(ctx, x, w, u)
	if err != nil {
		return nil, err
	}
	excluded := u.Minus(up).IDs()
	ys, err := g.exceeding(ctx, pot, excluded)
	if err != nil {
		return nil, err
	}
	for _, y := range ys {
		if petri.Dot(y, msrc).Cmp(petri.Dot(y, mtgt)) > 0 {
			ctx.Logger.Debug("potential separates markings", map[string]interface{}{
				"depth": depth,
			})
			a := NewAtom(y, y, false)
			return &level{u: u, leaf: &a}, nil
		}
	}

	q := g.net.LargestSiphon(up, msrc)
	r := g.net.LargestTrap(up, mtgt)
	emptied := g.net.Postset(q, up).Union(g.net.Preset(r, up))
	reduced := up.Minus(emptied)
	ctx.Logger.Debug("level split", map[string]interface{}{
		"depth":    depth,
		"up":       up.Len(),
		"excluded": len(excluded),
		"siphon":   q.Len(),
		"trap":     r.Len(),
		"reduced":  reduced.Len(),
	})
	if reduced.Len() >= u.Len() {
		return nil, fmt.Errorf("%w: no progress on %d transitions", ErrNotSeparable, u.Len())
	}

	child, err := g.build(ctx, reduced, msrc, mtgt, delta, depth+1)
	if err != nil {
		return nil, err
	}
	return &level{
		u:        u,
		excluded: excluded,
		ys:       ys,
		q:        q,
		r:        r,
		emptied:  emptied,
		child:    child,
	}, nil
}

// distinguishingPlace separates two markings without any transition using
// the first place on which they differ.
func (g *Generator) distinguishingPlace(u petri.Set, msrc, mtgt petri.Marking) (*level, error) {
	for p := range msrc {
		if msrc[p] == mtgt[p] {
			continue
		}
		a := make([]float64, len(msrc))
		a[p] = 1
		if msrc[p] < mtgt[p] {
			a[p] = -1
		}
		atom := NewAtom(a, a, false)
		return &level{u: u, leaf: &atom}, nil
	}
	return nil, ErrMarkingsEqual
}

// upSet returns the transitions of u that some solution of x fires. The
// support of the first witness is admitted directly; every other
// transition costs one oracle call.
func (g *Generator) upSet(ctx *bctx.AnalysisContext, x *lp.Displacement, first *lp.Witness, u petri.Set) (petri.Set, error) {
	up := g.net.SupportTransitions(first.Firing).Intersect(u)
	candidates := u.Minus(up).IDs()
	admitted := make([]bool, len(candidates))

	eg, egctx := errgroup.WithContext(ctx.Context)
	eg.SetLimit(g.opts.Workers)
	for i, t := range candidates {
		eg.Go(func() error {
			w, err := x.Clone().SolvePositive(egctx, t)
			if err != nil {
				return fmt.Errorf("transition %s: %w", g.net.TransitionName(t), err)
			}
			admitted[i] = w != nil
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	for i, t := range candidates {
		if admitted[i] {
			up.Add(t)
		}
	}
	return up, nil
}

// exceeding solves Y ∧ Δ·y < C_t·y for every excluded transition t and
// returns the witnesses scaled to integers, in the order of excluded.
func (g *Generator) exceeding(ctx *bctx.AnalysisContext, pot *lp.Potential, excluded []int) ([][]float64, error) {
	ys := make([][]float64, len(excluded))
	eg, egctx := errgroup.WithContext(ctx.Context)
	eg.SetLimit(g.opts.Workers)
	for i, t := range excluded {
		eg.Go(func() error {
			y, err := pot.Clone().Exceeds(egctx, t)
			if err != nil {
				return fmt.Errorf("transition %s: %w", g.net.TransitionName(t), err)
			}
			if y == nil {
				return &InvariantError{Invariant: fmt.Sprintf(
					"Y must admit a potential raised by transition %s", g.net.TransitionName(t))}
			}
			v, err := lp.ExactFloats(lp.ScaleToIntegers(y))
			if err != nil {
				return fmt.Errorf("transition %s: %w", g.net.TransitionName(t), err)
			}
			ys[i] = v
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return ys, nil
}

func potentialAtom(y []*big.Rat, strict bool) (Atom, error) {
	v, err := lp.ExactFloats(lp.ScaleToIntegers(y))
	if err != nil {
		return Atom{}, err
	}
	return Atom{Left: v, Right: append([]float64(nil), v...), Strict: strict}, nil
}

// assemble numbers the clauses of the tree rooted at l and fills the
// syndrome. Clause order is case-1 clauses, the case-2 clause, then one
// case-3 clause per clause of the child.
func (g *Generator) assemble(l *level) ([][]Atom, *Syndrome, error) {
	nt := g.net.NumTransitions()
	if l.leaf != nil {
		syn := NewSyndrome(1, nt)
		for _, t := range l.u.IDs() {
			for _, d := range Directions {
				syn.Set(0, t, d, Pointer{Clause: 0, Atoms: []int{0}})
			}
		}
		return [][]Atom{{*l.leaf}}, syn, nil
	}

	childBodies, childSyn, err := g.assemble(l.child)
	if err != nil {
		return nil, nil, err
	}

	n1 := len(l.excluded)
	phiInv := make([]Atom, n1)
	bodies := make([][]Atom, 0, n1+1+len(childBodies))
	for i, y := range l.ys {
		phiInv[i] = NewAtom(y, y, false)
		bodies = append(bodies, []Atom{NewAtom(y, y, true)})
	}
	negQ := indicator(l.q, -1)
	r := indicator(l.r, 1)

	case2 := append(append([]Atom(nil), phiInv...), NewAtom(negQ, r, true))
	bodies = append(bodies, case2)
	for _, c := range childBodies {
		body := append(append([]Atom(nil), phiInv...), NewAtom(r, negQ, false))
		bodies = append(bodies, append(body, c...))
	}

	excludedAt := make(map[int]int, n1)
	for i, t := range l.excluded {
		excludedAt[t] = i
	}
	head := identity(n1 + 1)
	syn := NewSyndrome(len(bodies), nt)
	for _, t := range l.u.IDs() {
		for _, d := range Directions {
			for i := 0; i < n1; i++ {
				syn.Set(i, t, d, Pointer{Clause: i, Atoms: []int{0}})
			}
			if i, ok := excludedAt[t]; ok {
				for c := n1; c < len(bodies); c++ {
					syn.Set(c, t, d, Pointer{Clause: i, Atoms: []int{i}})
				}
				continue
			}
			syn.Set(n1, t, d, Pointer{Clause: n1, Atoms: head})
			for j := range childBodies {
				c := n1 + 1 + j
				if l.emptied.Has(t) {
					syn.Set(c, t, d, Pointer{Clause: n1, Atoms: head})
					continue
				}
				p, ok := childSyn.Get(j, t, d)
				if !ok {
					return nil, nil, &InvariantError{Invariant: fmt.Sprintf(
						"reduced separator has no syndrome for clause %d, transition %s, %v",
						j, g.net.TransitionName(t), d)}
				}
				atoms := append([]int(nil), head...)
				for _, k := range p.Atoms {
					atoms = append(atoms, k+n1+1)
				}
				syn.Set(c, t, d, Pointer{Clause: n1 + 1 + p.Clause, Atoms: atoms})
			}
		}
	}
	return bodies, syn, nil
}

func indicator(s petri.Set, v float64) []float64 {
	out := make([]float64, len(s))
	for _, p := range s.IDs() {
		out[p] = v
	}
	return out
}

func identity(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}
