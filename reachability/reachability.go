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

// Package reachability decides reachability and coverability of markings
// in continuous Petri nets.
//
// Both procedures refine a candidate transition set Tp. Each round asks the
// LP oracle, for every transition of Tp, for a nonnegative firing vector
// supported on Tp that realizes the displacement with that transition
// firing. The support of the average witness is then pruned to the
// transitions that can be fired forward from the source and backward from
// the target. The round stops with a positive answer once pruning removes
// nothing; Tp strictly shrinks otherwise, so the loop terminates.
//
// # Usage
//
//	a := reachability.NewAnalyzer(net, lp.NewSimplex())
//	ok, err := a.IsReachable(ac, target)
package reachability

import (
	"fmt"
	"math/big"

	bctx "github.com/jazzpetri/bisep/context"
	"github.com/jazzpetri/bisep/lp"
	"github.com/jazzpetri/bisep/petri"
)

// MetricRounds counts refinement rounds across all queries.
const MetricRounds = "reachability_rounds_total"

// Analyzer answers reachability and coverability queries on one net.
// It holds no mutable state and is safe for concurrent use.
type Analyzer struct {
	net     *petri.Net
	oracle  lp.Oracle
	initial petri.Marking
}

// NewAnalyzer creates an analyzer starting from the net's initial marking.
func NewAnalyzer(net *petri.Net, oracle lp.Oracle) *Analyzer {
	return &Analyzer{net: net, oracle: oracle, initial: net.InitialMarking()}
}

// WithInitial returns an analyzer starting from m instead.
func (a *Analyzer) WithInitial(m petri.Marking) *Analyzer {
	return &Analyzer{net: a.net, oracle: a.oracle, initial: m.Clone()}
}

// IsReachable reports whether target is reachable from the initial marking.
// Equal markings are reachable without consulting the oracle.
func (a *Analyzer) IsReachable(ctx *bctx.AnalysisContext, target petri.Marking) (bool, error) {
	return a.ReachableWithin(ctx, a.initial, target, a.net.AllTransitions())
}

// ReachableWithin reports whether tgt is reachable from src using only
// transitions of u.
func (a *Analyzer) ReachableWithin(ctx *bctx.AnalysisContext, src, tgt petri.Marking, u petri.Set) (bool, error) {
	if err := a.validate(src, tgt); err != nil {
		return false, err
	}
	if src.Equal(tgt) {
		return true, nil
	}
	return a.refine(ctx, src, tgt, u, false)
}

// IsCoverable reports whether some marking ≥ target is reachable from the
// initial marking. Targets already below the initial marking are coverable
// without consulting the oracle.
func (a *Analyzer) IsCoverable(ctx *bctx.AnalysisContext, target petri.Marking) (bool, error) {
	if err := a.validate(a.initial, target); err != nil {
		return false, err
	}
	if target.LessEq(a.initial) {
		return true, nil
	}
	return a.refine(ctx, a.initial, target, a.net.AllTransitions(), true)
}

func (a *Analyzer) validate(src, tgt petri.Marking) error {
	if err := a.net.ValidateMarking(src); err != nil {
		return fmt.Errorf("source: %w", err)
	}
	if err := a.net.ValidateMarking(tgt); err != nil {
		return fmt.Errorf("target: %w", err)
	}
	return nil
}

func (a *Analyzer) refine(ctx *bctx.AnalysisContext, src, tgt petri.Marking, tp petri.Set, cover bool) (bool, error) {
	span := ctx.Tracer.StartSpan("reachability.refine")
	defer span.End()
	span.SetAttribute("net", a.net.Name)
	span.SetAttribute("coverability", cover)

	delta := lp.Sub(tgt.Rats(), src.Rats())
	tp = tp.Clone()

	for round := 1; !tp.IsEmpty(); round++ {
		ctx.Metrics.Inc(MetricRounds)
		ctx.Logger.Debug("refinement round", map[string]interface{}{
			"net":         a.net.Name,
			"round":       round,
			"transitions": tp.Len(),
		})

		witnesses, err := a.collect(ctx, tp, delta, cover)
		if err != nil {
			span.RecordError(err)
			return false, err
		}
		if len(witnesses) == 0 {
			span.SetAttribute("rounds", round)
			return false, nil
		}

		firings := make([][]*big.Rat, len(witnesses))
		for i, w := range witnesses {
			firings[i] = w.Firing
		}
		support := a.net.SupportTransitions(lp.Average(firings))
		touched := a.net.Touched(support)

		backwardFrom := tgt
		if cover {
			slacks := make([][]*big.Rat, len(witnesses))
			for i, w := range witnesses {
				slacks[i] = w.Slack
			}
			backwardFrom = addFloats(tgt, lp.Floats(lp.Average(slacks)))
		}

		_, forward := a.net.FiringSetClosure(support, a.net.Restrict(src, touched), false)
		pruned := support.Intersect(forward)
		_, backward := a.net.FiringSetClosure(pruned, a.net.Restrict(backwardFrom, touched), true)
		pruned = pruned.Intersect(backward)

		if pruned.Equal(support) {
			span.SetAttribute("rounds", round)
			return true, nil
		}
		tp = pruned
	}
	return false, nil
}

// collect gathers one witness per transition of tp (and, for coverability,
// per place) whose variable can be made positive. Transitions and places
// already positive in an earlier witness of the round are skipped: the
// average's support is the union of the witnesses' supports either way.
func (a *Analyzer) collect(ctx *bctx.AnalysisContext, tp petri.Set, delta []*big.Rat, cover bool) ([]*lp.Witness, error) {
	x, err := lp.NewDisplacement(a.oracle, a.net, tp, delta, cover)
	if err != nil {
		return nil, err
	}
	var witnesses []*lp.Witness
	seenT := petri.NewSet(a.net.NumTransitions())
	seenP := petri.NewSet(a.net.NumPlaces())
	record := func(w *lp.Witness) {
		witnesses = append(witnesses, w)
		seenT = seenT.Union(a.net.SupportTransitions(w.Firing))
		for p, v := range w.Slack {
			if v.Sign() > 0 {
				seenP.Add(p)
			}
		}
	}

	for _, t := range tp.IDs() {
		if seenT.Has(t) {
			continue
		}
		w, err := x.SolvePositive(ctx.Context, t)
		if err != nil {
			return nil, fmt.Errorf("transition %s: %w", a.net.TransitionName(t), err)
		}
		if w != nil {
			record(w)
		}
	}
	if cover {
		for p := 0; p < a.net.NumPlaces(); p++ {
			if seenP.Has(p) {
				continue
			}
			w, err := x.SolvePositiveSlack(ctx.Context, p)
			if err != nil {
				return nil, fmt.Errorf("place %s: %w", a.net.PlaceName(p), err)
			}
			if w != nil {
				record(w)
			}
		}
	}
	return witnesses, nil
}

func addFloats(m petri.Marking, v []float64) petri.Marking {
	out := m.Clone()
	for i := range out {
		if i < len(v) {
			out[i] += v[i]
		}
	}
	return out
}
