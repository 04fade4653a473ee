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

// Package verification checks bi-separators.
//
// A formula φ is a bi-separator for a transition set U and markings msrc,
// mtgt when it satisfies the boundary law (φ(msrc, msrc), φ(mtgt, mtgt),
// ¬φ(msrc, mtgt)) and every clause, fired by any transition of U in either
// direction, implies some clause of φ. Clause implication reduces to
// implications between single atoms, which are decided exactly in closed
// form; no LP oracle is involved.
//
// Two checkers are provided. CheckDirect searches, for each clause, a
// clause it implies. CheckSyndrome only verifies the atom pairs recorded in
// the formula's syndrome and is much cheaper on large separators.
//
// # Usage
//
//	c := verification.NewChecker(net, verification.Options{})
//	report, err := c.CheckSyndrome(ac, f, msrc, mtgt)
//	if err == nil && !report.Valid {
//	    fmt.Println(report.Reason)
//	}
package verification

import (
	"errors"
	"fmt"
	"runtime"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jazzpetri/bisep/clock"
	bctx "github.com/jazzpetri/bisep/context"
	"github.com/jazzpetri/bisep/petri"
	"github.com/jazzpetri/bisep/separator"
)

// Method names a checking procedure.
type Method string

const (
	Direct   Method = "direct"
	Syndrome Method = "syndrome"
)

// Metric names recorded by the checkers.
const (
	MetricAtomicChecks = "verification_atomic_checks_total"
	MetricInvalid      = "verification_invalid_total"
	MetricDuration     = "verification_check_seconds"
)

// Report is the outcome of checking one formula.
type Report struct {
	// Method is the procedure that produced the report.
	Method Method

	// Valid is true if the formula is a bi-separator.
	Valid bool

	// Reason explains an invalid result.
	Reason string

	// Clause, Transition and Direction locate the failing implication;
	// Clause and Transition are -1 for boundary and shape failures.
	Clause     int
	Transition int
	Direction  separator.Direction

	// AtomicChecks is the number of atomic implications decided.
	AtomicChecks int64

	// Elapsed is the time spent checking, as measured by the context clock.
	Elapsed time.Duration
}

func (r Report) String() string {
	if r.Valid {
		return fmt.Sprintf("%s: valid (%d atomic checks)", r.Method, r.AtomicChecks)
	}
	return fmt.Sprintf("%s: invalid: %s", r.Method, r.Reason)
}

// Options configures a Checker.
type Options struct {
	// Workers bounds the number of transitions checked concurrently. Zero
	// or less means GOMAXPROCS.
	Workers int
}

// Checker verifies separators for one net. It is safe for concurrent use.
type Checker struct {
	net     *petri.Net
	workers int
}

// NewChecker returns a checker for net.
func NewChecker(net *petri.Net, opts Options) *Checker {
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}
	return &Checker{net: net, workers: opts.Workers}
}

// invalid carries a failing report through the worker group.
type invalid struct {
	report Report
}

func (e *invalid) Error() string { return e.report.Reason }

func fail(clause, t int, dir separator.Direction, format string, args ...interface{}) error {
	return &invalid{report: Report{
		Reason:     fmt.Sprintf(format, args...),
		Clause:     clause,
		Transition: t,
		Direction:  dir,
	}}
}

// CheckDirect verifies f by searching, for every transition of f's set,
// clause and direction, a clause implied by the fired clause.
func (c *Checker) CheckDirect(ctx *bctx.AnalysisContext, f *separator.Formula, msrc, mtgt petri.Marking) (Report, error) {
	return c.run(ctx, Direct, f, msrc, mtgt, func(t int, count *int64) error {
		for i, ci := range f.Clauses {
			for _, d := range separator.Directions {
				found := false
				for _, cj := range f.Clauses {
					if clauseImplication(c.net, ci, cj, t, d, count) {
						found = true
						break
					}
				}
				if !found {
					return fail(i, t, d, "clause %d fired %v by %s implies no clause", i, d, c.net.TransitionName(t))
				}
			}
		}
		return nil
	})
}

// CheckSyndrome verifies f using only the atom pairs recorded in its
// syndrome. A missing or malformed syndrome makes the formula invalid.
func (c *Checker) CheckSyndrome(ctx *bctx.AnalysisContext, f *separator.Formula, msrc, mtgt petri.Marking) (Report, error) {
	if f != nil && f.Syndrome == nil {
		return Report{Method: Syndrome, Reason: "formula has no syndrome", Clause: -1, Transition: -1}, nil
	}
	return c.run(ctx, Syndrome, f, msrc, mtgt, func(t int, count *int64) error {
		for i, ci := range f.Clauses {
			for _, d := range separator.Directions {
				p, ok := f.Syndrome.Get(i, t, d)
				if !ok {
					return fail(i, t, d, "no syndrome entry for clause %d, %s %v", i, c.net.TransitionName(t), d)
				}
				if p.Clause >= len(f.Clauses) {
					return fail(i, t, d, "syndrome points to clause %d of %d", p.Clause, len(f.Clauses))
				}
				target := f.Clauses[p.Clause]
				if len(p.Atoms) != len(target.Atoms) {
					return fail(i, t, d, "atom map has %d entries, clause %d has %d atoms",
						len(p.Atoms), p.Clause, len(target.Atoms))
				}
				for k, j := range p.Atoms {
					if j < 0 || j >= len(ci.Atoms) {
						return fail(i, t, d, "atom map entry %d is out of range for clause %d", j, i)
					}
					*count++
					if !AtomicImplication(c.net, ci.Atoms[j], target.Atoms[k], t, d) {
						return fail(i, t, d, "atom %d of clause %d fired %v by %s does not imply atom %d of clause %d",
							j, i, d, c.net.TransitionName(t), k, p.Clause)
					}
				}
			}
		}
		return nil
	})
}

// run validates shapes and the boundary law, then calls check for every
// transition of f's set on a worker pool. The first failure cancels the
// remaining transitions.
func (c *Checker) run(ctx *bctx.AnalysisContext, method Method, f *separator.Formula, msrc, mtgt petri.Marking,
	check func(t int, count *int64) error) (Report, error) {
	span := ctx.Tracer.StartSpan("verification.check")
	defer span.End()
	span.SetAttribute("method", string(method))
	start := ctx.Clock.Now()

	finish := func(r Report) Report {
		r.Method = method
		r.Elapsed = clock.Since(ctx.Clock, start)
		ctx.Metrics.Add(MetricAtomicChecks, float64(r.AtomicChecks))
		ctx.Metrics.Observe(MetricDuration, r.Elapsed.Seconds())
		span.SetAttribute("valid", r.Valid)
		if !r.Valid {
			ctx.Metrics.Inc(MetricInvalid)
			ctx.Logger.Info("separator rejected", map[string]interface{}{
				"method":     string(method),
				"reason":     r.Reason,
				"clause":     r.Clause,
				"transition": r.Transition,
			})
		} else {
			ctx.Logger.Debug("separator accepted", map[string]interface{}{
				"method": string(method),
				"checks": r.AtomicChecks,
			})
		}
		return r
	}

	if reason := c.precheck(f, msrc, mtgt); reason != "" {
		return finish(Report{Reason: reason, Clause: -1, Transition: -1}), nil
	}
	span.SetAttribute("size", f.Size())

	var total atomic.Int64
	eg, egctx := errgroup.WithContext(ctx.Context)
	eg.SetLimit(c.workers)
	for _, t := range f.Transitions.IDs() {
		eg.Go(func() error {
			if err := egctx.Err(); err != nil {
				return err
			}
			var n int64
			err := check(t, &n)
			total.Add(n)
			return err
		})
	}
	err := eg.Wait()

	var inv *invalid
	switch {
	case errors.As(err, &inv):
		r := inv.report
		r.AtomicChecks = total.Load()
		return finish(r), nil
	case err != nil:
		span.RecordError(err)
		return Report{Method: method, Reason: err.Error(), Clause: -1, Transition: -1}, err
	}
	if err := ctx.Err(); err != nil {
		return Report{Method: method, Reason: err.Error(), Clause: -1, Transition: -1}, err
	}
	return finish(Report{Valid: true, Clause: -1, Transition: -1, AtomicChecks: total.Load()}), nil
}

// precheck returns a non-empty reason when f cannot be a bi-separator for
// the checker's net: shape mismatches or a violated boundary law.
func (c *Checker) precheck(f *separator.Formula, msrc, mtgt petri.Marking) string {
	if f == nil {
		return "no formula"
	}
	if err := f.Validate(); err != nil {
		return err.Error()
	}
	if f.Places != c.net.NumPlaces() {
		return fmt.Sprintf("formula has %d places, net has %d", f.Places, c.net.NumPlaces())
	}
	if len(f.Transitions) != c.net.NumTransitions() {
		return fmt.Sprintf("formula has %d transitions, net has %d", len(f.Transitions), c.net.NumTransitions())
	}
	if err := c.net.ValidateMarking(msrc); err != nil {
		return "source: " + err.Error()
	}
	if err := c.net.ValidateMarking(mtgt); err != nil {
		return "target: " + err.Error()
	}
	switch {
	case !f.Holds(msrc, msrc):
		return "formula does not hold on (source, source)"
	case !f.Holds(mtgt, mtgt):
		return "formula does not hold on (target, target)"
	case f.Holds(msrc, mtgt):
		return "formula holds on (source, target)"
	}
	return ""
}
