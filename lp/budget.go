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
	"sync/atomic"

	bctx "github.com/jazzpetri/bisep/context"
)

// BudgetOracle caps the number of Check calls across every solver it
// created, clones included. A limit of zero means unlimited; the oracle
// then only counts.
type BudgetOracle struct {
	inner Oracle
	limit int64
	calls atomic.Int64
}

// WithBudget wraps o with a call budget of limit checks.
func WithBudget(o Oracle, limit int64) *BudgetOracle {
	return &BudgetOracle{inner: o, limit: limit}
}

// NewSolver creates a solver charged against the budget.
func (b *BudgetOracle) NewSolver(numVars int) Solver {
	return &budgetSolver{Solver: b.inner.NewSolver(numVars), budget: b}
}

// Calls returns the number of checks attempted so far.
func (b *BudgetOracle) Calls() int64 {
	return b.calls.Load()
}

type budgetSolver struct {
	Solver
	budget *BudgetOracle
}

func (s *budgetSolver) Check(ctx context.Context) (Status, error) {
	n := s.budget.calls.Add(1)
	if s.budget.limit > 0 && n > s.budget.limit {
		return Unsat, fmt.Errorf("%w after %d checks", ErrBudgetExceeded, s.budget.limit)
	}
	return s.Solver.Check(ctx)
}

func (s *budgetSolver) Clone() Solver {
	return &budgetSolver{Solver: s.Solver.Clone(), budget: s.budget}
}

// Metric names recorded by WithMetrics.
const (
	MetricChecks = "lp_checks_total"
	MetricSat    = "lp_sat_total"
	MetricErrors = "lp_errors_total"
)

// WithMetrics wraps o so that every check is counted in m.
func WithMetrics(o Oracle, m bctx.MetricsCollector) Oracle {
	return &metricsOracle{inner: o, metrics: m}
}

type metricsOracle struct {
	inner   Oracle
	metrics bctx.MetricsCollector
}

func (o *metricsOracle) NewSolver(numVars int) Solver {
	return &metricsSolver{Solver: o.inner.NewSolver(numVars), metrics: o.metrics}
}

type metricsSolver struct {
	Solver
	metrics bctx.MetricsCollector
}

func (s *metricsSolver) Check(ctx context.Context) (Status, error) {
	s.metrics.Inc(MetricChecks)
	status, err := s.Solver.Check(ctx)
	switch {
	case err != nil:
		s.metrics.Inc(MetricErrors)
	case status == Sat:
		s.metrics.Inc(MetricSat)
	}
	return status, err
}

func (s *metricsSolver) Clone() Solver {
	return &metricsSolver{Solver: s.Solver.Clone(), metrics: s.metrics}
}
