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

// Package lp is the linear-programming oracle used by the reachability
// procedures and the separator generator.
//
// Problems are stated over rational variables with linear constraints whose
// relation may be strict. A Solver accumulates constraints in nested scopes
// (Push/Pop), decides feasibility with Check and exposes a witness through
// Model. The Simplex oracle decides problems exactly over math/big
// rationals. Built with cgo and the z3 tag, the Z3 oracle hands them to
// the Z3 SMT solver instead; NewOracle picks a backend by name. WithRetry
// and WithBudget wrap any oracle with backoff on transient failures and a
// global call budget.
//
// # Usage
//
//	s := lp.NewSimplex().NewSolver(2)
//	_ = s.Add(lp.NonNegative(0))
//	_ = s.Add(lp.Constraint{
//	    Terms: []lp.Term{lp.T(0, 1), lp.T(1, -1)},
//	    Rel:   lp.GT,
//	    RHS:   new(big.Rat),
//	})
//	status, err := s.Check(ctx)
//	if status == lp.Sat {
//	    x := s.Model()
//	}
package lp

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
)

var (
	// ErrOracle marks failures of the oracle itself, as opposed to
	// infeasibility. Errors wrapping it may be retried.
	ErrOracle = errors.New("lp oracle failure")

	// ErrBudgetExceeded is returned when a WithBudget oracle has used up its
	// calls. It wraps ErrOracle but is never retried.
	ErrBudgetExceeded = fmt.Errorf("%w: call budget exceeded", ErrOracle)
)

// Relation is the comparison of a constraint's left-hand side with its
// right-hand side.
type Relation int

const (
	GE Relation = iota // ≥
	GT                 // >
	EQ                 // =
	LE                 // ≤
	LT                 // <
)

// String returns the mathematical symbol of the relation.
func (r Relation) String() string {
	switch r {
	case GE:
		return ">="
	case GT:
		return ">"
	case EQ:
		return "="
	case LE:
		return "<="
	case LT:
		return "<"
	default:
		return fmt.Sprintf("Relation(%d)", int(r))
	}
}

// Strict reports whether the relation excludes equality.
func (r Relation) Strict() bool { return r == GT || r == LT }

// Term is a coefficient applied to a variable.
type Term struct {
	Var  int
	Coef *big.Rat
}

// T builds a term with an integer coefficient.
func T(v int, coef int64) Term {
	return Term{Var: v, Coef: big.NewRat(coef, 1)}
}

// Constraint is Σ Terms  Rel  RHS. A nil RHS means zero.
type Constraint struct {
	Terms []Term
	Rel   Relation
	RHS   *big.Rat
}

// String renders the constraint as "1*x0 + -1*x1 > 0".
func (c Constraint) String() string {
	var sb strings.Builder
	for i, t := range c.Terms {
		if i > 0 {
			sb.WriteString(" + ")
		}
		sb.WriteString(fmt.Sprintf("%s*x%d", t.Coef.RatString(), t.Var))
	}
	if len(c.Terms) == 0 {
		sb.WriteString("0")
	}
	rhs := "0"
	if c.RHS != nil {
		rhs = c.RHS.RatString()
	}
	sb.WriteString(fmt.Sprintf(" %s %s", c.Rel, rhs))
	return sb.String()
}

// NonNegative returns the constraint x_v ≥ 0.
func NonNegative(v int) Constraint {
	return Constraint{Terms: []Term{T(v, 1)}, Rel: GE, RHS: new(big.Rat)}
}

// Positive returns the constraint x_v > 0.
func Positive(v int) Constraint {
	return Constraint{Terms: []Term{T(v, 1)}, Rel: GT, RHS: new(big.Rat)}
}

// Status is the outcome of a feasibility check.
type Status int

const (
	Unsat Status = iota
	Sat
)

// String returns "sat" or "unsat".
func (s Status) String() string {
	if s == Sat {
		return "sat"
	}
	return "unsat"
}

// Solver is an incremental feasibility checker over NumVars rational
// variables. Variables are unbounded unless constrained. A Solver is not
// safe for concurrent use; Clone it to hand work to another goroutine.
type Solver interface {
	// NumVars returns the number of variables.
	NumVars() int

	// Add appends a constraint to the current scope.
	Add(c Constraint) error

	// Push opens a scope.
	Push()

	// Pop discards every constraint added since the matching Push.
	Pop() error

	// Check decides whether the constraints are jointly satisfiable.
	Check(ctx context.Context) (Status, error)

	// Model returns a satisfying assignment after a Sat check, nil
	// otherwise. The returned slice belongs to the caller.
	Model() []*big.Rat

	// Clone returns an independent copy with the same constraints and
	// scopes.
	Clone() Solver
}

// Oracle creates solvers.
type Oracle interface {
	NewSolver(numVars int) Solver
}
