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

//go:build cgo && z3

package lp

import (
	"context"
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
	"time"

	z3 "github.com/mitchellh/go-z3"
)

// limbBits splits numerals wider than a C int into base-2^30 limbs.
const limbBits = 30

// Z3 decides problems with the Z3 SMT solver.
//
// The binding only exposes integer arithmetic, so every constraint
// Σ a·x ⋈ b is cleared of denominators and homogenized to Σ A·x ⋈ B·s
// with a fresh s > 0. The rational system is satisfiable iff that cone
// has an integer point, and x/s is then a rational model. Scopes are kept
// on the Go side; each Check asserts the live constraints into a fresh
// Z3 context, so solvers can be cloned across goroutines.
type Z3 struct{}

// NewZ3 returns the Z3 oracle.
func NewZ3() *Z3 { return &Z3{} }

func newZ3() (Oracle, error) { return NewZ3(), nil }

// NewSolver creates an empty solver over numVars variables.
func (z *Z3) NewSolver(numVars int) Solver {
	return &z3Solver{scopes: scopes{numVars: numVars}}
}

type z3Solver struct {
	scopes
	model []*big.Rat
}

func (s *z3Solver) Add(c Constraint) error {
	s.model = nil
	return s.add(c)
}

func (s *z3Solver) Pop() error {
	s.model = nil
	return s.pop()
}

func (s *z3Solver) Check(ctx context.Context) (Status, error) {
	s.model = nil
	if err := ctx.Err(); err != nil {
		return Unsat, err
	}
	status, model, err := solveZ3(ctx, s.numVars, s.constraints)
	if err != nil {
		return Unsat, err
	}
	if status == Sat {
		s.model = model
	}
	return status, nil
}

func (s *z3Solver) Model() []*big.Rat { return copyRats(s.model) }

func (s *z3Solver) Clone() Solver {
	return &z3Solver{scopes: s.clone()}
}

func solveZ3(ctx context.Context, numVars int, constraints []Constraint) (Status, []*big.Rat, error) {
	cfg := z3.NewConfig()
	if deadline, ok := ctx.Deadline(); ok {
		ms := time.Until(deadline).Milliseconds()
		if ms <= 0 {
			cfg.Close()
			return Unsat, nil, context.DeadlineExceeded
		}
		cfg.SetParamValue("timeout", strconv.FormatInt(ms, 10))
	}
	zc := z3.NewContext(cfg)
	cfg.Close()
	defer zc.Close()

	var zerr error
	zc.SetErrorHandler(func(c *z3.Context, code z3.ErrorCode) {
		if zerr == nil {
			zerr = fmt.Errorf("%w: z3 error %d: %s", ErrOracle, code, c.Error(code))
		}
	})

	intSort := zc.IntSort()
	xs := make([]*z3.AST, numVars)
	for v := range xs {
		xs[v] = zc.Const(zc.Symbol("x"+strconv.Itoa(v)), intSort)
	}
	scale := zc.Const(zc.Symbol("s"), intSort)
	zero := zc.Int(0, intSort)

	solver := zc.NewSolver()
	defer solver.Close()
	solver.Assert(scale.Gt(zero))
	for _, c := range constraints {
		solver.Assert(homogenize(zc, intSort, c, xs, scale, zero))
	}
	if zerr != nil {
		return Unsat, nil, zerr
	}

	res := solver.Check()
	if zerr != nil {
		return Unsat, nil, zerr
	}
	switch res {
	case z3.True:
	case z3.False:
		return Unsat, nil, nil
	default:
		if err := ctx.Err(); err != nil {
			return Unsat, nil, err
		}
		return Unsat, nil, fmt.Errorf("%w: z3 returned unknown", ErrOracle)
	}

	m := solver.Model()
	defer m.Close()
	den, err := numeral(m.Eval(scale))
	if err != nil {
		return Unsat, nil, err
	}
	if den.Sign() <= 0 {
		return Unsat, nil, fmt.Errorf("%w: z3 model has scale %s", ErrOracle, den)
	}
	model := make([]*big.Rat, numVars)
	for v, x := range xs {
		num, err := numeral(m.Eval(x))
		if err != nil {
			return Unsat, nil, err
		}
		model[v] = new(big.Rat).SetFrac(num, den)
	}
	for _, c := range constraints {
		if !Satisfies(c, model) {
			return Unsat, nil, fmt.Errorf("%w: model violates %s", ErrOracle, c)
		}
	}
	return Sat, model, nil
}

// homogenize returns Σ A·x - B·s ⋈ 0 for c, where A and B are the
// coefficients of c multiplied by the lcm of their denominators.
func homogenize(zc *z3.Context, intSort *z3.Sort, c Constraint, xs []*z3.AST, scale, zero *z3.AST) *z3.AST {
	den := new(big.Int).Set(c.RHS.Denom())
	for _, t := range c.Terms {
		den = lcm(den, t.Coef.Denom())
	}
	var parts []*z3.AST
	for _, t := range c.Terms {
		if t.Coef.Sign() != 0 {
			parts = append(parts, integer(zc, intSort, scaled(t.Coef, den)).Mul(xs[t.Var]))
		}
	}
	if c.RHS.Sign() != 0 {
		parts = append(parts, integer(zc, intSort, scaled(new(big.Rat).Neg(c.RHS), den)).Mul(scale))
	}
	lhs := zero
	if len(parts) > 0 {
		lhs = parts[0].Add(parts[1:]...)
	}
	switch c.Rel {
	case GT:
		return lhs.Gt(zero)
	case EQ:
		return lhs.Eq(zero)
	case LE:
		return lhs.Le(zero)
	case LT:
		return lhs.Lt(zero)
	default:
		return lhs.Ge(zero)
	}
}

// integer builds the numeral n, composing limbs when n does not fit a C
// int.
func integer(zc *z3.Context, intSort *z3.Sort, n *big.Int) *z3.AST {
	if n.IsInt64() && n.Int64() >= math.MinInt32 && n.Int64() <= math.MaxInt32 {
		return zc.Int(int(n.Int64()), intSort)
	}
	// Rsh floors, so lo lands in [0, 2^limbBits).
	hi := new(big.Int).Rsh(n, limbBits)
	lo := new(big.Int).Sub(n, new(big.Int).Lsh(hi, limbBits))
	return integer(zc, intSort, hi).Mul(zc.Int(1<<limbBits, intSort)).Add(zc.Int(int(lo.Int64()), intSort))
}

// numeral parses an integer value printed by Z3, such as "7" or "(- 7)".
func numeral(a *z3.AST) (*big.Int, error) {
	if a == nil {
		return nil, fmt.Errorf("%w: z3 model has no value", ErrOracle)
	}
	s := strings.TrimSpace(a.String())
	neg := strings.HasPrefix(s, "(-") && strings.HasSuffix(s, ")")
	if neg {
		s = strings.TrimSpace(s[2 : len(s)-1])
	}
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("%w: z3 value %q is not an integer", ErrOracle, a.String())
	}
	if neg {
		n.Neg(n)
	}
	return n, nil
}

func lcm(a, b *big.Int) *big.Int {
	var g big.Int
	g.GCD(nil, nil, a, b)
	out := new(big.Int).Mul(a, b)
	return out.Quo(out, &g)
}

// scaled returns r·den, which is an integer when den is a multiple of
// r's denominator.
func scaled(r *big.Rat, den *big.Int) *big.Int {
	out := new(big.Int).Quo(den, r.Denom())
	return out.Mul(out, r.Num())
}
