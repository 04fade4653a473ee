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

package verification

import (
	"math/big"

	"github.com/jazzpetri/bisep/petri"
	"github.com/jazzpetri/bisep/separator"
)

// AtomicImplication reports whether src(m, m') implies dst on the pair
// obtained by firing t, for all m, m' ≥ 0 and every amount α > 0 for which
// the firing is possible. Forward fires t on m' (m' ≥ α·pre); Backward
// fires it in reverse on m (m ≥ α·post).
//
// Writing m' = α·pre + u (forward) or m = α·post + u (backward) and
// dividing by α, both atoms become affine in a nonnegative vector z:
//
//	src:  g·z + c ⋈ 0        dst:  k·z + d ⋈' 0
//
// with g = (-src.Left, src.Right) and k = (-dst.Left, dst.Right). When the
// source region is empty the implication holds vacuously; otherwise, by
// Farkas' lemma, it holds iff a single multiplier λ ≥ 0 satisfies
// k - λg ≥ 0 and d - λc ≥ 0, with d - λc > 0 when only dst is strict and
// λ > 0 or d - λc > 0 when both are.
func AtomicImplication(net *petri.Net, src, dst separator.Atom, t int, dir separator.Direction) bool {
	var c, d *big.Rat
	if dir == separator.Forward {
		c = petri.DotArcs(net.Pre(t), src.Right)
		d = petri.DotArcs(net.Post(t), dst.Right)
	} else {
		c = new(big.Rat).Neg(petri.DotArcs(net.Post(t), src.Left))
		d = new(big.Rat).Neg(petri.DotArcs(net.Pre(t), dst.Left))
	}
	g := homogeneous(src)
	k := homogeneous(dst)
	if len(g) != len(k) {
		return false
	}

	if emptyRegion(g, c, src.Strict) {
		return true
	}

	base := newInterval()
	for i := range g {
		base.require(k[i], g[i], false)
	}
	switch {
	case !dst.Strict:
		base.require(d, c, false)
		return !base.empty()
	case !src.Strict:
		base.require(d, c, true)
		return !base.empty()
	}

	positive := base
	positive.require(d, c, false)
	positive.require(new(big.Rat), big.NewRat(-1, 1), true)
	if !positive.empty() {
		return true
	}
	slack := base
	slack.require(d, c, true)
	return !slack.empty()
}

// ClauseImplication reports whether every atom of dst is implied, in the
// sense of AtomicImplication, by some atom of src.
func ClauseImplication(net *petri.Net, src, dst separator.Clause, t int, dir separator.Direction) bool {
	var n int64
	return clauseImplication(net, src, dst, t, dir, &n)
}

// clauseImplication adds the number of atomic checks it performs to n.
func clauseImplication(net *petri.Net, src, dst separator.Clause, t int, dir separator.Direction, n *int64) bool {
	for _, b := range dst.Atoms {
		implied := false
		for _, a := range src.Atoms {
			*n++
			if AtomicImplication(net, a, b, t, dir) {
				implied = true
				break
			}
		}
		if !implied {
			return false
		}
	}
	return true
}

// homogeneous returns (-a.Left, a.Right) as exact rationals.
func homogeneous(a separator.Atom) []*big.Rat {
	out := make([]*big.Rat, 0, len(a.Left)+len(a.Right))
	for _, v := range a.Left {
		r := petri.ExactRat(v)
		out = append(out, r.Neg(r))
	}
	for _, v := range a.Right {
		out = append(out, petri.ExactRat(v))
	}
	return out
}

// emptyRegion reports whether no z ≥ 0 satisfies g·z + c ≥ 0 (> 0 if
// strict).
func emptyRegion(g []*big.Rat, c *big.Rat, strict bool) bool {
	for _, v := range g {
		if v.Sign() > 0 {
			return false
		}
	}
	if strict {
		return c.Sign() <= 0
	}
	return c.Sign() < 0
}

// interval is a set of multipliers λ between lo and hi; hi == nil means
// unbounded above. Bounds are replaced, never mutated, so copies are
// independent.
type interval struct {
	lo, hi         *big.Rat
	loOpen, hiOpen bool
	infeasible     bool
}

func newInterval() interval {
	return interval{lo: new(big.Rat)}
}

// require restricts the interval to k - λ·g ≥ 0, or > 0 if strict.
func (iv *interval) require(k, g *big.Rat, strict bool) {
	switch g.Sign() {
	case 0:
		if k.Sign() < 0 || (strict && k.Sign() == 0) {
			iv.infeasible = true
		}
	case 1:
		bound := new(big.Rat).Quo(k, g)
		if iv.hi == nil {
			iv.hi, iv.hiOpen = bound, strict
			return
		}
		switch bound.Cmp(iv.hi) {
		case -1:
			iv.hi, iv.hiOpen = bound, strict
		case 0:
			iv.hiOpen = iv.hiOpen || strict
		}
	default:
		bound := new(big.Rat).Quo(k, g)
		switch bound.Cmp(iv.lo) {
		case 1:
			iv.lo, iv.loOpen = bound, strict
		case 0:
			iv.loOpen = iv.loOpen || strict
		}
	}
}

func (iv interval) empty() bool {
	if iv.infeasible {
		return true
	}
	if iv.hi == nil {
		return false
	}
	cmp := iv.lo.Cmp(iv.hi)
	return cmp > 0 || (cmp == 0 && (iv.loOpen || iv.hiOpen))
}
