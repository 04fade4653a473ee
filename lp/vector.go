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
	"errors"
	"fmt"
	"math/big"
)

// ErrInexact reports a rational with no exact float64 representation.
var ErrInexact = errors.New("value is not exactly representable as float64")

// ScaleToIntegers multiplies v by the positive rational that turns it into
// the primitive integer vector with the same direction: denominators are
// cleared with their least common multiple, then the entries are divided
// by the gcd of the numerators. The zero vector is returned unchanged.
func ScaleToIntegers(v []*big.Rat) []*big.Rat {
	lcm := big.NewInt(1)
	var g big.Int
	for _, x := range v {
		if x == nil || x.Sign() == 0 {
			continue
		}
		d := x.Denom()
		g.GCD(nil, nil, lcm, d)
		lcm.Mul(lcm, d)
		lcm.Quo(lcm, &g)
	}
	ints := make([]*big.Int, len(v))
	gcd := new(big.Int)
	for i, x := range v {
		ints[i] = new(big.Int)
		if x == nil || x.Sign() == 0 {
			continue
		}
		ints[i].Mul(x.Num(), lcm)
		ints[i].Quo(ints[i], x.Denom())
		var abs big.Int
		abs.Abs(ints[i])
		if gcd.Sign() == 0 {
			gcd.Set(&abs)
		} else {
			gcd.GCD(nil, nil, gcd, &abs)
		}
	}
	out := make([]*big.Rat, len(v))
	for i := range ints {
		if gcd.Sign() > 0 {
			ints[i].Quo(ints[i], gcd)
		}
		out[i] = new(big.Rat).SetInt(ints[i])
	}
	return out
}

// Floats converts v to float64, rounding to nearest.
func Floats(v []*big.Rat) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		if x != nil {
			out[i], _ = x.Float64()
		}
	}
	return out
}

// ExactFloats converts v to float64 and fails with ErrInexact when an
// entry would be rounded.
func ExactFloats(v []*big.Rat) ([]float64, error) {
	out := make([]float64, len(v))
	for i, x := range v {
		if x == nil {
			continue
		}
		f, exact := x.Float64()
		if !exact {
			return nil, fmt.Errorf("entry %d = %s: %w", i, x.RatString(), ErrInexact)
		}
		out[i] = f
	}
	return out, nil
}

// Average returns the exact componentwise mean of vs. All vectors must
// have the same length; an empty input yields nil.
func Average(vs [][]*big.Rat) []*big.Rat {
	if len(vs) == 0 {
		return nil
	}
	sum := make([]*big.Rat, len(vs[0]))
	for i := range sum {
		sum[i] = new(big.Rat)
	}
	for _, v := range vs {
		for i, x := range v {
			if x != nil {
				sum[i].Add(sum[i], x)
			}
		}
	}
	k := big.NewRat(int64(len(vs)), 1)
	for i := range sum {
		sum[i].Quo(sum[i], k)
	}
	return sum
}

// Sub returns a - b for equal-length vectors.
func Sub(a, b []*big.Rat) []*big.Rat {
	out := make([]*big.Rat, len(a))
	for i := range a {
		out[i] = new(big.Rat).Sub(a[i], b[i])
	}
	return out
}
