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

package petri

import "sort"

// Arc is one entry of a sparse per-transition vector: the place it touches
// and the weight on that place. Arc lists are kept sorted by place id with
// at most one entry per place and no zero weights.
type Arc struct {
	Place  int
	Weight float64
}

// arcsFromMap turns accumulated weights into a sorted arc list, dropping
// zero entries.
func arcsFromMap(weights map[int]float64) []Arc {
	arcs := make([]Arc, 0, len(weights))
	for p, w := range weights {
		if w != 0 {
			arcs = append(arcs, Arc{Place: p, Weight: w})
		}
	}
	sort.Slice(arcs, func(i, j int) bool { return arcs[i].Place < arcs[j].Place })
	return arcs
}

// dense expands arcs into a vector of length n.
func dense(arcs []Arc, n int) []float64 {
	v := make([]float64, n)
	for _, a := range arcs {
		v[a.Place] = a.Weight
	}
	return v
}
