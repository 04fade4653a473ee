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
	"testing"

	"github.com/jazzpetri/bisep/petri"
)

type arc struct {
	from, to string
	weight   float64
}

func makeNet(t *testing.T, name string, places []string, transitions []string, arcs []arc) *petri.Net {
	t.Helper()
	b := petri.NewBuilder(name)
	for _, p := range places {
		if err := b.AddPlace(p, 0); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	for _, tr := range transitions {
		if err := b.AddTransition(tr); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	for _, a := range arcs {
		if err := b.AddArc(a.from, a.to, a.weight); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	net, err := b.Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return net
}

// makeCatalystNet: t0 needs a unit in p0 to produce into p1 and gives it
// back. From the empty marking nothing can fire.
func makeCatalystNet(t *testing.T) *petri.Net {
	return makeNet(t, "catalyst",
		[]string{"p0", "p1"},
		[]string{"t0"},
		[]arc{{"p0", "t0", 1}, {"t0", "p0", 1}, {"t0", "p1", 1}},
	)
}

// makeTwoComponentNet adds to the catalyst net an unrelated t1: p2 -> p3.
func makeTwoComponentNet(t *testing.T) *petri.Net {
	return makeNet(t, "two-component",
		[]string{"p0", "p1", "p2", "p3"},
		[]string{"t0", "t1"},
		[]arc{{"p0", "t0", 1}, {"t0", "p0", 1}, {"t0", "p1", 1}, {"p2", "t1", 1}, {"t1", "p3", 1}},
	)
}

// makeLineNet: p0 -t0-> p1.
func makeLineNet(t *testing.T) *petri.Net {
	return makeNet(t, "line",
		[]string{"p0", "p1"},
		[]string{"t0"},
		[]arc{{"p0", "t0", 1}, {"t0", "p1", 1}},
	)
}

func assertBoundary(t *testing.T, f *Formula, msrc, mtgt petri.Marking) {
	t.Helper()
	if !f.Holds(msrc, msrc) {
		t.Errorf("formula does not hold on (msrc, msrc): %v", f)
	}
	if !f.Holds(mtgt, mtgt) {
		t.Errorf("formula does not hold on (mtgt, mtgt): %v", f)
	}
	if f.Holds(msrc, mtgt) {
		t.Errorf("formula holds on (msrc, mtgt): %v", f)
	}
}

func floatsEqual(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func intsEqual(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
