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

package reachability

import (
	"testing"

	bctx "github.com/jazzpetri/bisep/context"
	"github.com/jazzpetri/bisep/lp"
	"github.com/jazzpetri/bisep/petri"
)

type arc struct {
	from, to string
	weight   float64
}

func makeNet(t *testing.T, name string, places map[string]float64, order []string, transitions []string, arcs []arc) *petri.Net {
	t.Helper()
	b := petri.NewBuilder(name)
	for _, p := range order {
		if err := b.AddPlace(p, places[p]); err != nil {
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

// makeCycleNet: p0 -t0-> p1 -t1-> p0, p1 -t2-> p2, one unit in p0.
func makeCycleNet(t *testing.T) *petri.Net {
	return makeNet(t, "cycle",
		map[string]float64{"p0": 1},
		[]string{"p0", "p1", "p2"},
		[]string{"t0", "t1", "t2"},
		[]arc{{"p0", "t0", 1}, {"t0", "p1", 1}, {"p1", "t1", 1}, {"t1", "p0", 1}, {"p1", "t2", 1}, {"t2", "p2", 1}},
	)
}

// makeStuckNet: t needs q to produce into p, but q is never marked.
func makeStuckNet(t *testing.T) *petri.Net {
	return makeNet(t, "stuck",
		map[string]float64{},
		[]string{"p", "q"},
		[]string{"t"},
		[]arc{{"q", "t", 1}, {"t", "q", 1}, {"t", "p", 1}},
	)
}

func TestIsReachable_EqualMarkingNeedsNoOracle(t *testing.T) {
	net := makeCycleNet(t)
	budget := lp.WithBudget(lp.NewSimplex(), 0)
	a := NewAnalyzer(net, budget)

	ok, err := a.IsReachable(bctx.Background(), petri.Marking{1, 0, 0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Error("initial marking must be reachable")
	}
	if budget.Calls() != 0 {
		t.Errorf("expected no oracle call, got %d", budget.Calls())
	}
}

func TestIsReachable(t *testing.T) {
	cycle := makeCycleNet(t)
	stuck := makeStuckNet(t)

	tests := []struct {
		name   string
		net    *petri.Net
		target petri.Marking
		want   bool
	}{
		{"through the exit", cycle, petri.Marking{0, 0, 1}, true},
		{"half fired", cycle, petri.Marking{0.5, 0.5, 0}, true},
		{"split three ways", cycle, petri.Marking{0.25, 0.25, 0.5}, true},
		{"token count grows", cycle, petri.Marking{0, 1, 1}, false},
		{"exit is irreversible", makeCycleNetFrom(t, petri.Marking{0, 0, 1}), petri.Marking{1, 0, 0}, false},
		{"unfireable transition", stuck, petri.Marking{1, 0}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			metrics := bctx.NewCounterMetrics()
			ac := bctx.Background().WithMetrics(metrics)
			a := NewAnalyzer(tt.net, lp.NewSimplex())

			got, err := a.IsReachable(ac, tt.target)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("IsReachable(%v) = %v, want %v", tt.target, got, tt.want)
			}
			if metrics.Counter(MetricRounds) < 1 {
				t.Error("expected at least one refinement round")
			}
		})
	}
}

func makeCycleNetFrom(t *testing.T, m petri.Marking) *petri.Net {
	net := makeCycleNet(t)
	b := petri.NewBuilder(net.Name)
	for p := 0; p < net.NumPlaces(); p++ {
		_ = b.AddPlace(net.PlaceName(p), m[p])
	}
	for tr := 0; tr < net.NumTransitions(); tr++ {
		_ = b.AddTransition(net.TransitionName(tr))
		for _, a := range net.Pre(tr) {
			_ = b.AddInput(net.PlaceName(a.Place), net.TransitionName(tr), a.Weight)
		}
		for _, a := range net.Post(tr) {
			_ = b.AddOutput(net.TransitionName(tr), net.PlaceName(a.Place), a.Weight)
		}
	}
	out, err := b.Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return out
}

func TestIsCoverable(t *testing.T) {
	cycle := makeCycleNet(t)
	stuck := makeStuckNet(t)

	tests := []struct {
		name   string
		net    *petri.Net
		target petri.Marking
		want   bool
	}{
		{"below initial", cycle, petri.Marking{0.5, 0, 0}, true},
		{"part of the exit", cycle, petri.Marking{0, 0, 0.5}, true},
		{"two places at once", cycle, petri.Marking{0, 0.5, 0.5}, true},
		{"more than the net holds", cycle, petri.Marking{0, 1, 1}, false},
		{"unfireable transition", stuck, petri.Marking{1, 0}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewAnalyzer(tt.net, lp.NewSimplex())
			got, err := a.IsCoverable(bctx.Background(), tt.target)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("IsCoverable(%v) = %v, want %v", tt.target, got, tt.want)
			}
		})
	}
}

func TestReachableWithin(t *testing.T) {
	net := makeCycleNet(t)
	a := NewAnalyzer(net, lp.NewSimplex())
	ac := bctx.Background()
	src, tgt := petri.Marking{1, 0, 0}, petri.Marking{0, 0, 1}

	ok, err := a.ReachableWithin(ac, src, tgt, petri.SetOf(3, 0, 1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Error("p2 is unreachable without t2")
	}
	ok, err = a.ReachableWithin(ac, src, tgt, net.AllTransitions())
	if err != nil || !ok {
		t.Errorf("expected reachable with all transitions, got %v, %v", ok, err)
	}
	ok, err = a.WithInitial(tgt).IsReachable(ac, tgt)
	if err != nil || !ok {
		t.Errorf("WithInitial should start from the new marking, got %v, %v", ok, err)
	}
}

func TestIsReachable_InvalidTarget(t *testing.T) {
	a := NewAnalyzer(makeCycleNet(t), lp.NewSimplex())
	if _, err := a.IsReachable(bctx.Background(), petri.Marking{1, 0}); err == nil {
		t.Error("expected dimension error")
	}
	if _, err := a.IsCoverable(bctx.Background(), petri.Marking{1}); err == nil {
		t.Error("expected dimension error")
	}
}
