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
	"testing"

	bctx "github.com/jazzpetri/bisep/context"
	"github.com/jazzpetri/bisep/lp"
	"github.com/jazzpetri/bisep/petri"
	"github.com/jazzpetri/bisep/separator"
)

type arc struct {
	from, to string
	weight   float64
}

func makeNet(t *testing.T, name string, places, transitions []string, arcs []arc) *petri.Net {
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

// makeLineNet: p0 -t0-> p1.
func makeLineNet(t *testing.T) *petri.Net {
	return makeNet(t, "line", []string{"p0", "p1"}, []string{"t0"},
		[]arc{{"p0", "t0", 1}, {"t0", "p1", 1}})
}

// makeCatalystNet: t0 needs a unit in p0 to produce into p1.
func makeCatalystNet(t *testing.T) *petri.Net {
	return makeNet(t, "catalyst", []string{"p0", "p1"}, []string{"t0"},
		[]arc{{"p0", "t0", 1}, {"t0", "p0", 1}, {"t0", "p1", 1}})
}

// makeTwoComponentNet adds an unrelated t1: p2 -> p3 to the catalyst net.
func makeTwoComponentNet(t *testing.T) *petri.Net {
	return makeNet(t, "two-component",
		[]string{"p0", "p1", "p2", "p3"},
		[]string{"t0", "t1"},
		[]arc{{"p0", "t0", 1}, {"t0", "p0", 1}, {"t0", "p1", 1}, {"p2", "t1", 1}, {"t1", "p3", 1}})
}

// makeChainNet: catalyst t0 feeds p1 -t1-> p2, and t2 moves p3 to p4.
func makeChainNet(t *testing.T) *petri.Net {
	return makeNet(t, "chain",
		[]string{"p0", "p1", "p2", "p3", "p4"},
		[]string{"t0", "t1", "t2"},
		[]arc{
			{"p0", "t0", 1}, {"t0", "p0", 1}, {"t0", "p1", 1},
			{"p1", "t1", 1}, {"t1", "p2", 1},
			{"p3", "t2", 1}, {"t2", "p4", 1},
		})
}

// makeGuardedNet: tokens move between p0, p1 and p2 only while p3 is
// marked, and t3 moves p2 into p3.
func makeGuardedNet(t *testing.T) *petri.Net {
	return makeNet(t, "guarded",
		[]string{"p0", "p1", "p2", "p3"},
		[]string{"t0", "t1", "t2", "t3"},
		[]arc{
			{"p0", "t0", 1}, {"p3", "t0", 1}, {"t0", "p1", 1}, {"t0", "p3", 1},
			{"p1", "t1", 1}, {"p3", "t1", 1}, {"t1", "p0", 1}, {"t1", "p3", 1},
			{"p2", "t2", 1}, {"p3", "t2", 1}, {"t2", "p1", 1}, {"t2", "p3", 1},
			{"p2", "t3", 1}, {"t3", "p3", 1},
		})
}

type scenario struct {
	name       string
	net        func(*testing.T) *petri.Net
	msrc, mtgt petri.Marking
}

var scenarios = []scenario{
	{"line", makeLineNet, petri.Marking{1, 0}, petri.Marking{0, 2}},
	{"catalyst", makeCatalystNet, petri.Marking{0, 0}, petri.Marking{0, 1}},
	{"two-component", makeTwoComponentNet, petri.Marking{0, 0, 0, 0}, petri.Marking{0, 1, 0, 0}},
	{"chain", makeChainNet, petri.Marking{0, 0, 0, 1, 0}, petri.Marking{0, 1, 1, 0, 1}},
	{"guarded", makeGuardedNet, petri.Marking{1, 0, 0, 0}, petri.Marking{0, 1, 0, 0}},
}

func generate(t *testing.T, net *petri.Net, msrc, mtgt petri.Marking) *separator.Formula {
	t.Helper()
	f, err := separator.NewGenerator(net, lp.NewSimplex(), separator.Options{}).
		Generate(bctx.Background(), net.AllTransitions(), msrc, mtgt)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return f
}

func vec(vs ...float64) []float64 { return vs }

func atom(left, right []float64, strict bool) separator.Atom {
	return separator.NewAtom(left, right, strict)
}

func ratOf(n int64) *big.Rat { return big.NewRat(n, 1) }
