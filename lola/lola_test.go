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

package lola

import (
	"bytes"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/jazzpetri/bisep/petri"
)

const mutexNet = `{ two processes sharing a lock }
PLACE
idle1, idle2, busy1, busy2, lock;

MARKING
idle1: 1, idle2: 1, lock: 1;

TRANSITION enter1
CONSUME idle1: 1, lock: 1;
PRODUCE busy1: 1;

TRANSITION leave1
CONSUME busy1;
PRODUCE idle1: 1, lock: 1;

TRANSITION enter2 WEAK FAIR
CONSUME idle2: 1, lock: 1;
PRODUCE busy2: 0.5;

TRANSITION leave2
CONSUME busy2: 0.5;
PRODUCE idle2: 1, lock: 1;
`

func readMutex(t *testing.T) *petri.Net {
	t.Helper()
	net, err := ReadNet("mutex", strings.NewReader(mutexNet))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return net
}

func TestReadNet(t *testing.T) {
	net := readMutex(t)

	if net.Name != "mutex" {
		t.Errorf("Name = %q, want mutex", net.Name)
	}
	if net.NumPlaces() != 5 || net.NumTransitions() != 4 {
		t.Fatalf("got %d places, %d transitions", net.NumPlaces(), net.NumTransitions())
	}
	wantInit := petri.Marking{1, 1, 0, 0, 1}
	if !net.InitialMarking().Equal(wantInit) {
		t.Errorf("initial marking = %v, want %v", net.InitialMarking(), wantInit)
	}

	leave1, ok := net.TransitionID("leave1")
	if !ok {
		t.Fatal("leave1 not found")
	}
	pre := net.PreVector(leave1)
	if pre[2] != 1 {
		t.Errorf("leave1 consumes %v from busy1, want 1", pre[2])
	}
	enter2, _ := net.TransitionID("enter2")
	if post := net.PostVector(enter2); post[3] != 0.5 {
		t.Errorf("enter2 produces %v on busy2, want 0.5", post[3])
	}
}

func TestReadNetErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"missing place section", "MARKING p: 1;", "expected PLACE"},
		{"unterminated comment", "{ PLACE p;", "unterminated comment"},
		{"duplicate place", "PLACE p, p; MARKING ;", "already exists"},
		{"unknown marked place", "PLACE p; MARKING q: 1;", "not found"},
		{"negative quantity", "PLACE p; MARKING p: -1;", "invalid quantity"},
		{"bad quantity", "PLACE p; MARKING p: many;", "invalid quantity"},
		{"missing produce", "PLACE p; MARKING ; TRANSITION t CONSUME p: 1;", "expected PRODUCE"},
		{"unknown arc place", "PLACE p; MARKING ; TRANSITION t CONSUME q: 1; PRODUCE ;", "not found"},
		{"stray separator", "PLACE p; MARKING p: 1 p;", "expected ',' or ';'"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadNet("bad", strings.NewReader(tt.src))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestReadFormula(t *testing.T) {
	net := readMutex(t)

	tests := []struct {
		name string
		src  string
		want petri.Marking
	}{
		{"ef", "EF (busy1 = 1 AND busy2 = 1)\n", petri.Marking{0, 0, 1, 1, 0}},
		{"agef", "AGEF (lock = 2)", petri.Marking{0, 0, 0, 0, 2}},
		{"bare", "idle1 = 0.25", petri.Marking{0.25, 0, 0, 0, 0}},
		{"comparison", "EF ((busy1 >= 1) AND (lock <= 0))", petri.Marking{0, 0, 1, 0, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := ReadFormula(net, strings.NewReader(tt.src))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !m.Equal(tt.want) {
				t.Errorf("marking = %v, want %v", m, tt.want)
			}
		})
	}
}

func TestReadFormulaErrors(t *testing.T) {
	net := readMutex(t)

	tests := []struct {
		name string
		src  string
		want string
	}{
		{"empty", "EF ()", "empty"},
		{"unknown place", "EF (nowhere = 1)", "unknown place"},
		{"twice", "EF (lock = 1 AND lock = 0)", "twice"},
		{"disjunction", "EF (lock = 1 OR idle1 = 1)", "conjunction"},
		{"garbage", "EF (lock)", "invalid atom"},
		{"negative", "EF (lock = -1)", "invalid quantity"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadFormula(net, strings.NewReader(tt.src))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestWriteRoundTrip(t *testing.T) {
	net := readMutex(t)

	var buf bytes.Buffer
	if err := WriteNet(&buf, net); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	again, err := ReadNet("mutex", &buf)
	if err != nil {
		t.Fatalf("unexpected error: %v\n%s", err, buf.String())
	}
	assertSameNet(t, net, again)

	target := petri.Marking{0, 0.5, 1, 0, 0}
	buf.Reset()
	if err := WriteFormula(&buf, net, target); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	m, err := ReadFormula(net, &buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !m.Equal(target) {
		t.Errorf("formula round trip = %v, want %v", m, target)
	}
}

func TestWriteRejectsUnrepresentableNames(t *testing.T) {
	b := petri.NewBuilder("odd")
	if err := b.AddPlace("a place", 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	net, err := b.Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := WriteNet(&bytes.Buffer{}, net); err == nil {
		t.Error("expected error for a name containing a space")
	}
}

func TestBadCase(t *testing.T) {
	for n := 1; n <= 4; n++ {
		net, target, err := BadCase(n)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if net.NumPlaces() != 2*n+2 {
			t.Errorf("n=%d: %d places, want %d", n, net.NumPlaces(), 2*n+2)
		}
		if net.NumTransitions() != 3*n+1 {
			t.Errorf("n=%d: %d transitions, want %d", n, net.NumTransitions(), 3*n+1)
		}
		if len(target) != net.NumPlaces() {
			t.Errorf("n=%d: target has %d entries", n, len(target))
		}
		last, _ := net.PlaceID("s" + strconv.Itoa(n+1) + "_1")
		if net.InitialMarking()[last] != 1 {
			t.Errorf("n=%d: last place not marked", n)
		}
	}

	if _, _, err := BadCase(0); err == nil {
		t.Error("expected error for size 0")
	}
}

func TestLoad(t *testing.T) {
	net, target, err := BadCase(2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	base := filepath.Join(t.TempDir(), "bad-case-2")

	var nb, fb bytes.Buffer
	if err := WriteNet(&nb, net); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := WriteFormula(&fb, net, target); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := os.WriteFile(base+NetExt, nb.Bytes(), 0644); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := os.WriteFile(base+FormulaExt, fb.Bytes(), 0644); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	loaded, m, err := Load(base)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loaded.Name != "bad-case-2" {
		t.Errorf("Name = %q, want bad-case-2", loaded.Name)
	}
	assertSameNet(t, net, loaded)
	if !m.Equal(target) {
		t.Errorf("target = %v, want %v", m, target)
	}

	if _, _, err := Load(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("expected error for missing files")
	}
}

func assertSameNet(t *testing.T, want, got *petri.Net) {
	t.Helper()
	if got.NumPlaces() != want.NumPlaces() || got.NumTransitions() != want.NumTransitions() {
		t.Fatalf("shape %dx%d, want %dx%d", got.NumPlaces(), got.NumTransitions(), want.NumPlaces(), want.NumTransitions())
	}
	if !got.InitialMarking().Equal(want.InitialMarking()) {
		t.Errorf("initial marking %v, want %v", got.InitialMarking(), want.InitialMarking())
	}
	for tr := 0; tr < want.NumTransitions(); tr++ {
		if got.TransitionName(tr) != want.TransitionName(tr) {
			t.Errorf("transition %d named %q, want %q", tr, got.TransitionName(tr), want.TransitionName(tr))
		}
		if !petri.Marking(got.PreVector(tr)).Equal(want.PreVector(tr)) {
			t.Errorf("%s pre = %v, want %v", want.TransitionName(tr), got.PreVector(tr), want.PreVector(tr))
		}
		if !petri.Marking(got.PostVector(tr)).Equal(want.PostVector(tr)) {
			t.Errorf("%s post = %v, want %v", want.TransitionName(tr), got.PostVector(tr), want.PostVector(tr))
		}
	}
}
