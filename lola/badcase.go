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
	"fmt"

	"github.com/jazzpetri/bisep/petri"
)

// BadCase builds the bad-case family of size n together with its target,
// the zero marking. The net has 2n+2 places and 3n+1 transitions. The
// target is unreachable, and separators for it grow with n.
//
// Stage i has places s<i>_1 and s<i>_2. Transition t<i>_1 consumes s<i>_1
// using s<i-1>_2 as a catalyst, t<i>_2 creates one token in each place of
// stage i, and t<i>_3 drains s<i>_2. Only s<n+1>_1 is initially marked and
// s0_2 is never produced.
func BadCase(n int) (*petri.Net, petri.Marking, error) {
	if n < 1 {
		return nil, nil, fmt.Errorf("bad case size must be positive, got %d", n)
	}
	b := petri.NewBuilder(fmt.Sprintf("bad-case-%d", n))
	s := func(i, k int) string { return fmt.Sprintf("s%d_%d", i, k) }
	t := func(i, k int) string { return fmt.Sprintf("t%d_%d", i, k) }

	must := func(err error) {
		if err != nil {
			panic(err)
		}
	}
	must(b.AddPlace(s(0, 2), 0))
	for i := 1; i <= n; i++ {
		must(b.AddPlace(s(i, 1), 0))
		must(b.AddPlace(s(i, 2), 0))
	}
	must(b.AddPlace(s(n+1, 1), 1))

	for i := 1; i <= n; i++ {
		must(b.AddTransition(t(i, 1)))
		must(b.AddInput(s(i-1, 2), t(i, 1), 1))
		must(b.AddInput(s(i, 1), t(i, 1), 1))
		must(b.AddOutput(t(i, 1), s(i-1, 2), 1))
		must(b.AddOutput(t(i, 1), s(i, 2), 1))

		must(b.AddTransition(t(i, 2)))
		must(b.AddOutput(t(i, 2), s(i, 1), 1))
		must(b.AddOutput(t(i, 2), s(i, 2), 1))

		must(b.AddTransition(t(i, 3)))
		must(b.AddInput(s(i, 2), t(i, 3), 1))
	}
	must(b.AddTransition(t(n+1, 1)))
	must(b.AddInput(s(n, 2), t(n+1, 1), 1))
	must(b.AddInput(s(n+1, 1), t(n+1, 1), 1))
	must(b.AddOutput(t(n+1, 1), s(n, 2), 1))

	net, err := b.Build()
	if err != nil {
		return nil, nil, err
	}
	return net, make(petri.Marking, net.NumPlaces()), nil
}
