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

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/samber/lo"

	bctx "github.com/jazzpetri/bisep/context"
	"github.com/jazzpetri/bisep/petri"
	"github.com/jazzpetri/bisep/separator"
	"github.com/jazzpetri/bisep/verification"
)

func runChecks(ac *bctx.AnalysisContext, c *verification.Checker, methods []verification.Method,
	f *separator.Formula, msrc, mtgt petri.Marking) ([]verification.Report, error) {
	reports := make([]verification.Report, 0, len(methods))
	for _, m := range methods {
		var (
			r   verification.Report
			err error
		)
		switch m {
		case verification.Direct:
			r, err = c.CheckDirect(ac, f, msrc, mtgt)
		case verification.Syndrome:
			r, err = c.CheckSyndrome(ac, f, msrc, mtgt)
		default:
			return nil, fmt.Errorf("unknown method %q", m)
		}
		if err != nil {
			return nil, err
		}
		reports = append(reports, r)
	}
	return reports, nil
}

// syndromeSize is the number of atomic implications the syndrome checker
// has to decide.
func syndromeSize(f *separator.Formula) int64 {
	if f.Syndrome == nil {
		return 0
	}
	return lo.SumBy(f.Syndrome.Entries(), func(e separator.Entry) int64 {
		return int64(len(e.Pointer.Atoms))
	})
}

// crossCheck compares the fixpoint siphon and trap of the whole net with
// the SAT encoding.
func crossCheck(net *petri.Net, msrc, mtgt petri.Marking) error {
	all := net.AllTransitions()
	if q, sat := net.LargestSiphon(all, msrc), net.SiphonMembers(all, net.Support(msrc)); !q.Equal(sat) {
		return fmt.Errorf("siphon mismatch: fixpoint {%s}, SAT {%s}", names(net, q), names(net, sat))
	}
	if r, sat := net.LargestTrap(all, mtgt), net.TrapMembers(all, net.Support(mtgt)); !r.Equal(sat) {
		return fmt.Errorf("trap mismatch: fixpoint {%s}, SAT {%s}", names(net, r), names(net, sat))
	}
	return nil
}

func names(net *petri.Net, s petri.Set) string {
	return strings.Join(net.PlaceNames(s), ", ")
}

func writeDOT(path string, net *petri.Net, msrc, mtgt petri.Marking) error {
	all := net.AllTransitions()
	dot := net.ToDOT(petri.DOTOptions{
		Marking: msrc,
		Siphon:  net.LargestSiphon(all, msrc),
		Trap:    net.LargestTrap(all, mtgt),
	})
	if err := os.WriteFile(path, []byte(dot), 0644); err != nil {
		return fmt.Errorf("failed to write DOT file: %w", err)
	}
	return nil
}
