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
	bctx "github.com/jazzpetri/bisep/context"
	"github.com/jazzpetri/bisep/petri"
	"github.com/jazzpetri/bisep/separator"
)

// Certificate aggregates the results of both checkers on one separator.
//
// A certificate with Valid() == true proves that the target marking is not
// reachable from the source marking using the formula's transitions.
type Certificate struct {
	// Net is the name of the net the separator was checked against
	Net string

	// Size is the separator's shape, see separator.Formula.Size
	Size string

	// Atoms is the total number of atoms in the separator
	Atoms int

	// Reports holds one report per method, direct first
	Reports []Report
}

// Valid returns true if every report is valid. A certificate without
// reports is not valid.
func (c *Certificate) Valid() bool {
	if len(c.Reports) == 0 {
		return false
	}
	for _, r := range c.Reports {
		if !r.Valid {
			return false
		}
	}
	return true
}

// Agree returns true if all reports reach the same verdict.
func (c *Certificate) Agree() bool {
	for _, r := range c.Reports {
		if r.Valid != c.Reports[0].Valid {
			return false
		}
	}
	return true
}

// Report returns the report produced by method, if any.
func (c *Certificate) Report(method Method) (Report, bool) {
	for _, r := range c.Reports {
		if r.Method == method {
			return r, true
		}
	}
	return Report{}, false
}

// Certify runs the direct checker and, when f carries a syndrome, the
// syndrome checker.
func (c *Checker) Certify(ctx *bctx.AnalysisContext, f *separator.Formula, msrc, mtgt petri.Marking) (*Certificate, error) {
	cert := &Certificate{Net: c.net.Name}
	if f != nil {
		cert.Size = f.Size()
		cert.Atoms = f.NumAtoms()
	}
	direct, err := c.CheckDirect(ctx, f, msrc, mtgt)
	if err != nil {
		return nil, err
	}
	cert.Reports = append(cert.Reports, direct)
	if f != nil && f.Syndrome != nil {
		syn, err := c.CheckSyndrome(ctx, f, msrc, mtgt)
		if err != nil {
			return nil, err
		}
		cert.Reports = append(cert.Reports, syn)
	}
	return cert, nil
}
