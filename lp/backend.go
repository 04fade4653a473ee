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
	"strings"
)

// Backend names an Oracle implementation.
type Backend string

const (
	// BackendAuto uses Z3 when it is built in and the simplex otherwise.
	BackendAuto    Backend = "auto"
	BackendSimplex Backend = "simplex"
	BackendZ3      Backend = "z3"
)

// ErrBackendUnavailable reports a backend that is not compiled into the
// binary.
var ErrBackendUnavailable = errors.New("lp backend not available")

// ParseBackend parses a backend name, case-insensitively. The empty
// string means BackendAuto.
func ParseBackend(s string) (Backend, error) {
	switch b := Backend(strings.ToLower(strings.TrimSpace(s))); b {
	case "":
		return BackendAuto, nil
	case BackendAuto, BackendSimplex, BackendZ3:
		return b, nil
	default:
		return "", fmt.Errorf("unknown lp backend %q", s)
	}
}

// NewOracle returns the oracle for b.
func NewOracle(b Backend) (Oracle, error) {
	switch b {
	case BackendAuto, "":
		if o, err := newZ3(); err == nil {
			return o, nil
		}
		return NewSimplex(), nil
	case BackendSimplex:
		return NewSimplex(), nil
	case BackendZ3:
		return newZ3()
	default:
		return nil, fmt.Errorf("unknown lp backend %q", string(b))
	}
}
