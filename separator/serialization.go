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
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/jazzpetri/bisep/petri"
)

// FormatVersion is written into every serialized formula.
const FormatVersion = 1

// SerializableFormula is the JSON and YAML representation of a Formula.
type SerializableFormula struct {
	Version        int                   `json:"version" yaml:"version"`
	Net            string                `json:"net" yaml:"net"`
	Places         int                   `json:"places" yaml:"places"`
	NumTransitions int                   `json:"num_transitions" yaml:"num_transitions"`
	Transitions    []int                 `json:"transitions" yaml:"transitions"`
	Clauses        []SerializableClause  `json:"clauses" yaml:"clauses"`
	Syndrome       []SerializablePointer `json:"syndrome,omitempty" yaml:"syndrome,omitempty"`
	HasSyndrome    bool                  `json:"has_syndrome" yaml:"has_syndrome"`
}

// SerializableClause is the representation of one clause.
type SerializableClause struct {
	Atoms []SerializableAtom `json:"atoms" yaml:"atoms"`
}

// SerializableAtom is the representation of one atom.
type SerializableAtom struct {
	Left   []float64 `json:"left" yaml:"left,flow"`
	Right  []float64 `json:"right" yaml:"right,flow"`
	Strict bool      `json:"strict" yaml:"strict"`
}

// SerializablePointer is one defined syndrome entry.
type SerializablePointer struct {
	Clause     int    `json:"clause" yaml:"clause"`
	Transition int    `json:"transition" yaml:"transition"`
	Direction  string `json:"direction" yaml:"direction"`
	Target     int    `json:"target" yaml:"target"`
	Atoms      []int  `json:"atoms" yaml:"atoms,flow"`
}

// ToSerializable converts f to its serializable representation.
func ToSerializable(f *Formula) (*SerializableFormula, error) {
	if f == nil {
		return nil, fmt.Errorf("cannot serialize nil formula")
	}
	sf := &SerializableFormula{
		Version:        FormatVersion,
		Net:            f.Net,
		Places:         f.Places,
		NumTransitions: len(f.Transitions),
		Transitions:    f.Transitions.IDs(),
		Clauses:        make([]SerializableClause, len(f.Clauses)),
		HasSyndrome:    f.Syndrome != nil,
	}
	if sf.Transitions == nil {
		sf.Transitions = []int{}
	}
	for i, c := range f.Clauses {
		sc := SerializableClause{Atoms: make([]SerializableAtom, len(c.Atoms))}
		for j, a := range c.Atoms {
			sc.Atoms[j] = SerializableAtom{Left: a.Left, Right: a.Right, Strict: a.Strict}
		}
		sf.Clauses[i] = sc
	}
	if f.Syndrome != nil {
		for _, e := range f.Syndrome.Entries() {
			sf.Syndrome = append(sf.Syndrome, SerializablePointer{
				Clause:     e.Clause,
				Transition: e.Transition,
				Direction:  e.Direction.String(),
				Target:     e.Pointer.Clause,
				Atoms:      e.Pointer.Atoms,
			})
		}
	}
	return sf, nil
}

// FromSerializable rebuilds a formula and validates its shape. Syndrome
// entries are range-checked but not verified; that is the checker's job.
func FromSerializable(sf *SerializableFormula) (*Formula, error) {
	if sf == nil {
		return nil, fmt.Errorf("cannot deserialize nil formula")
	}
	if sf.Version != FormatVersion {
		return nil, fmt.Errorf("unsupported formula version %d", sf.Version)
	}
	if sf.NumTransitions < 0 {
		return nil, fmt.Errorf("negative transition count %d", sf.NumTransitions)
	}
	ts := petri.NewSet(sf.NumTransitions)
	for _, t := range sf.Transitions {
		if t < 0 || t >= sf.NumTransitions {
			return nil, fmt.Errorf("transition %d out of range", t)
		}
		ts.Add(t)
	}
	bodies := make([][]Atom, len(sf.Clauses))
	for i, sc := range sf.Clauses {
		bodies[i] = make([]Atom, len(sc.Atoms))
		for j, sa := range sc.Atoms {
			bodies[i][j] = Atom{Left: sa.Left, Right: sa.Right, Strict: sa.Strict}
		}
	}
	f := NewFormula(sf.Net, sf.Places, ts, bodies)

	if sf.HasSyndrome {
		syn := NewSyndrome(len(f.Clauses), sf.NumTransitions)
		for _, sp := range sf.Syndrome {
			dir, err := ParseDirection(sp.Direction)
			if err != nil {
				return nil, fmt.Errorf("syndrome entry (%d, %d): %w", sp.Clause, sp.Transition, err)
			}
			if !syn.inRange(sp.Clause, sp.Transition, dir) {
				return nil, fmt.Errorf("syndrome entry (%d, %d, %s) out of range", sp.Clause, sp.Transition, sp.Direction)
			}
			if sp.Target < 0 {
				return nil, fmt.Errorf("syndrome entry (%d, %d, %s) has negative target", sp.Clause, sp.Transition, sp.Direction)
			}
			syn.Set(sp.Clause, sp.Transition, dir, Pointer{Clause: sp.Target, Atoms: sp.Atoms})
		}
		f.Syndrome = syn
	}
	if err := f.Validate(); err != nil {
		return nil, fmt.Errorf("invalid formula: %w", err)
	}
	return f, nil
}

// EncodeJSON serializes f as indented JSON.
func EncodeJSON(f *Formula) ([]byte, error) {
	sf, err := ToSerializable(f)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(sf, "", "  ")
}

// DecodeJSON parses a formula written by EncodeJSON.
func DecodeJSON(data []byte) (*Formula, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("cannot deserialize empty data")
	}
	var sf SerializableFormula
	if err := json.Unmarshal(data, &sf); err != nil {
		return nil, fmt.Errorf("failed to unmarshal formula JSON: %w", err)
	}
	return FromSerializable(&sf)
}

// EncodeYAML serializes f as YAML.
func EncodeYAML(f *Formula) ([]byte, error) {
	sf, err := ToSerializable(f)
	if err != nil {
		return nil, err
	}
	return yaml.Marshal(sf)
}

// DecodeYAML parses a formula written by EncodeYAML.
func DecodeYAML(data []byte) (*Formula, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("cannot deserialize empty data")
	}
	var sf SerializableFormula
	if err := yaml.Unmarshal(data, &sf); err != nil {
		return nil, fmt.Errorf("failed to unmarshal formula YAML: %w", err)
	}
	return FromSerializable(&sf)
}
