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

// Package lola reads and writes Petri nets in the LoLA low-level format and
// target markings in the accompanying .formula files.
//
// A net file lists places, the initial marking and the transitions:
//
//	PLACE p, q;
//	MARKING p: 1;
//	TRANSITION t
//	CONSUME p: 1;
//	PRODUCE q: 2;
//
// A formula file states a target marking as a conjunction of equalities,
// for example EF (p = 0 AND q = 2). Places not mentioned are zero.
package lola

import (
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/jazzpetri/bisep/petri"
)

const (
	// NetExt and FormulaExt are the file extensions Load appends.
	NetExt     = ".lola"
	FormulaExt = ".formula"
)

// ReadNet parses a net in LoLA format. name becomes the net name.
func ReadNet(name string, r io.Reader) (*petri.Net, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read net: %w", err)
	}
	toks, err := tokenize(string(src))
	if err != nil {
		return nil, fmt.Errorf("net %s: %w", name, err)
	}
	p := &parser{toks: toks}
	b := petri.NewBuilder(name)
	if err := p.parseNet(b); err != nil {
		return nil, fmt.Errorf("net %s: %w", name, err)
	}
	return b.Build()
}

func (p *parser) parseNet(b *petri.Builder) error {
	if err := p.expectKeyword("PLACE"); err != nil {
		return err
	}
	if err := p.parsePlaces(b); err != nil {
		return err
	}

	if err := p.expectKeyword("MARKING"); err != nil {
		return err
	}
	marking, err := p.parseWeights()
	if err != nil {
		return err
	}
	for _, w := range marking {
		if err := b.SetInitial(w.name, w.value); err != nil {
			return fmt.Errorf("line %d: %w", w.line, err)
		}
	}

	for p.peek().kind != tokEOF {
		if err := p.parseTransition(b); err != nil {
			return err
		}
	}
	return nil
}

// parsePlaces reads the place list up to ';'. SAFE annotations are skipped.
func (p *parser) parsePlaces(b *petri.Builder) error {
	for {
		if p.keyword("SAFE") {
			if p.peek().kind == tokWord {
				p.next()
			}
			if _, err := p.expect(tokColon); err != nil {
				return err
			}
		}
		t, err := p.expect(tokWord)
		if err != nil {
			return err
		}
		if err := b.AddPlace(t.text, 0); err != nil {
			return fmt.Errorf("line %d: %w", t.line, err)
		}
		switch sep := p.next(); sep.kind {
		case tokComma:
		case tokSemicolon:
			return nil
		default:
			return fmt.Errorf("line %d: expected ',' or ';' in place list, found %s", sep.line, describe(sep))
		}
	}
}

type weight struct {
	name  string
	value float64
	line  int
}

// parseWeights reads "name: value, ..." up to ';'. A missing value means 1.
// The list may be empty.
func (p *parser) parseWeights() ([]weight, error) {
	var ws []weight
	if p.peek().kind == tokSemicolon {
		p.next()
		return ws, nil
	}
	for {
		t, err := p.expect(tokWord)
		if err != nil {
			return nil, err
		}
		w := weight{name: t.text, value: 1, line: t.line}
		if p.peek().kind == tokColon {
			p.next()
			v, err := p.expect(tokWord)
			if err != nil {
				return nil, err
			}
			w.value, err = parseQuantity(v.text)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", v.line, err)
			}
		}
		ws = append(ws, w)
		switch sep := p.next(); sep.kind {
		case tokComma:
		case tokSemicolon:
			return ws, nil
		default:
			return nil, fmt.Errorf("line %d: expected ',' or ';', found %s", sep.line, describe(sep))
		}
	}
}

func (p *parser) parseTransition(b *petri.Builder) error {
	if err := p.expectKeyword("TRANSITION"); err != nil {
		return err
	}
	t, err := p.expect(tokWord)
	if err != nil {
		return err
	}
	if err := b.AddTransition(t.text); err != nil {
		return fmt.Errorf("line %d: %w", t.line, err)
	}
	// Fairness annotations do not affect the structure.
	for p.keyword("STRONG") || p.keyword("WEAK") {
		if err := p.expectKeyword("FAIR"); err != nil {
			return err
		}
	}

	if err := p.expectKeyword("CONSUME"); err != nil {
		return err
	}
	consume, err := p.parseWeights()
	if err != nil {
		return err
	}
	for _, w := range consume {
		if err := b.AddInput(w.name, t.text, w.value); err != nil {
			return fmt.Errorf("line %d: %w", w.line, err)
		}
	}

	if err := p.expectKeyword("PRODUCE"); err != nil {
		return err
	}
	produce, err := p.parseWeights()
	if err != nil {
		return err
	}
	for _, w := range produce {
		if err := b.AddOutput(t.text, w.name, w.value); err != nil {
			return fmt.Errorf("line %d: %w", w.line, err)
		}
	}
	return nil
}

func parseQuantity(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid quantity %q", s)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0, fmt.Errorf("invalid quantity %q", s)
	}
	return v, nil
}

var (
	temporalRE = regexp.MustCompile(`^(AGEF|EF|AG)\b`)
	andRE      = regexp.MustCompile(`\bAND\b`)
	atomRE     = regexp.MustCompile(`^([^\s=<>!]+)\s*(=|>=|<=|>|<)\s*(\S+)$`)
)

// ReadFormula parses a target marking over the places of net.
// Comparison operators other than '=' are read as equalities.
func ReadFormula(net *petri.Net, r io.Reader) (petri.Marking, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read formula: %w", err)
	}
	text := strings.TrimSpace(string(src))
	text = strings.TrimSpace(temporalRE.ReplaceAllString(text, ""))
	text = strings.NewReplacer("(", " ", ")", " ", "\n", " ", "\t", " ").Replace(text)
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("formula is empty")
	}
	if strings.Contains(text, " OR ") || strings.Contains(text, "NOT ") {
		return nil, fmt.Errorf("formula must be a conjunction of place equalities")
	}

	m := make(petri.Marking, net.NumPlaces())
	seen := make(map[int]bool)
	for _, part := range andRE.Split(text, -1) {
		part = strings.TrimSpace(part)
		match := atomRE.FindStringSubmatch(part)
		if match == nil {
			return nil, fmt.Errorf("invalid atom %q", part)
		}
		id, ok := net.PlaceID(match[1])
		if !ok {
			return nil, fmt.Errorf("unknown place %q", match[1])
		}
		if seen[id] {
			return nil, fmt.Errorf("place %q constrained twice", match[1])
		}
		seen[id] = true
		v, err := parseQuantity(match[3])
		if err != nil {
			return nil, err
		}
		m[id] = v
	}
	return m, nil
}

// LoadNet reads a net file. The net is named after the file.
func LoadNet(path string) (*petri.Net, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return ReadNet(name, f)
}

// LoadFormula reads a formula file over net.
func LoadFormula(net *petri.Net, path string) (petri.Marking, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	m, err := ReadFormula(net, f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// Load reads base+".lola" and base+".formula" and returns the net and the
// target marking.
func Load(base string) (*petri.Net, petri.Marking, error) {
	net, err := LoadNet(base + NetExt)
	if err != nil {
		return nil, nil, err
	}
	m, err := LoadFormula(net, base+FormulaExt)
	if err != nil {
		return nil, nil, err
	}
	return net, m, nil
}
