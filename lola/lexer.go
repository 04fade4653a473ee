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
	"strings"
	"unicode"
)

type tokenKind int

const (
	tokWord tokenKind = iota
	tokComma
	tokSemicolon
	tokColon
	tokEOF
)

func (k tokenKind) String() string {
	switch k {
	case tokWord:
		return "word"
	case tokComma:
		return "','"
	case tokSemicolon:
		return "';'"
	case tokColon:
		return "':'"
	default:
		return "end of input"
	}
}

type token struct {
	kind tokenKind
	text string
	line int
}

// tokenize splits LoLA source into words and separators. Braces delimit
// comments and may span lines.
func tokenize(src string) ([]token, error) {
	var toks []token
	line := 1
	runes := []rune(src)
	for i := 0; i < len(runes); {
		r := runes[i]
		switch {
		case r == '\n':
			line++
			i++
		case unicode.IsSpace(r):
			i++
		case r == '{':
			start := line
			for i < len(runes) && runes[i] != '}' {
				if runes[i] == '\n' {
					line++
				}
				i++
			}
			if i == len(runes) {
				return nil, fmt.Errorf("line %d: unterminated comment", start)
			}
			i++
		case r == '}':
			return nil, fmt.Errorf("line %d: unexpected '}'", line)
		case r == ',':
			toks = append(toks, token{kind: tokComma, text: ",", line: line})
			i++
		case r == ';':
			toks = append(toks, token{kind: tokSemicolon, text: ";", line: line})
			i++
		case r == ':':
			toks = append(toks, token{kind: tokColon, text: ":", line: line})
			i++
		default:
			var sb strings.Builder
			for i < len(runes) && !isDelimiter(runes[i]) {
				sb.WriteRune(runes[i])
				i++
			}
			toks = append(toks, token{kind: tokWord, text: sb.String(), line: line})
		}
	}
	toks = append(toks, token{kind: tokEOF, line: line})
	return toks, nil
}

func isDelimiter(r rune) bool {
	return unicode.IsSpace(r) || strings.ContainsRune(",;:{}", r)
}

type parser struct {
	toks []token
	pos  int
}

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

// keyword consumes the next token when it is the word kw.
func (p *parser) keyword(kw string) bool {
	t := p.peek()
	if t.kind == tokWord && strings.EqualFold(t.text, kw) {
		p.pos++
		return true
	}
	return false
}

func (p *parser) expect(kind tokenKind) (token, error) {
	t := p.next()
	if t.kind != kind {
		return t, fmt.Errorf("line %d: expected %s, found %s", t.line, kind, describe(t))
	}
	return t, nil
}

func (p *parser) expectKeyword(kw string) error {
	if !p.keyword(kw) {
		t := p.peek()
		return fmt.Errorf("line %d: expected %s, found %s", t.line, kw, describe(t))
	}
	return nil
}

func describe(t token) string {
	if t.kind == tokWord {
		return fmt.Sprintf("%q", t.text)
	}
	return t.kind.String()
}
