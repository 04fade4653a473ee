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

package petri

import (
	"fmt"
	"strings"
)

// DOTOptions selects what ToDOT highlights.
type DOTOptions struct {
	// Marking labels places with quantities. Nil uses the initial marking.
	Marking Marking

	// Siphon places are filled light blue, Trap places light orange (both:
	// light green).
	Siphon Set
	Trap   Set

	// Active transitions are drawn bold; the rest dashed. Nil draws all
	// transitions normally.
	Active Set
}

// ToDOT generates a Graphviz DOT representation of the net, in id order.
func (n *Net) ToDOT(opts DOTOptions) string {
	var sb strings.Builder
	m := opts.Marking
	if m == nil {
		m = n.InitialMarking()
	}

	sb.WriteString(fmt.Sprintf("digraph \"%s\" {\n", escapeLabel(n.Name)))
	sb.WriteString("  rankdir=LR;\n")
	sb.WriteString("  node [fontname=\"Helvetica\"];\n\n")

	sb.WriteString("  // Places\n")
	for _, p := range n.places {
		label := escapeLabel(p.Name)
		if p.ID < len(m) && m[p.ID] != 0 {
			label = fmt.Sprintf("%s\\n%g", label, m[p.ID])
		}
		style := ""
		inS, inT := opts.Siphon.Has(p.ID), opts.Trap.Has(p.ID)
		switch {
		case inS && inT:
			style = " style=filled fillcolor=lightgreen"
		case inS:
			style = " style=filled fillcolor=lightblue"
		case inT:
			style = " style=filled fillcolor=orange"
		}
		sb.WriteString(fmt.Sprintf("  p%d [label=\"%s\" shape=circle%s];\n", p.ID, label, style))
	}
	sb.WriteString("\n  // Transitions\n")
	for _, t := range n.transitions {
		style := ""
		if opts.Active != nil {
			if opts.Active.Has(t.ID) {
				style = " style=bold"
			} else {
				style = " style=dashed"
			}
		}
		sb.WriteString(fmt.Sprintf("  t%d [label=\"%s\" shape=box%s];\n", t.ID, escapeLabel(t.Name), style))
	}
	sb.WriteString("\n  // Arcs\n")
	for _, t := range n.transitions {
		for _, a := range t.Pre {
			sb.WriteString(fmt.Sprintf("  p%d -> t%d%s;\n", a.Place, t.ID, weightLabel(a.Weight)))
		}
		for _, a := range t.Post {
			sb.WriteString(fmt.Sprintf("  t%d -> p%d%s;\n", t.ID, a.Place, weightLabel(a.Weight)))
		}
	}
	sb.WriteString("}\n")
	return sb.String()
}

func weightLabel(w float64) string {
	if w == 1 {
		return ""
	}
	return fmt.Sprintf(" [label=\"%g\"]", w)
}

// escapeLabel escapes special characters for DOT format.
func escapeLabel(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\"", "\\\"")
	s = strings.ReplaceAll(s, "\n", "\\n")
	return s
}
