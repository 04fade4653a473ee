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
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jazzpetri/bisep/petri"
)

// WriteNet writes net in LoLA format. Names that contain separators or
// whitespace cannot be represented and are rejected.
func WriteNet(w io.Writer, net *petri.Net) error {
	if err := checkNames(net); err != nil {
		return err
	}
	bw := bufio.NewWriter(w)

	places := net.PlaceNames(net.AllPlaces())
	fmt.Fprintf(bw, "PLACE\n%s;\n\n", strings.Join(places, ", "))

	var marked []string
	for id, v := range net.InitialMarking() {
		if v != 0 {
			marked = append(marked, fmt.Sprintf("%s: %s", net.PlaceName(id), formatQuantity(v)))
		}
	}
	fmt.Fprintf(bw, "MARKING\n%s;\n", strings.Join(marked, ", "))

	for t := 0; t < net.NumTransitions(); t++ {
		fmt.Fprintf(bw, "\nTRANSITION %s\n", net.TransitionName(t))
		fmt.Fprintf(bw, "CONSUME %s;\n", arcList(net, net.Pre(t)))
		fmt.Fprintf(bw, "PRODUCE %s;\n", arcList(net, net.Post(t)))
	}
	return bw.Flush()
}

// WriteFormula writes m as a reachability formula over the places of net.
func WriteFormula(w io.Writer, net *petri.Net, m petri.Marking) error {
	if err := net.ValidateMarking(m); err != nil {
		return err
	}
	atoms := make([]string, len(m))
	for id, v := range m {
		atoms[id] = fmt.Sprintf("%s = %s", net.PlaceName(id), formatQuantity(v))
	}
	_, err := fmt.Fprintf(w, "EF (%s)\n", strings.Join(atoms, " AND "))
	return err
}

func arcList(net *petri.Net, arcs []petri.Arc) string {
	parts := make([]string, len(arcs))
	for i, a := range arcs {
		parts[i] = fmt.Sprintf("%s: %s", net.PlaceName(a.Place), formatQuantity(a.Weight))
	}
	return strings.Join(parts, ", ")
}

func formatQuantity(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func checkNames(net *petri.Net) error {
	for p := 0; p < net.NumPlaces(); p++ {
		if !representable(net.PlaceName(p)) {
			return fmt.Errorf("place name %q cannot be written in LoLA format", net.PlaceName(p))
		}
	}
	for t := 0; t < net.NumTransitions(); t++ {
		if !representable(net.TransitionName(t)) {
			return fmt.Errorf("transition name %q cannot be written in LoLA format", net.TransitionName(t))
		}
	}
	return nil
}

func representable(name string) bool {
	if name == "" {
		return false
	}
	for _, r := range name {
		if isDelimiter(r) {
			return false
		}
	}
	switch strings.ToUpper(name) {
	case "PLACE", "MARKING", "TRANSITION", "CONSUME", "PRODUCE", "SAFE", "STRONG", "WEAK", "FAIR":
		return false
	}
	return true
}
