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
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/samber/lo"

	"github.com/jazzpetri/bisep/petri"
	"github.com/jazzpetri/bisep/store"
	"github.com/jazzpetri/bisep/verification"
)

// printer writes "label: value" lines and keeps the first write error.
type printer struct {
	w   io.Writer
	err error
}

func newPrinter(w io.Writer) *printer {
	return &printer{w: w}
}

func (p *printer) field(label, value string) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, "%-15s %s\n", label+":", value)
}

func (p *printer) count(label string, n int64) {
	p.field(label, humanize.Comma(n))
}

func (p *printer) net(n *petri.Net) {
	p.field("net", fmt.Sprintf("%s (%s places, %s transitions)",
		n.Name, humanize.Comma(int64(n.NumPlaces())), humanize.Comma(int64(n.NumTransitions()))))
}

func (p *printer) report(r verification.Report) {
	status := "valid"
	if !r.Valid {
		status = "invalid: " + r.Reason
	}
	p.field(string(r.Method), fmt.Sprintf("%s (%s atomic checks, %s)",
		status, humanize.Comma(r.AtomicChecks), formatDuration(r.Elapsed)))
}

func (p *printer) file(label, path string) {
	info, err := os.Stat(path)
	if err != nil {
		p.field(label, path)
		return
	}
	p.field(label, fmt.Sprintf("%s (%s)", path, humanize.Bytes(uint64(info.Size()))))
}

func (p *printer) records(rs []*store.Record, now time.Time) {
	if p.err != nil {
		return
	}
	tw := tabwriter.NewWriter(p.w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNET\tSIZE\tVALID\tCREATED")
	for _, r := range rs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%t\t%s\n",
			r.ID, r.Net, r.Formula.Size(), r.Valid, humanize.RelTime(r.CreatedAt, now, "ago", "from now"))
	}
	if p.err = tw.Flush(); p.err != nil {
		return
	}
	valid := lo.CountBy(rs, func(r *store.Record) bool { return r.Valid })
	p.field("total", fmt.Sprintf("%s separators, %s valid", humanize.Comma(int64(len(rs))), humanize.Comma(int64(valid))))
}

func (p *printer) record(r *store.Record) {
	p.field("id", r.ID)
	p.field("net", r.Net)
	p.field("created", r.CreatedAt.Format(time.RFC3339))
	p.field("valid", fmt.Sprintf("%t", r.Valid))
	p.field("separator", r.Formula.Size())
	p.field("source", fmt.Sprint([]float64(r.Source)))
	p.field("target", fmt.Sprint([]float64(r.Target)))
	p.field("formula", r.Formula.String())
}

func formatDuration(d time.Duration) string {
	return d.Round(time.Microsecond).String()
}
