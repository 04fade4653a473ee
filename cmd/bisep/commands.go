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
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/jazzpetri/bisep/clock"
	"github.com/jazzpetri/bisep/lola"
	"github.com/jazzpetri/bisep/petri"
	"github.com/jazzpetri/bisep/reachability"
	"github.com/jazzpetri/bisep/separator"
	"github.com/jazzpetri/bisep/store"
	"github.com/jazzpetri/bisep/verification"
)

func newFlagSet(a *app, name string) *flag.FlagSet {
	fs := flag.NewFlagSet("bisep "+name, flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	return fs
}

// parseArgs parses flags and checks the number of positional arguments.
func parseArgs(fs *flag.FlagSet, args []string, want int) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return err
		}
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	if fs.NArg() != want {
		return fmt.Errorf("%w: expected %d argument(s), got %d", errUsage, want, fs.NArg())
	}
	return nil
}

func runReach(ctx context.Context, a *app, args []string) error {
	return decide(ctx, a, "reach", args, false)
}

func runCover(ctx context.Context, a *app, args []string) error {
	return decide(ctx, a, "cover", args, true)
}

func decide(ctx context.Context, a *app, name string, args []string, cover bool) error {
	fs := newFlagSet(a, name)
	if err := parseArgs(fs, args, 1); err != nil {
		return err
	}
	net, target, err := lola.Load(fs.Arg(0))
	if err != nil {
		return err
	}

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()
	ac := a.analysis(ctx)
	oracle, err := a.oracle()
	if err != nil {
		return err
	}
	analyzer := reachability.NewAnalyzer(net, oracle)

	start := a.clock.Now()
	var answer bool
	if cover {
		answer, err = analyzer.IsCoverable(ac, target)
	} else {
		answer, err = analyzer.IsReachable(ac, target)
	}
	if err != nil {
		return err
	}
	elapsed := clock.Since(a.clock, start)

	verb := "reachable"
	if cover {
		verb = "coverable"
	}
	p := newPrinter(a.stdout)
	p.net(net)
	p.field(verb, fmt.Sprintf("%t", answer))
	p.count("lp checks", oracle.Calls())
	p.field("time", formatDuration(elapsed))
	return p.err
}

func runSeparate(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet(a, "separate")
	out := fs.String("o", "", "write the separator to this .json, .yaml or .yml file")
	dot := fs.String("dot", "", "write the net in Graphviz DOT format, with siphon and trap highlighted")
	method := fs.String("method", "", "check method: direct, syndrome or both (default from config)")
	noCheck := fs.Bool("no-check", false, "skip checking and cataloguing the generated separator")
	cross := fs.Bool("cross-check", false, "confirm siphon and trap computations with a SAT solver")
	if err := parseArgs(fs, args, 1); err != nil {
		return err
	}
	methods, err := a.methods(*method)
	if err != nil {
		return err
	}
	net, target, err := lola.Load(fs.Arg(0))
	if err != nil {
		return err
	}
	msrc := net.InitialMarking()

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()
	ac := a.analysis(ctx)
	p := newPrinter(a.stdout)
	p.net(net)

	if *cross {
		if err := crossCheck(net, msrc, target); err != nil {
			return err
		}
		p.field("cross-check", "siphon and trap agree")
	}
	if *dot != "" {
		if err := writeDOT(*dot, net, msrc, target); err != nil {
			return err
		}
		p.field("dot", *dot)
	}

	oracle, err := a.oracle()
	if err != nil {
		return err
	}
	gen := separator.NewGenerator(net, oracle, separator.Options{
		Workers:            a.cfg.Workers,
		VerifyPrecondition: a.cfg.VerifyPrecondition,
	})
	start := a.clock.Now()
	f, err := gen.Generate(ac, net.AllTransitions(), msrc, target)
	if err != nil {
		if errors.Is(err, separator.ErrNotSeparable) {
			p.field("separator", "none, the target is reachable")
			return errors.Join(p.err, err)
		}
		return err
	}
	p.field("separator", f.Size())
	p.count("atoms", int64(f.NumAtoms()))
	p.count("syndrome atoms", syndromeSize(f))
	p.count("lp checks", oracle.Calls())
	p.field("generation", formatDuration(clock.Since(a.clock, start)))

	valid := true
	if !*noCheck {
		checker := verification.NewChecker(net, verification.Options{Workers: a.cfg.Workers})
		reports, err := runChecks(ac, checker, methods, f, msrc, target)
		if err != nil {
			return err
		}
		for _, r := range reports {
			p.report(r)
			valid = valid && r.Valid
		}
	}

	if *out != "" {
		if err := store.SaveFile(*out, f); err != nil {
			return err
		}
		p.file("saved", *out)
	}
	if !*noCheck {
		if err := a.record(ctx, p, net, msrc, target, f, valid); err != nil {
			return err
		}
	}
	if p.err != nil {
		return p.err
	}
	if !valid {
		return errInvalid
	}
	return nil
}

func runCheck(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet(a, "check")
	method := fs.String("method", "", "check method: direct, syndrome or both (default from config)")
	if err := parseArgs(fs, args, 2); err != nil {
		return err
	}
	methods, err := a.methods(*method)
	if err != nil {
		return err
	}
	net, target, err := lola.Load(fs.Arg(0))
	if err != nil {
		return err
	}
	f, err := store.LoadFile(fs.Arg(1))
	if err != nil {
		return err
	}
	if f.Net != "" && f.Net != net.Name {
		a.logger.Warn("separator was generated for another net", map[string]interface{}{
			"separator_net": f.Net,
			"net":           net.Name,
		})
	}

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()
	checker := verification.NewChecker(net, verification.Options{Workers: a.cfg.Workers})
	reports, err := runChecks(a.analysis(ctx), checker, methods, f, net.InitialMarking(), target)
	if err != nil {
		return err
	}

	p := newPrinter(a.stdout)
	p.net(net)
	p.field("separator", f.Size())
	valid := true
	for _, r := range reports {
		p.report(r)
		valid = valid && r.Valid
	}
	if p.err != nil {
		return p.err
	}
	if !valid {
		return errInvalid
	}
	return nil
}

func runBadCase(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet(a, "badcase")
	n := fs.Int("n", 2, "size of the net")
	if err := parseArgs(fs, args, 1); err != nil {
		return err
	}
	net, target, err := lola.BadCase(*n)
	if err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	base := fs.Arg(0)

	p := newPrinter(a.stdout)
	if err := writeWith(base+lola.NetExt, func(w *os.File) error { return lola.WriteNet(w, net) }); err != nil {
		return err
	}
	p.file("net", base+lola.NetExt)
	if err := writeWith(base+lola.FormulaExt, func(w *os.File) error { return lola.WriteFormula(w, net, target) }); err != nil {
		return err
	}
	p.file("formula", base+lola.FormulaExt)
	return p.err
}

func runCatalog(ctx context.Context, a *app, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: missing catalog subcommand", errUsage)
	}
	cat, err := a.catalog()
	if err != nil {
		return err
	}
	if cat == nil {
		return fmt.Errorf("no catalog configured: set store.path in the config file")
	}
	defer cat.Close()

	fs := newFlagSet(a, "catalog "+args[0])
	p := newPrinter(a.stdout)
	switch args[0] {
	case "list":
		netName := fs.String("net", "", "only list separators for this net")
		if err := parseArgs(fs, args[1:], 0); err != nil {
			return err
		}
		records, err := cat.List(ctx, *netName)
		if err != nil {
			return err
		}
		p.records(records, a.clock.Now())
	case "show":
		if err := parseArgs(fs, args[1:], 1); err != nil {
			return err
		}
		r, err := cat.Get(ctx, fs.Arg(0))
		if err != nil {
			return err
		}
		p.record(r)
	case "rm":
		if err := parseArgs(fs, args[1:], 1); err != nil {
			return err
		}
		if err := cat.Delete(ctx, fs.Arg(0)); err != nil {
			return err
		}
		p.field("deleted", fs.Arg(0))
	default:
		return fmt.Errorf("%w: unknown catalog subcommand %q", errUsage, args[0])
	}
	return p.err
}

// methods resolves the check methods from a flag value, falling back to the
// config.
func (a *app) methods(flagValue string) ([]verification.Method, error) {
	v := flagValue
	if v == "" {
		v = a.cfg.Check.Method
	}
	switch v {
	case "direct":
		return []verification.Method{verification.Direct}, nil
	case "syndrome":
		return []verification.Method{verification.Syndrome}, nil
	case "both":
		return []verification.Method{verification.Direct, verification.Syndrome}, nil
	default:
		return nil, fmt.Errorf("%w: unknown method %q", errUsage, v)
	}
}

// record stores the separator in the catalogue, if one is configured.
func (a *app) record(ctx context.Context, p *printer, net *petri.Net, msrc, mtgt petri.Marking, f *separator.Formula, valid bool) error {
	cat, err := a.catalog()
	if err != nil || cat == nil {
		return err
	}
	defer cat.Close()
	id, err := cat.Put(ctx, store.Record{
		Net:     net.Name,
		Source:  msrc,
		Target:  mtgt,
		Formula: f,
		Valid:   valid,
	})
	if err != nil {
		return err
	}
	a.logger.Info("separator stored", map[string]interface{}{"id": id, "net": net.Name})
	p.field("catalog id", id)
	return nil
}

func writeWith(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
