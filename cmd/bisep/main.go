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

// Command bisep decides reachability in continuous Petri nets and produces
// checkable certificates of non-reachability.
//
// Usage:
//
//	bisep [global flags] <command> [flags] <args>
//
// Nets are read from LoLA files: for a base path b, the net is b.lola and
// the target marking b.formula.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
)

// Exit codes.
const (
	exitOK      = 0
	exitError   = 1
	exitUsage   = 2
	exitInvalid = 3
)

var (
	errUsage   = errors.New("usage error")
	errInvalid = errors.New("separator rejected")
)

type command struct {
	name    string
	args    string
	summary string
	run     func(ctx context.Context, a *app, args []string) error
}

var commands []command

func init() {
	commands = []command{
		{"reach", "<base>", "decide whether the target marking is reachable", runReach},
		{"cover", "<base>", "decide whether the target marking is coverable", runCover},
		{"separate", "[flags] <base>", "generate and check a separator for an unreachable target", runSeparate},
		{"check", "[flags] <base> <separator>", "check a stored separator against a net", runCheck},
		{"badcase", "[-n size] <base>", "write a bad-case net and its target", runBadCase},
		{"catalog", "list|show|rm [args]", "inspect the separator catalogue", runCatalog},
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("bisep", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var g globalFlags
	g.register(fs)
	fs.Usage = func() { usage(fs, stderr) }
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}
	if fs.NArg() == 0 {
		usage(fs, stderr)
		return exitUsage
	}

	name := fs.Arg(0)
	var cmd *command
	for i := range commands {
		if commands[i].name == name {
			cmd = &commands[i]
		}
	}
	if cmd == nil {
		fmt.Fprintf(stderr, "bisep: unknown command %q\n", name)
		usage(fs, stderr)
		return exitUsage
	}

	a, err := newApp(g, stdout, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "bisep: %v\n", err)
		return exitError
	}
	defer a.close()

	err = cmd.run(ctx, a, fs.Args()[1:])
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, flag.ErrHelp):
		return exitOK
	case errors.Is(err, errUsage):
		fmt.Fprintf(stderr, "bisep %s: %v\nusage: bisep %s %s\n", cmd.name, err, cmd.name, cmd.args)
		return exitUsage
	case errors.Is(err, errInvalid):
		fmt.Fprintf(stderr, "bisep %s: %v\n", cmd.name, err)
		return exitInvalid
	default:
		a.logger.Error("command failed", map[string]interface{}{"command": cmd.name, "error": err.Error()})
		fmt.Fprintf(stderr, "bisep %s: %v\n", cmd.name, err)
		return exitError
	}
}

func usage(fs *flag.FlagSet, w io.Writer) {
	fmt.Fprintln(w, "usage: bisep [global flags] <command> [flags] <args>")
	fmt.Fprintln(w, "\ncommands:")
	for _, c := range commands {
		fmt.Fprintf(w, "  %-9s %s\n", c.name, c.summary)
	}
	fmt.Fprintln(w, "\nglobal flags:")
	fs.PrintDefaults()
}
