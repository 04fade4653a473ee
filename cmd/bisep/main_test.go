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
	"bytes"
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/jazzpetri/bisep/config"
	"github.com/jazzpetri/bisep/store"
)

// bisep runs the command line in-process and returns the exit code and
// both outputs.
func bisep(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

// setup writes a config with a catalogue and a bad-case net of size 2 into
// a temporary directory and returns the config path and the net base path.
func setup(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.Workers = 2
	cfg.Log.Level = "error"
	cfg.Store.Path = filepath.Join(dir, "catalog.db")
	cfgPath := filepath.Join(dir, "bisep.yaml")
	if err := cfg.Save(cfgPath); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	base := filepath.Join(dir, "bad-case-2")
	code, _, stderr := bisep(t, "-config", cfgPath, "badcase", "-n", "2", base)
	if code != exitOK {
		t.Fatalf("badcase exited %d: %s", code, stderr)
	}
	return cfgPath, base
}

func TestRun_Usage(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want int
	}{
		{"no command", nil, exitUsage},
		{"unknown command", []string{"frobnicate"}, exitUsage},
		{"bad global flag", []string{"-bogus", "reach"}, exitUsage},
		{"help", []string{"-h"}, exitOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(config.EnvConfigPath, filepath.Join(t.TempDir(), "none.yaml"))
			t.Chdir(t.TempDir())
			if code, _, _ := bisep(t, tt.args...); code != tt.want {
				t.Errorf("exit code = %d, want %d", code, tt.want)
			}
		})
	}
}

func TestRun_CommandUsage(t *testing.T) {
	cfgPath, base := setup(t)

	tests := []struct {
		name string
		args []string
	}{
		{"reach without net", []string{"reach"}},
		{"check without separator", []string{"check", base}},
		{"separate bad method", []string{"separate", "-method", "guess", base}},
		{"badcase bad size", []string{"badcase", "-n", "0", base}},
		{"catalog without subcommand", []string{"catalog"}},
		{"catalog unknown subcommand", []string{"catalog", "dump"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"-config", cfgPath}, tt.args...)
			code, _, stderr := bisep(t, args...)
			if code != exitUsage {
				t.Errorf("exit code = %d, want %d (stderr: %s)", code, exitUsage, stderr)
			}
		})
	}
}

func TestRun_BadCaseFiles(t *testing.T) {
	_, base := setup(t)

	net, err := os.ReadFile(base + ".lola")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(string(net), "PLACE\n") {
		t.Errorf("net file does not start with PLACE:\n%s", net)
	}
	formula, err := os.ReadFile(base + ".formula")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(string(formula), "EF (") {
		t.Errorf("formula file = %q", formula)
	}
}

func TestRun_ReachAndCover(t *testing.T) {
	cfgPath, base := setup(t)

	code, out, stderr := bisep(t, "-config", cfgPath, "reach", base)
	if code != exitOK {
		t.Fatalf("reach exited %d: %s", code, stderr)
	}
	if !strings.Contains(out, "reachable:") || !strings.Contains(out, "false") {
		t.Errorf("reach output:\n%s", out)
	}
	if !strings.Contains(out, "bad-case-2 (6 places, 7 transitions)") {
		t.Errorf("reach output does not describe the net:\n%s", out)
	}

	code, out, stderr = bisep(t, "-config", cfgPath, "cover", base)
	if code != exitOK {
		t.Fatalf("cover exited %d: %s", code, stderr)
	}
	if !strings.Contains(out, "coverable:") || !strings.Contains(out, "true") {
		t.Errorf("cover output:\n%s", out)
	}
}

func TestRun_SeparateCheckAndCatalog(t *testing.T) {
	cfgPath, base := setup(t)
	dir := filepath.Dir(base)
	sepPath := filepath.Join(dir, "sep.yaml")
	dotPath := filepath.Join(dir, "net.dot")

	code, out, stderr := bisep(t, "-config", cfgPath, "separate",
		"-o", sepPath, "-dot", dotPath, "-cross-check", base)
	if code != exitOK {
		t.Fatalf("separate exited %d:\n%s\n%s", code, out, stderr)
	}
	for _, want := range []string{"separator:", "direct:", "syndrome:", "siphon and trap agree", "catalog id:"} {
		if !strings.Contains(out, want) {
			t.Errorf("separate output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "invalid") {
		t.Errorf("separator rejected:\n%s", out)
	}

	f, err := store.LoadFile(sepPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.Syndrome == nil {
		t.Error("saved separator has no syndrome")
	}
	dot, err := os.ReadFile(dotPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(string(dot), "digraph") {
		t.Errorf("DOT output does not contain a digraph")
	}

	for _, method := range []string{"direct", "syndrome", "both"} {
		code, out, stderr = bisep(t, "-config", cfgPath, "check", "-method", method, base, sepPath)
		if code != exitOK {
			t.Errorf("check -method %s exited %d:\n%s\n%s", method, code, out, stderr)
		}
	}

	code, out, stderr = bisep(t, "-config", cfgPath, "catalog", "list")
	if code != exitOK {
		t.Fatalf("catalog list exited %d: %s", code, stderr)
	}
	if !strings.Contains(out, "1 separators, 1 valid") {
		t.Errorf("catalog list output:\n%s", out)
	}
	id := regexp.MustCompile(`[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}`).FindString(out)
	if id == "" {
		t.Fatalf("no record id in catalog listing:\n%s", out)
	}

	code, out, stderr = bisep(t, "-config", cfgPath, "catalog", "show", id)
	if code != exitOK {
		t.Fatalf("catalog show exited %d: %s", code, stderr)
	}
	if !strings.Contains(out, "bad-case-2") {
		t.Errorf("catalog show output:\n%s", out)
	}

	if code, _, stderr = bisep(t, "-config", cfgPath, "catalog", "rm", id); code != exitOK {
		t.Fatalf("catalog rm exited %d: %s", code, stderr)
	}
	if code, _, _ = bisep(t, "-config", cfgPath, "catalog", "show", id); code != exitError {
		t.Errorf("catalog show after rm exited %d, want %d", code, exitError)
	}
}

func TestRun_CheckRejectsForeignSeparator(t *testing.T) {
	cfgPath, base := setup(t)
	dir := filepath.Dir(base)

	// a separator for the size-1 family does not fit the size-2 net
	small := filepath.Join(dir, "bad-case-1")
	if code, _, stderr := bisep(t, "-config", cfgPath, "badcase", "-n", "1", small); code != exitOK {
		t.Fatalf("badcase exited %d: %s", code, stderr)
	}
	sepPath := filepath.Join(dir, "small.json")
	if code, out, stderr := bisep(t, "-config", cfgPath, "separate", "-no-check", "-o", sepPath, small); code != exitOK {
		t.Fatalf("separate exited %d:\n%s\n%s", code, out, stderr)
	}

	code, out, _ := bisep(t, "-config", cfgPath, "check", base, sepPath)
	if code != exitInvalid {
		t.Errorf("check exited %d, want %d:\n%s", code, exitInvalid, out)
	}
}

func TestRun_BudgetExhausted(t *testing.T) {
	cfgPath, base := setup(t)
	code, _, stderr := bisep(t, "-config", cfgPath, "-max-lp-calls", "1", "separate", base)
	if code != exitError {
		t.Errorf("exit code = %d, want %d", code, exitError)
	}
	if !strings.Contains(stderr, "budget") {
		t.Errorf("stderr does not mention the budget: %s", stderr)
	}
}

func TestRun_MissingConfig(t *testing.T) {
	code, _, stderr := bisep(t, "-config", filepath.Join(t.TempDir(), "absent.yaml"), "reach", "x")
	if code != exitError {
		t.Errorf("exit code = %d, want %d", code, exitError)
	}
	if !strings.Contains(stderr, "failed to read config") {
		t.Errorf("stderr = %s", stderr)
	}
}
