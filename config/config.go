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

// Package config loads the analysis settings shared by the bisep tools.
//
// Settings come from a YAML file. Load looks for the file named by the
// BISEP_CONFIG environment variable first and then for ./bisep.yaml. A missing
// file is not an error: DefaultConfig is used instead.
package config

import (
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jazzpetri/bisep/clock"
	bctx "github.com/jazzpetri/bisep/context"
	"github.com/jazzpetri/bisep/lp"
)

const (
	// EnvConfigPath names the environment variable holding a config path.
	EnvConfigPath = "BISEP_CONFIG"

	// ConfigFileName is looked up in the working directory.
	ConfigFileName = "bisep.yaml"
)

// Config is the root configuration.
type Config struct {
	Workers            int         `yaml:"workers"`
	VerifyPrecondition bool        `yaml:"verify_precondition"`
	LP                 LPConfig    `yaml:"lp"`
	Log                LogConfig   `yaml:"log"`
	Store              StoreConfig `yaml:"store"`
	Check              CheckConfig `yaml:"check"`
}

// LPConfig selects the oracle backend and bounds and retries its calls.
type LPConfig struct {
	// Backend is "auto", "simplex" or "z3".
	Backend string `yaml:"backend"`

	// MaxCalls caps oracle calls per run. 0 means unlimited.
	MaxCalls   int64    `yaml:"max_calls"`
	Retries    int      `yaml:"retries"`
	Backoff    Duration `yaml:"backoff"`
	Multiplier float64  `yaml:"multiplier"`
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// StoreConfig locates the separator catalogue. An empty path disables it.
type StoreConfig struct {
	Path string `yaml:"path"`
}

// CheckConfig controls separator checking.
type CheckConfig struct {
	// Method is "direct", "syndrome" or "both".
	Method  string   `yaml:"method"`
	Timeout Duration `yaml:"timeout"`
}

// Duration wraps time.Duration for YAML parsing.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	if s == "" {
		*d = 0
		return nil
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Duration returns the time.Duration value.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// DefaultConfig returns the configuration used when no file is found.
func DefaultConfig() *Config {
	return &Config{
		Workers: runtime.GOMAXPROCS(0),
		LP: LPConfig{
			Backend:    string(lp.BackendAuto),
			Retries:    2,
			Backoff:    Duration(10 * time.Millisecond),
			Multiplier: 2,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Check: CheckConfig{
			Method: "both",
		},
	}
}

// FindConfigPath returns the first existing config file, or "".
func FindConfigPath() string {
	if p := os.Getenv(EnvConfigPath); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	if _, err := os.Stat(ConfigFileName); err == nil {
		return ConfigFileName
	}
	return ""
}

// Load finds and loads the config file. It returns the path used, which is
// empty when defaults were applied.
func Load() (*Config, string, error) {
	path := FindConfigPath()
	if path == "" {
		return DefaultConfig(), "", nil
	}
	cfg, err := LoadFromPath(path)
	if err != nil {
		return nil, path, err
	}
	return cfg, path, nil
}

// LoadFromPath loads and validates the config at path.
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	def := DefaultConfig()
	if c.Workers <= 0 {
		c.Workers = def.Workers
	}
	if c.LP.Backend == "" {
		c.LP.Backend = def.LP.Backend
	}
	if c.LP.Multiplier == 0 {
		c.LP.Multiplier = def.LP.Multiplier
	}
	if c.Log.Level == "" {
		c.Log.Level = def.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = def.Log.Format
	}
	if c.Check.Method == "" {
		c.Check.Method = def.Check.Method
	}
	c.LP.Backend = strings.ToLower(c.LP.Backend)
	c.Log.Level = strings.ToLower(c.Log.Level)
	c.Log.Format = strings.ToLower(c.Log.Format)
	c.Check.Method = strings.ToLower(c.Check.Method)
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if _, err := lp.ParseBackend(c.LP.Backend); err != nil {
		return fmt.Errorf("lp.backend: %w", err)
	}
	if c.LP.MaxCalls < 0 {
		return fmt.Errorf("lp.max_calls must be non-negative, got %d", c.LP.MaxCalls)
	}
	if c.LP.Retries < 0 {
		return fmt.Errorf("lp.retries must be non-negative, got %d", c.LP.Retries)
	}
	if c.LP.Backoff < 0 {
		return fmt.Errorf("lp.backoff must be non-negative")
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log.level %q", c.Log.Level)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log.format %q", c.Log.Format)
	}
	switch c.Check.Method {
	case "direct", "syndrome", "both":
	default:
		return fmt.Errorf("unknown check.method %q", c.Check.Method)
	}
	if c.Check.Timeout < 0 {
		return fmt.Errorf("check.timeout must be non-negative")
	}
	return nil
}

// Save writes the config to path as YAML.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// RetryPolicy converts the LP settings into an lp.RetryPolicy.
func (c *Config) RetryPolicy(clk clock.Clock, logger bctx.Logger, metrics bctx.MetricsCollector) lp.RetryPolicy {
	return lp.RetryPolicy{
		MaxAttempts: c.LP.Retries + 1,
		Backoff:     c.LP.Backoff.Duration(),
		Multiplier:  c.LP.Multiplier,
		Clock:       clk,
		Logger:      logger,
		Metrics:     metrics,
	}
}

// Oracle builds the configured backend and wraps it with metrics, the
// retry policy and the call budget. The budget also reports the number of
// calls made.
func (c *Config) Oracle(clk clock.Clock, logger bctx.Logger, metrics bctx.MetricsCollector) (*lp.BudgetOracle, error) {
	b, err := lp.ParseBackend(c.LP.Backend)
	if err != nil {
		return nil, err
	}
	base, err := lp.NewOracle(b)
	if err != nil {
		return nil, err
	}
	logger.Debug("lp backend selected", map[string]interface{}{
		"backend": string(b),
		"oracle":  fmt.Sprintf("%T", base),
	})
	return c.Wrap(lp.WithMetrics(base, metrics), clk, logger, metrics), nil
}

// Wrap adds the configured retry policy and call budget to o.
func (c *Config) Wrap(o lp.Oracle, clk clock.Clock, logger bctx.Logger, metrics bctx.MetricsCollector) *lp.BudgetOracle {
	if c.LP.Retries > 0 {
		o = lp.WithRetry(o, c.RetryPolicy(clk, logger, metrics))
	}
	return lp.WithBudget(o, c.LP.MaxCalls)
}
