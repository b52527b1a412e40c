// Package config loads the shapes CLI configuration.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dmitrycvs/C-DSL/pkg/diagnostics"
	"github.com/dmitrycvs/C-DSL/pkg/evaluator"
	"github.com/dmitrycvs/C-DSL/pkg/render"
)

// File names searched by Load.
const (
	ProjectFile = ".shapes.yaml"
	UserDir     = ".shapes"
	UserFile    = "config.yaml"
)

// Config is the decoded configuration. Fields missing from the file keep
// their defaults.
type Config struct {
	Budget BudgetConfig `yaml:"budget"`
	Output OutputConfig `yaml:"output"`
	Canvas CanvasConfig `yaml:"canvas"`
	Log    LogConfig    `yaml:"log"`

	// Path is the file the configuration was read from, or "" for defaults.
	Path string `yaml:"-"`
}

type BudgetConfig struct {
	MaxIterations int64 `yaml:"maxIterations"`
	TimeMs        int64 `yaml:"timeMs"`
	MaxCallDepth  int   `yaml:"maxCallDepth"`
}

type OutputConfig struct {
	Format string `yaml:"format"` // text, json or svg
	Path   string `yaml:"path"`
	Pretty *bool  `yaml:"pretty"` // nil lets the CLI decide from the terminal
}

type CanvasConfig struct {
	Width   float64 `yaml:"width"`
	Height  float64 `yaml:"height"`
	Padding float64 `yaml:"padding"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// Error reports an unreadable or invalid configuration file.
type Error struct {
	Path string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("config %s: %v", e.Path, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Diagnostic converts the error for display.
func (e *Error) Diagnostic() diagnostics.Diagnostic {
	return diagnostics.MakeDiag(diagnostics.EConfig, e.Error(), nil, "check the file against the documented keys")
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Budget: BudgetConfig{MaxCallDepth: evaluator.DefaultMaxCallDepth},
		Output: OutputConfig{Format: "text"},
		Canvas: CanvasConfig{
			Width:   render.DefaultCanvas.Width,
			Height:  render.DefaultCanvas.Height,
			Padding: render.DefaultCanvas.Padding,
		},
		Log: LogConfig{Level: "warn"},
	}
}

// Load resolves the configuration. Precedence: explicit path → project
// (.shapes.yaml in projectDir) → user (~/.shapes/config.yaml) → defaults.
// An explicit path must exist; the other two are optional.
func Load(explicit, projectDir string) (*Config, error) {
	if explicit != "" {
		return LoadFile(explicit)
	}

	candidates := []string{filepath.Join(projectDir, ProjectFile)}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, UserDir, UserFile))
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		return LoadFile(path)
	}
	return Default(), nil
}

// LoadFile decodes a single YAML file on top of the defaults. Unknown keys
// are rejected.
func LoadFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &Error{Path: path, Err: err}
	}
	defer f.Close()

	cfg, err := Decode(f)
	if err != nil {
		return nil, &Error{Path: path, Err: err}
	}
	cfg.Path = path
	return cfg, nil
}

// Decode reads YAML from r on top of the defaults and validates the result.
// An empty document yields the defaults.
func Decode(r io.Reader) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges and enumerations.
func (c *Config) Validate() error {
	var issues []string
	if c.Budget.MaxIterations < 0 {
		issues = append(issues, "budget.maxIterations must not be negative")
	}
	if c.Budget.TimeMs < 0 {
		issues = append(issues, "budget.timeMs must not be negative")
	}
	if c.Budget.MaxCallDepth < 0 {
		issues = append(issues, "budget.maxCallDepth must not be negative")
	}
	switch c.Output.Format {
	case "text", "json", "svg":
	default:
		issues = append(issues, fmt.Sprintf("output.format must be text, json or svg, got %q", c.Output.Format))
	}
	if c.Canvas.Width < 0 || c.Canvas.Height < 0 || c.Canvas.Padding < 0 {
		issues = append(issues, "canvas dimensions must not be negative")
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		issues = append(issues, err.Error())
	}
	if len(issues) > 0 {
		return errors.New(strings.Join(issues, "; "))
	}
	return nil
}

// ParseLevel maps a level name to a slog level.
func ParseLevel(name string) (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(name)); err != nil {
		return 0, fmt.Errorf("log.level must be debug, info, warn or error, got %q", name)
	}
	return lvl, nil
}

// ExecBudget returns the evaluator limits.
func (c *Config) ExecBudget() evaluator.Budget {
	return evaluator.Budget{
		TimeMs:        c.Budget.TimeMs,
		MaxIterations: c.Budget.MaxIterations,
		MaxCallDepth:  c.Budget.MaxCallDepth,
	}
}

// RenderCanvas returns the SVG canvas.
func (c *Config) RenderCanvas() render.Canvas {
	return render.Canvas{Width: c.Canvas.Width, Height: c.Canvas.Height, Padding: c.Canvas.Padding}
}
