// Package testutil provides shared test helpers for the conformance suite.
package testutil

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/dmitrycvs/C-DSL/pkg/render"
)

// ScenariosDir is the relative path from the module root to the scenarios.
const ScenariosDir = "testdata/scenarios"

// ScenarioFile is the name of the descriptor inside each scenario directory.
const ScenarioFile = "scenario.yaml"

// Scenario represents a test scenario loaded from a scenario.yaml file.
type Scenario struct {
	// Cmd is the command and the program file, e.g. [run, program.shapes].
	Cmd    []string        `yaml:"cmd"`
	Budget *ScenarioBudget `yaml:"budget,omitempty"`
	Meta   *ScenarioMeta   `yaml:"meta,omitempty"`
	Expect ExpectedResult  `yaml:"expect"`
}

// ScenarioBudget sets execution limits for a scenario.
type ScenarioBudget struct {
	TimeMs        int `yaml:"timeMs,omitempty"`
	MaxIterations int `yaml:"maxIterations,omitempty"`
	MaxCallDepth  int `yaml:"maxCallDepth,omitempty"`
}

// ScenarioMeta holds optional scenario metadata.
type ScenarioMeta struct {
	Description string   `yaml:"description,omitempty"`
	Tags        []string `yaml:"tags,omitempty"`
}

// ExpectedResult describes the expected outcome of running a scenario.
// Unset fields are not checked, except Draws, which is compared whenever
// the scenario runs the program.
type ExpectedResult struct {
	ExitCode       int              `yaml:"exitCode"`
	Stdout         *string          `yaml:"stdout,omitempty"`
	StdoutContains string           `yaml:"stdoutContains,omitempty"`
	Draws          []render.Command `yaml:"draws,omitempty"`
	Error          string           `yaml:"error,omitempty"`
	Warnings       []string         `yaml:"warnings,omitempty"`
	Value          any              `yaml:"value,omitempty"`
}

// LoadScenario loads a scenario from a directory containing scenario.yaml.
func LoadScenario(dir string) (*Scenario, error) {
	data, err := os.ReadFile(filepath.Join(dir, ScenarioFile))
	if err != nil {
		return nil, err
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var s Scenario
	if err := dec.Decode(&s); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%s: empty scenario", dir)
		}
		return nil, fmt.Errorf("%s: %w", dir, err)
	}
	if len(s.Cmd) == 0 {
		return nil, fmt.Errorf("%s: cmd is required", dir)
	}
	return &s, nil
}

// ListScenarios returns all scenario directories under the given root, sorted.
func ListScenarios(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}
	var dirs []string
	for _, e := range entries {
		if e.IsDir() {
			scenarioPath := filepath.Join(root, e.Name(), ScenarioFile)
			if _, err := os.Stat(scenarioPath); err == nil {
				dirs = append(dirs, filepath.Join(root, e.Name()))
			}
		}
	}
	sort.Strings(dirs)
	return dirs, nil
}

// ReadProgramFile reads the program file referenced by the scenario cmd.
func ReadProgramFile(scenarioDir string, cmd []string) (string, string, error) {
	if len(cmd) < 2 {
		return "", "", nil
	}
	filename := cmd[1]
	source, err := os.ReadFile(filepath.Join(scenarioDir, filename))
	if err != nil {
		return "", "", err
	}
	return string(source), filename, nil
}
