package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/roach88/hashfold/internal/merge"
)

// Scenario is one merge run and its expected classification.
type Scenario struct {
	// Name identifies the scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what the scenario covers.
	Description string `yaml:"description"`

	// Mode is the merge mode name: copy, move or analyze.
	Mode string `yaml:"mode"`

	// Verbose adds the run header to the plan.
	Verbose bool `yaml:"verbose,omitempty"`

	// Source and Dest map relative paths to file contents.
	Source map[string]string `yaml:"source"`
	Dest   map[string]string `yaml:"dest,omitempty"`

	// Locked lists source paths held by another process.
	Locked []string `yaml:"locked,omitempty"`

	// Expect is checked after the run.
	Expect Expectation `yaml:"expect"`
}

// Expectation describes the expected report.
type Expectation struct {
	// Outcomes maps source paths to outcome names.
	Outcomes map[string]string `yaml:"outcomes,omitempty"`

	// Counts maps outcome names to file counts.
	Counts map[string]int `yaml:"counts,omitempty"`

	// Skipped lists source paths that could not be classified.
	Skipped []string `yaml:"skipped,omitempty"`
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Parse YAML with strict field validation (catches typos like "outcome:" vs "outcomes:")
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// LoadScenarios loads every *.yaml file in dir, sorted by file name.
func LoadScenarios(dir string) ([]*Scenario, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)

	scenarios := make([]*Scenario, 0, len(paths))
	for _, p := range paths {
		s, err := LoadScenario(p)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(p), err)
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Source) == 0 {
		return fmt.Errorf("source tree is required and must be non-empty")
	}
	if !merge.ParseMode(s.Mode).Valid() {
		return fmt.Errorf("mode %q must be copy, move or analyze", s.Mode)
	}

	known := map[string]bool{}
	for _, o := range merge.Outcomes {
		known[o.String()] = true
	}
	for path, name := range s.Expect.Outcomes {
		if !known[name] {
			return fmt.Errorf("expect.outcomes[%s]: unknown outcome %q", path, name)
		}
		if _, ok := s.Source[path]; !ok {
			return fmt.Errorf("expect.outcomes[%s]: not in source tree", path)
		}
	}
	for name := range s.Expect.Counts {
		if !known[name] {
			return fmt.Errorf("expect.counts: unknown outcome %q", name)
		}
	}
	for _, path := range s.Locked {
		if _, ok := s.Source[path]; !ok {
			return fmt.Errorf("locked %s: not in source tree", path)
		}
	}
	return nil
}
