package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/paddock/internal/contract"
)

// Scenario defines a simulation test.
type Scenario struct {
	// Name uniquely identifies this scenario. It names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario checks.
	Description string `yaml:"description"`

	// World is the CUE world file or directory to start from.
	// Relative paths are resolved against the scenario file location.
	World string `yaml:"world"`

	// Days is the number of days to simulate.
	Days int `yaml:"days"`

	// RunID is the fixed run id of the game. Defaults to "scenario-" + Name.
	RunID string `yaml:"run_id,omitempty"`

	// Decisions are human decisions keyed by day offset.
	Decisions []DayDecisions `yaml:"decisions,omitempty"`

	// Assertions check the saved game after the last day.
	Assertions []Assertion `yaml:"assertions"`
}

// DayDecisions queues human decisions before a given day is simulated.
type DayDecisions struct {
	// Day is the zero-based offset of the day the decisions arrive on.
	Day int `yaml:"day"`

	contract.Intake `yaml:",inline"`
}

// Assertion checks rows of the saved game.
type Assertion struct {
	// Type specifies the assertion type:
	// - "final_state": exactly one row matches Where and has Expect values
	// - "row_count": exactly Count rows match Where
	// - "min_rows": at least Count rows match Where
	Type string `yaml:"type"`

	// Table is the save game table name.
	Table string `yaml:"table"`

	// Where specifies row filters. All fields must match exactly.
	Where map[string]interface{} `yaml:"where,omitempty"`

	// Expect contains expected column values (used by final_state).
	// Subset match - only specified columns are validated.
	Expect map[string]interface{} `yaml:"expect,omitempty"`

	// Count is the expected number of rows (used by row_count and min_rows).
	Count int `yaml:"count,omitempty"`
}

// Assertion type constants.
const (
	AssertFinalState = "final_state"
	AssertRowCount   = "row_count"
	AssertMinRows    = "min_rows"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict field validation catches typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if scenario.World != "" && !filepath.IsAbs(scenario.World) {
		scenario.World = filepath.Join(filepath.Dir(path), scenario.World)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if s.World == "" {
		return fmt.Errorf("world is required")
	}
	if _, err := os.Stat(s.World); os.IsNotExist(err) {
		return fmt.Errorf("world not found: %s", s.World)
	}

	if s.Days < 1 {
		return fmt.Errorf("days must be at least 1, got %d", s.Days)
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	last := -1
	for i, d := range s.Decisions {
		if d.Day < 0 || d.Day >= s.Days {
			return fmt.Errorf("decisions[%d]: day %d outside 0..%d", i, d.Day, s.Days-1)
		}
		if d.Day <= last {
			return fmt.Errorf("decisions[%d]: days must be strictly increasing", i)
		}
		last = d.Day
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}
	if a.Table == "" {
		return fmt.Errorf("assertions[%d]: table is required", index)
	}

	switch a.Type {
	case AssertFinalState:
		if len(a.Expect) == 0 {
			return fmt.Errorf("assertions[%d]: expect is required for final_state", index)
		}
	case AssertRowCount, AssertMinRows:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for %s", index, a.Type)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
