package harness

import (
	"context"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/paddock/internal/entity"
	"github.com/roach88/paddock/internal/ir"
)

// Summary is the part of a result compared against golden files. The
// digest is left out so unrelated schema changes do not churn every file.
type Summary struct {
	ScenarioName string            `json:"scenario_name"`
	Date         string            `json:"date"`
	Races        int               `json:"races"`
	Standings    []entity.Standing `json:"standings"`
}

// Summarize builds the golden summary of a result.
func Summarize(scenarioName string, result *Result) Summary {
	standings := result.Standings
	if standings == nil {
		standings = []entity.Standing{}
	}
	return Summary{
		ScenarioName: scenarioName,
		Date:         result.Date,
		Races:        result.Races,
		Standings:    standings,
	}
}

// Canonical returns the canonical JSON form written to golden files.
func (s Summary) Canonical() ([]byte, error) {
	return ir.Canonical(s)
}

// RunWithGolden executes a scenario and compares its summary against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if the scenario cannot run. A summary mismatch fails t.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(context.Background(), scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result against its golden file
// without re-running the scenario.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	data, err := Summarize(scenarioName, result).Canonical()
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)

	return nil
}
