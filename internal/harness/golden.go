package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/toothdex/internal/store"
)

// Snapshot encodes the final state of result as a store document.
func Snapshot(result *Result) ([]byte, error) {
	return store.Encode(result.State)
}

// RunWithGolden executes a scenario and compares the final document against
// a golden file. The golden file is stored in testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Expectation failures are reported through t; the golden comparison
// fails the test via goldie.
func RunWithGolden(t *testing.T, scenario *Scenario) error {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return err
	}
	for _, e := range result.Errors {
		t.Error(e)
	}

	return AssertGolden(t, scenario.Name, result)
}

// AssertGolden compares the given result's final document against a
// golden file without re-running the scenario.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	data, err := Snapshot(result)
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
