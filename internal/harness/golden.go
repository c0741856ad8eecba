package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/sift/internal/ir"
)

// Snapshot captures the observable outcome of a scenario.
// It is serialized with ir.MarshalCanonical so golden files are byte-stable.
type Snapshot struct {
	ScenarioName string
	Dialect      string
	SQL          string
	Params       map[string]any
	Fields       []string
	Error        string
	Rows         []map[string]any
}

// NewSnapshot builds a snapshot from a scenario and its result.
func NewSnapshot(scenario *Scenario, result *Result) Snapshot {
	return Snapshot{
		ScenarioName: scenario.Name,
		Dialect:      scenario.Dialect,
		SQL:          result.SQL,
		Params:       result.Params,
		Fields:       result.IncludedFields,
		Error:        result.Error,
		Rows:         result.Rows,
	}
}

// toCanonicalMap converts a Snapshot to a map[string]any for canonical JSON
// serialization. Empty optional parts are omitted.
func (s Snapshot) toCanonicalMap() map[string]any {
	out := map[string]any{
		"scenario_name": s.ScenarioName,
		"dialect":       s.Dialect,
	}
	if s.Error != "" {
		out["error"] = s.Error
		return out
	}

	fields := make([]any, len(s.Fields))
	for i, f := range s.Fields {
		fields[i] = f
	}
	out["sql"] = s.SQL
	out["params"] = s.Params
	out["fields"] = fields
	if s.Rows != nil {
		rows := make([]any, len(s.Rows))
		for i, r := range s.Rows {
			rows[i] = r
		}
		out["rows"] = rows
	}
	return out
}

// MarshalCanonical renders the snapshot as canonical JSON.
func (s Snapshot) MarshalCanonical() ([]byte, error) {
	return ir.MarshalCanonical(s.toCanonicalMap())
}

// RunWithGolden executes a scenario and compares its snapshot against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails. Test failure (via goldie)
// occurs if the snapshot doesn't match the golden file.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, NewSnapshot(scenario, result)); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares a snapshot against a golden file without
// re-running the scenario.
func AssertGolden(t *testing.T, name string, snapshot Snapshot) error {
	t.Helper()

	data, err := snapshot.MarshalCanonical()
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, data)
	return nil
}
