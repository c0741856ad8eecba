package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/sift/internal/querysql"
)

// Scenario defines one compile case.
// A scenario compiles a filter and sort against a field spec, renders the
// query in a dialect, optionally executes it, and checks the outcome.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Fields is the path to a CUE or YAML field spec.
	// Relative paths resolve against the scenario file's directory.
	Fields string `yaml:"fields"`

	// Dialect renders the query. Defaults to sqlite.
	Dialect string `yaml:"dialect,omitempty"`

	// Table is the FROM table of the base query.
	Table string `yaml:"table"`

	// Columns selected by the base query. Empty selects all.
	Columns []string `yaml:"columns,omitempty"`

	// Filter is raw filter input, exactly as a request would send it.
	Filter any `yaml:"filter,omitempty"`

	// Sort is raw sort input.
	Sort any `yaml:"sort,omitempty"`

	// Setup is an SQL script run against a fresh in-memory SQLite database.
	// When Setup or SetupFile is present the compiled query is executed.
	Setup string `yaml:"setup,omitempty"`

	// SetupFile is an SQL script path, resolved like Fields.
	SetupFile string `yaml:"setup_file,omitempty"`

	// Assertions validate the result.
	Assertions []Assertion `yaml:"assertions"`
}

// Executes reports whether the scenario runs its query against a database.
func (s *Scenario) Executes() bool {
	return s.Setup != "" || s.SetupFile != ""
}

// LoadScenario reads and parses a scenario YAML file, resolving relative
// paths against the file's directory.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}

	base := filepath.Dir(path)
	scenario.Fields = resolvePath(base, scenario.Fields)
	scenario.SetupFile = resolvePath(base, scenario.SetupFile)
	return scenario, nil
}

// ParseScenario parses scenario YAML. Paths are left as written.
func ParseScenario(data []byte) (*Scenario, error) {
	// Strict field validation catches typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if scenario.Dialect == "" {
		scenario.Dialect = "sqlite"
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// LoadScenarios loads every *.yaml scenario in dir, sorted by file name.
func LoadScenarios(dir string) ([]*Scenario, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("scan scenarios: %w", err)
	}
	scenarios := make([]*Scenario, 0, len(paths))
	for _, path := range paths {
		s, err := LoadScenario(path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

func resolvePath(base, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(base, path)
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Fields == "" {
		return fmt.Errorf("fields is required")
	}
	if s.Table == "" {
		return fmt.Errorf("table is required")
	}
	if _, err := querysql.DialectByName(s.Dialect); err != nil {
		return err
	}
	if s.Executes() && s.Dialect != "sqlite" {
		return fmt.Errorf("setup requires the sqlite dialect, got %s", s.Dialect)
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(a); err != nil {
			return fmt.Errorf("assertions[%d]: %w", i, err)
		}
	}
	return nil
}

func validateAssertion(a Assertion) error {
	switch a.Type {
	case AssertSQLEquals:
		if a.SQL == "" {
			return fmt.Errorf("%s requires sql", a.Type)
		}
	case AssertParamsEqual:
		if a.Params == nil {
			return fmt.Errorf("%s requires params", a.Type)
		}
	case AssertErrorKind:
		if a.Kind == "" {
			return fmt.Errorf("%s requires kind", a.Type)
		}
	case AssertRowCount:
	case AssertRowsContain:
		if len(a.Row) == 0 {
			return fmt.Errorf("%s requires row", a.Type)
		}
	case AssertFieldsIncluded:
		if len(a.Fields) == 0 {
			return fmt.Errorf("%s requires fields", a.Type)
		}
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
	return nil
}
