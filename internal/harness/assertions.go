package harness

import (
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/roach88/sift/internal/ir"
)

// Assertion type constants.
const (
	AssertSQLEquals      = "sql_equals"
	AssertParamsEqual    = "params_equal"
	AssertErrorKind      = "error_kind"
	AssertRowCount       = "row_count"
	AssertRowsContain    = "rows_contain"
	AssertFieldsIncluded = "fields_included"
)

// Assertion defines an expected property of a scenario result.
type Assertion struct {
	Type string `yaml:"type"`

	// For sql_equals: the exact rendered statement.
	SQL string `yaml:"sql,omitempty"`

	// For params_equal: the complete bound parameter map.
	Params map[string]any `yaml:"params,omitempty"`

	// For error_kind: the rules.ErrorKind, e.g. UNKNOWN_FIELD.
	Kind string `yaml:"kind,omitempty"`

	// For row_count: the exact number of rows returned.
	Count int `yaml:"count,omitempty"`

	// For rows_contain: a row that must appear (subset match on columns).
	Row map[string]any `yaml:"row,omitempty"`

	// For fields_included: fields the compiler must have referenced.
	Fields []string `yaml:"fields,omitempty"`
}

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string // Assertion type for categorization
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
	SQL      string // Rendered statement for context, if any
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)
	if e.SQL != "" {
		fmt.Fprintf(&buf, "\nSQL:\n  %s\n", e.SQL)
	}
	return buf.String()
}

// EvaluateAssertions evaluates all assertions against the result.
// Returns a slice of error messages for failed assertions.
//
// Only error_kind may pass on a result whose compile failed; every other
// assertion type fails with the compile error as its actual outcome.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errors []string

	for i, assertion := range assertions {
		var err error

		switch {
		case assertion.Type == AssertErrorKind:
			err = assertErrorKind(result, assertion)
		case result.ErrorKind != "" || result.Error != "":
			err = &AssertionError{
				Type:     assertion.Type,
				Expected: "successful compile",
				Actual:   result.Error,
			}
		default:
			switch assertion.Type {
			case AssertSQLEquals:
				err = assertSQLEquals(result, assertion)
			case AssertParamsEqual:
				err = assertParamsEqual(result, assertion)
			case AssertRowCount:
				err = assertRowCount(result, assertion)
			case AssertRowsContain:
				err = assertRowsContain(result, assertion)
			case AssertFieldsIncluded:
				err = assertFieldsIncluded(result, assertion)
			default:
				err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
			}
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}

func assertSQLEquals(result *Result, assertion Assertion) error {
	if result.SQL == strings.TrimSpace(assertion.SQL) {
		return nil
	}
	return &AssertionError{
		Type:     AssertSQLEquals,
		Expected: strings.TrimSpace(assertion.SQL),
		Actual:   result.SQL,
	}
}

func assertParamsEqual(result *Result, assertion Assertion) error {
	expected, err := ir.Normalize(assertion.Params)
	if err != nil {
		return fmt.Errorf("params_equal: %w", err)
	}
	actual, err := ir.Normalize(result.Params)
	if err != nil {
		return fmt.Errorf("params_equal: %w", err)
	}
	if valuesEqual(actual, expected) {
		return nil
	}
	return &AssertionError{
		Type:     AssertParamsEqual,
		Expected: canonicalString(expected),
		Actual:   canonicalString(actual),
		SQL:      result.SQL,
	}
}

func assertErrorKind(result *Result, assertion Assertion) error {
	if result.ErrorKind == assertion.Kind {
		return nil
	}
	actual := "no error"
	if result.Error != "" {
		actual = result.Error
	}
	return &AssertionError{
		Type:     AssertErrorKind,
		Expected: assertion.Kind,
		Actual:   actual,
		SQL:      result.SQL,
	}
}

func assertRowCount(result *Result, assertion Assertion) error {
	if len(result.Rows) == assertion.Count {
		return nil
	}
	return &AssertionError{
		Type:     AssertRowCount,
		Expected: fmt.Sprintf("%d rows", assertion.Count),
		Actual:   fmt.Sprintf("%d rows", len(result.Rows)),
		SQL:      result.SQL,
	}
}

// assertRowsContain checks that some row matches every expected column.
func assertRowsContain(result *Result, assertion Assertion) error {
	expected, err := ir.Normalize(assertion.Row)
	if err != nil {
		return fmt.Errorf("rows_contain: %w", err)
	}
	for _, row := range result.Rows {
		if matchArgs(row, expected.(map[string]any)) {
			return nil
		}
	}
	return &AssertionError{
		Type:     AssertRowsContain,
		Expected: fmt.Sprintf("row matching %s", canonicalString(expected)),
		Actual:   fmt.Sprintf("not found in %d rows", len(result.Rows)),
		SQL:      result.SQL,
	}
}

func assertFieldsIncluded(result *Result, assertion Assertion) error {
	var missing []string
	for _, f := range assertion.Fields {
		if !slices.Contains(result.IncludedFields, f) {
			missing = append(missing, f)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return &AssertionError{
		Type:     AssertFieldsIncluded,
		Expected: fmt.Sprintf("fields %v", assertion.Fields),
		Actual:   fmt.Sprintf("included %v, missing %v", result.IncludedFields, missing),
	}
}

// matchArgs checks if actual contains all expected keys (subset match).
// Extra keys in actual are ignored.
func matchArgs(actual, expected map[string]any) bool {
	for key, expectedVal := range expected {
		actualVal, exists := actual[key]
		if !exists {
			return false
		}
		if !valuesEqual(actualVal, expectedVal) {
			return false
		}
	}
	return true
}

// valuesEqual compares two normalized values for equality.
// Handles nested maps and slices.
func valuesEqual(actual, expected any) bool {
	if actual == nil && expected == nil {
		return true
	}
	if actual == nil || expected == nil {
		return false
	}
	return reflect.DeepEqual(actual, expected)
}

func canonicalString(v any) string {
	data, err := ir.MarshalCanonical(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(data)
}
