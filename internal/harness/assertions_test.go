package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func compiledResult() *Result {
	r := NewResult()
	r.SQL = "SELECT id FROM users WHERE users.age > :age_0"
	r.Params = map[string]any{"age_0": int64(20), "tags.name_0": []any{"go", "sql"}}
	r.IncludedFields = []string{"age", "tags.name"}
	r.Rows = []map[string]any{
		{"id": int64(1), "email": "alice@example.com"},
		{"id": int64(2), "email": nil},
	}
	return r
}

func TestEvaluateAssertions(t *testing.T) {
	tests := []struct {
		name      string
		assertion Assertion
		wantErr   string
	}{
		{"sql equals", Assertion{Type: AssertSQLEquals, SQL: "SELECT id FROM users WHERE users.age > :age_0\n"}, ""},
		{"sql differs", Assertion{Type: AssertSQLEquals, SQL: "SELECT 1"}, "Expected: SELECT 1"},
		{"params equal with int", Assertion{Type: AssertParamsEqual, Params: map[string]any{"age_0": 20, "tags.name_0": []any{"go", "sql"}}}, ""},
		{"params missing key", Assertion{Type: AssertParamsEqual, Params: map[string]any{"age_0": 20}}, `Expected: {"age_0":20}`},
		{"params wrong value", Assertion{Type: AssertParamsEqual, Params: map[string]any{"age_0": 21, "tags.name_0": []any{"go", "sql"}}}, "params_equal"},
		{"row count", Assertion{Type: AssertRowCount, Count: 2}, ""},
		{"row count differs", Assertion{Type: AssertRowCount, Count: 3}, "Actual: 2 rows"},
		{"rows contain subset", Assertion{Type: AssertRowsContain, Row: map[string]any{"id": 1}}, ""},
		{"rows contain null", Assertion{Type: AssertRowsContain, Row: map[string]any{"id": 2, "email": nil}}, ""},
		{"rows contain missing", Assertion{Type: AssertRowsContain, Row: map[string]any{"id": 3}}, "not found in 2 rows"},
		{"rows contain unknown column", Assertion{Type: AssertRowsContain, Row: map[string]any{"age": 31}}, "rows_contain"},
		{"fields included", Assertion{Type: AssertFieldsIncluded, Fields: []string{"tags.name"}}, ""},
		{"fields missing", Assertion{Type: AssertFieldsIncluded, Fields: []string{"age", "id"}}, "missing [id]"},
		{"no error expected kind", Assertion{Type: AssertErrorKind, Kind: "UNKNOWN_FIELD"}, "Actual: no error"},
		{"unknown type", Assertion{Type: "trace_order"}, `unknown assertion type "trace_order"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := EvaluateAssertions(compiledResult(), []Assertion{tt.assertion})
			if tt.wantErr == "" {
				assert.Empty(t, errs)
				return
			}
			require.Len(t, errs, 1)
			assert.Contains(t, errs[0], tt.wantErr)
		})
	}
}

func TestEvaluateAssertions_CompileFailure(t *testing.T) {
	r := NewResult()
	r.ErrorKind = "BLOCKED_OPERATOR"
	r.Error = "BLOCKED_OPERATOR: operator like is not allowed on field email"

	errs := EvaluateAssertions(r, []Assertion{
		{Type: AssertErrorKind, Kind: "BLOCKED_OPERATOR"},
		{Type: AssertRowCount, Count: 0},
	})
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "Expected: successful compile")
	assert.Contains(t, errs[0], "operator like is not allowed")
}

func TestAssertionError_Format(t *testing.T) {
	err := &AssertionError{Type: AssertRowCount, Expected: "1 rows", Actual: "0 rows", SQL: "SELECT 1"}
	assert.Equal(t, "Assertion failed: row_count\n  Expected: 1 rows\n  Actual: 0 rows\n\nSQL:\n  SELECT 1\n", err.Error())
}

func TestResult_AddError(t *testing.T) {
	r := NewResult()
	assert.True(t, r.Pass)
	r.AddError("boom")
	assert.False(t, r.Pass)
	assert.Equal(t, []string{"boom"}, r.Errors)
}
