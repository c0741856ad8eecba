package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJoinFilters(t *testing.T) {
	a := map[string]any{"field": "id", "operator": "equal", "value": int64(1)}
	b := map[string]any{"field": "username", "operator": "equal", "value": "test"}

	tests := []struct {
		name      string
		condition string
		fragments []any
		expected  any
	}{
		{
			name:     "nothing",
			expected: nil,
		},
		{
			name:      "only empties",
			fragments: []any{nil, map[string]any{}, "", "  ", []byte(nil)},
			expected:  nil,
		},
		{
			name:      "single fragment returned as-is",
			fragments: []any{nil, a},
			expected:  a,
		},
		{
			name:      "default condition is and",
			fragments: []any{a, b},
			expected:  map[string]any{"condition": "and", "rules": []any{a, b}},
		},
		{
			name:      "or",
			condition: "or",
			fragments: []any{a, nil, b},
			expected:  map[string]any{"condition": "or", "rules": []any{a, b}},
		},
		{
			name:      "json text fragments",
			fragments: []any{`{"field":"id","operator":"equal","value":1}`, []byte(`{"field":"username","operator":"equal","value":"test"}`)},
			expected:  map[string]any{"condition": "and", "rules": []any{a, b}},
		},
		{
			name:      "json null fragment is dropped",
			fragments: []any{"null", a},
			expected:  a,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := JoinFilters(tt.condition, tt.fragments...)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestJoinFiltersParsedRules(t *testing.T) {
	pred := Predicate{Field: "id", Operator: "isnull"}

	got, err := JoinFilters("and", pred, map[string]any{"field": "username", "operator": "isnotnull"})
	require.NoError(t, err)

	rule, err := NewParser().ParseFilter(got)
	require.NoError(t, err)
	assert.Equal(t, Group{Condition: "and", Rules: []Rule{
		pred,
		Predicate{Field: "username", Operator: "isnotnull"},
	}}, rule)
}

func TestJoinFiltersErrors(t *testing.T) {
	tests := []struct {
		name     string
		fragment any
	}{
		{"invalid json", `{"field":`},
		{"json array", `[1, 2]`},
		{"unsupported type", 42},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := JoinFilters("and", tt.fragment)
			assert.True(t, IsKind(err, KindInvalidInputShape), "got %v", err)
		})
	}
}

func TestStringJoinFilters(t *testing.T) {
	out, err := StringJoinFilters("",
		`{"field":"id","operator":"equal","value":1}`,
		map[string]any{"field": "username", "operator": "equal", "value": "test"},
	)
	require.NoError(t, err)
	assert.Equal(t,
		`{"condition":"and","rules":[{"field":"id","operator":"equal","value":1},{"field":"username","operator":"equal","value":"test"}]}`,
		out)

	out, err = StringJoinFilters("and", nil, "")
	require.NoError(t, err)
	assert.Equal(t, "", out)
}
