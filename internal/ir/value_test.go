package ir

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeJSONNumbers(t *testing.T) {
	v, err := DecodeJSON([]byte(`{"i": 1, "f": 1.5, "e": 1e3, "big": 9223372036854775807}`))
	require.NoError(t, err)

	m := v.(map[string]any)
	assert.Equal(t, int64(1), m["i"])
	assert.Equal(t, 1.5, m["f"])
	assert.Equal(t, float64(1000), m["e"])
	assert.Equal(t, int64(9223372036854775807), m["big"])
}

func TestDecodeJSONRuleShape(t *testing.T) {
	v, err := DecodeJSON([]byte(`{
		"condition": "and",
		"rules": [
			{"field": "id", "operator": "in", "value": [1, 2]},
			{"field": "deleted_at", "operator": "isnull", "value": null}
		]
	}`))
	require.NoError(t, err)

	m := v.(map[string]any)
	rules := m["rules"].([]any)
	require.Len(t, rules, 2)
	assert.Equal(t, []any{int64(1), int64(2)}, rules[0].(map[string]any)["value"])
	assert.Nil(t, rules[1].(map[string]any)["value"])
}

func TestDecodeJSONErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"malformed", `{"field":`},
		{"trailing data", `{} {}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeJSON([]byte(tt.input))
			assert.Error(t, err)
		})
	}
}

func TestDecodeYAML(t *testing.T) {
	v, err := DecodeYAML([]byte(`
condition: or
rules:
  - field: username
    operator: icontains
    value: bob
  - field: score
    operator: greaterthan
    value: 2.5
`))
	require.NoError(t, err)

	m := v.(map[string]any)
	assert.Equal(t, "or", m["condition"])
	rules := m["rules"].([]any)
	assert.Equal(t, "bob", rules[0].(map[string]any)["value"])
	assert.Equal(t, 2.5, rules[1].(map[string]any)["value"])
}

func TestDecodeYAMLNonStringKeys(t *testing.T) {
	v, err := DecodeYAML([]byte("1: one\ntrue: yes\n"))
	require.NoError(t, err)

	m := v.(map[string]any)
	assert.Equal(t, "one", m["1"])
	assert.Equal(t, "yes", m["true"])
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		expected any
	}{
		{"int", 5, int64(5)},
		{"int32", int32(5), int64(5)},
		{"float32", float32(0.5), 0.5},
		{"json int", json.Number("12"), int64(12)},
		{"json float", json.Number("1.25"), 1.25},
		{"nested", []any{map[string]any{"a": 1}}, []any{map[string]any{"a": int64(1)}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}

	_, err := Normalize(make(chan int))
	assert.Error(t, err)
}

func TestSortedKeysRFC8785Order(t *testing.T) {
	m := map[string]any{
		"b":  1,
		"a":  1,
		"A":  1,
		"aa": 1,
		// U+1F600 encodes as surrogates 0xD83D 0xDE00, which sort before U+FFFD in UTF-16
		"\U0001F600": 1,
		"\uFFFD":     1,
	}

	assert.Equal(t, []string{"A", "a", "aa", "b", "\U0001F600", "\uFFFD"}, SortedKeys(m))
}
