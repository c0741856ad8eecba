package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGolden_Scenarios(t *testing.T) {
	scenarios, err := LoadScenarios("testdata/scenarios")
	require.NoError(t, err)

	for _, s := range scenarios {
		t.Run(s.Name, func(t *testing.T) {
			result, err := RunWithGolden(t, s)
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
		})
	}
}

func TestSnapshot_OmitsCompiledPartsOnError(t *testing.T) {
	s := &Scenario{Name: "bad", Dialect: "sqlite"}
	r := NewResult()
	r.Error = "UNKNOWN_FIELD: unknown field: x"

	data, err := NewSnapshot(s, r).MarshalCanonical()
	require.NoError(t, err)
	assert.Equal(t, `{"dialect":"sqlite","error":"UNKNOWN_FIELD: unknown field: x","scenario_name":"bad"}`, string(data))
}

func TestSnapshot_WithoutRows(t *testing.T) {
	s := &Scenario{Name: "plain", Dialect: "postgres"}
	r := NewResult()
	r.SQL = "SELECT * FROM users"

	data, err := NewSnapshot(s, r).MarshalCanonical()
	require.NoError(t, err)
	assert.Equal(t, `{"dialect":"postgres","fields":[],"params":{},"scenario_name":"plain","sql":"SELECT * FROM users"}`, string(data))
}
