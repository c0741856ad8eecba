package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sift/internal/ir"
)

func TestCompile_Text(t *testing.T) {
	out, _, err := execute(t, "", "compile", "--fields", usersFields,
		"--filter", `{"field":"age","operator":"greaterthan","value":20}`)
	require.NoError(t, err)

	assert.Equal(t, "SELECT * FROM users WHERE users.age > :age_0 ORDER BY users.id\n"+
		"params: {\"age_0\":20}\n"+
		"fields: [age id]\n", out)
}

func TestCompile_JSON(t *testing.T) {
	out, _, err := execute(t, "", "--format", "json", "compile",
		"--fields", usersFields,
		"--dialect", "postgres",
		"--columns", "id,username",
		"--limit", "5",
		"--filter", `{"condition":"or","rules":[{"field":"username","operator":"istartswith","value":"a"},{"field":"email","operator":"isempty"}]}`,
		"--sort", `[{"field":"username","direction":"desc"}]`)
	require.NoError(t, err)

	var resp struct {
		Status string            `json:"status"`
		Data   CompilationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "postgres", resp.Data.Dialect)
	assert.Equal(t, "SELECT id, username FROM users WHERE users.username ILIKE @username_0 OR trim(users.email) = '' ORDER BY users.username DESC LIMIT 5", resp.Data.SQL)
	assert.Equal(t, map[string]any{"username_0": "a%"}, resp.Data.Params)
	assert.Equal(t, []string{"email", "username"}, resp.Data.Fields)

	want, err := ir.StatementID("postgres", resp.Data.SQL, map[string]any{"username_0": "a%"})
	require.NoError(t, err)
	assert.Equal(t, want, resp.Data.StatementID)
}

func TestCompile_FilterInputs(t *testing.T) {
	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "filter.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte("field: id\noperator: in\nvalue: [1, 2]\n"), 0o644))

	tests := []struct {
		name  string
		stdin string
		args  []string
	}{
		{"literal yaml", "", []string{"--filter", "field: id\noperator: in\nvalue: [1, 2]"}},
		{"file", "", []string{"--filter", "@" + yamlPath}},
		{"stdin", `{"field":"id","operator":"in","value":["1","2"]}`, []string{"--filter", "-"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"compile", "--fields", usersFields, "--sort", `[]`}, tt.args...)
			out, _, err := execute(t, tt.stdin, args...)
			require.NoError(t, err)
			assert.Contains(t, out, "WHERE users.id IN (SELECT value FROM json_each(:id_0))")
			// The int transform applies element-wise.
			assert.Contains(t, out, `params: {"id_0":[1,2]}`)
		})
	}
}

func TestCompile_DecodeIDs(t *testing.T) {
	out, _, err := execute(t, "", "compile", "--fields", usersFields, "--decode-ids",
		"--filter", `{"field":"username","operator":"equal","value":"x"}`)
	require.NoError(t, err)
	assert.Contains(t, out, `params: {"username_0":"x"}`)

	_, _, err = execute(t, "", "compile", "--fields", usersFields, "--decode-ids",
		"--filter", `{"field":"id","operator":"equal","value":"not-a-uuid"}`)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestCompile_RuleRejected(t *testing.T) {
	tests := []struct {
		name   string
		filter string
		code   string
	}{
		{"unknown field", `{"field":"password","operator":"equal","value":1}`, "UNKNOWN_FIELD"},
		{"unknown operator", `{"field":"age","operator":"between","value":[1,2]}`, "UNKNOWN_OPERATOR"},
		{"blocked operator", `{"field":"email","operator":"ilike","value":"%a%"}`, "BLOCKED_OPERATOR"},
		{"missing value", `{"field":"age","operator":"equal"}`, "MISSING_REQUIRED_PROPERTY"},
		{"bad transform", `{"field":"age","operator":"equal","value":"old"}`, "INVALID_INPUT_SHAPE"},
		{"not arity", `{"condition":"not","rules":[{"field":"age","operator":"isnull"},{"field":"id","operator":"isnull"}]}`, "INVALID_ARITY"},
		{"too deep", `{"condition":"and","rules":[{"condition":"or","rules":[{"condition":"and","rules":[{"field":"id","operator":"isnull"}]}]}]}`, "LIMIT_EXCEEDED"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := execute(t, "", "--format", "json", "compile", "--fields", usersFields, "--filter", tt.filter)
			require.Error(t, err)
			assert.Equal(t, ExitFailure, GetExitCode(err))

			var resp CLIResponse
			require.NoError(t, json.Unmarshal([]byte(out), &resp))
			assert.Equal(t, "error", resp.Status)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.code, resp.Error.Code)
		})
	}
}

func TestCompile_CommandErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"missing field spec", []string{"--fields", "nope.cue"}, "Error [E005]"},
		{"unknown dialect", []string{"--fields", usersFields, "--dialect", "oracle"}, "Error [E_USAGE]"},
		{"unreadable filter file", []string{"--fields", usersFields, "--filter", "@nope.json"}, "reading filter"},
		{"malformed filter", []string{"--fields", usersFields, "--filter", "{"}, "reading filter"},
		{"both stdin", []string{"--fields", usersFields, "--filter", "-", "--sort", "-"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := execute(t, "", append([]string{"compile"}, tt.args...)...)
			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))
			assert.Contains(t, out, tt.want)
		})
	}
}

func TestCompile_RequiresFields(t *testing.T) {
	_, _, err := execute(t, "", "compile")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"fields" not set`)
}

func TestSort(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"explicit", []string{`[{"field":"age","direction":"DESC"},{"property":"username"}]`}, "ORDER BY users.age DESC, users.username\n"},
		{"default sort", nil, "ORDER BY users.id\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := execute(t, "", append([]string{"sort", "--fields", usersFields}, tt.args...)...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestSort_Rejected(t *testing.T) {
	out, _, err := execute(t, "", "--format", "json", "sort", "--fields", usersFields, `[{"field":"age","direction":"sideways"}]`)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "UNKNOWN_DIRECTION", resp.Error.Code)
}
