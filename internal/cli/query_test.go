package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuery_Rows(t *testing.T) {
	tests := []struct {
		name   string
		filter string
		sort   string
		want   string
	}{
		{
			name:   "null email",
			filter: `{"field":"email","operator":"isnull"}`,
			want:   "{\"id\":2,\"username\":\"Bob\"}\n",
		},
		{
			name:   "any tag sorted desc",
			filter: `{"field":"tags","operator":"any","value":{"field":"tags.name","operator":"equal","value":"go"}}`,
			sort:   `[{"field":"username","direction":"desc"}]`,
			want:   "{\"id\":1,\"username\":\"alice\"}\n{\"id\":2,\"username\":\"Bob\"}\n",
		},
		{
			name:   "no match",
			filter: `{"field":"age","operator":"greaterthan","value":100}`,
			want:   "(no rows)\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := execute(t, "", "query",
				"--fields", usersFields,
				"--init", usersSetup,
				"--columns", "id,username",
				"--filter", tt.filter,
				"--sort", tt.sort)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestQuery_Count(t *testing.T) {
	out, _, err := execute(t, "", "query", "--fields", usersFields, "--init", usersSetup, "--count",
		"--filter", `{"field":"age","operator":"greaterthan","value":20}`)
	require.NoError(t, err)
	assert.Equal(t, "3\n", out)
}

func TestQuery_JSON(t *testing.T) {
	out, _, err := execute(t, "", "--format", "json", "query",
		"--fields", usersFields, "--init", usersSetup,
		"--columns", "username", "--limit", "2",
		"--sort", `[{"field":"age"}]`)
	require.NoError(t, err)

	var resp struct {
		Status string      `json:"status"`
		Data   QueryResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "SELECT username FROM users ORDER BY users.age LIMIT 2", resp.Data.SQL)
	assert.Equal(t, []map[string]any{{"username": "dave"}, {"username": "Bob"}}, resp.Data.Rows)
}

func TestQuery_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		code int
		want string
	}{
		{"rejected rule", []string{"--filter", `{"field":"nope","operator":"isnull"}`}, ExitFailure, "Error [UNKNOWN_FIELD]"},
		{"unknown dialect", []string{"--dialect", "oracle"}, ExitCommandError, "connect"},
		{"missing init", []string{"--init", "nope.sql"}, ExitCommandError, "read init script"},
		{"no table", nil, ExitCommandError, "no such table"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := execute(t, "", append([]string{"query", "--fields", usersFields}, tt.args...)...)
			require.Error(t, err)
			assert.Equal(t, tt.code, GetExitCode(err))
			assert.Contains(t, out, tt.want)
		})
	}
}

func TestQuery_Logs(t *testing.T) {
	_, errOut, err := execute(t, "", "--log-level", "info", "--log-format", "json", "query",
		"--fields", usersFields, "--init", usersSetup)
	require.NoError(t, err)
	assert.Contains(t, errOut, `"msg":"query executed"`)
	assert.Contains(t, errOut, `"rows":4`)
}
