package cli

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
)

var (
	usersFields = filepath.Join("..", "harness", "testdata", "fields", "users.cue")
	usersSetup  = filepath.Join("..", "harness", "testdata", "setup", "users.sql")
	scenarios   = filepath.Join("..", "harness", "testdata", "scenarios")
	goldenDir   = filepath.Join("..", "harness", "testdata", "golden")
)

// execute runs the root command with args and returns stdout and stderr.
func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}
