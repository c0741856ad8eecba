package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/sift/internal/compiler"
	"github.com/roach88/sift/internal/ir"
	"github.com/roach88/sift/internal/querysql"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	RuleFlags
}

// CompilationResult is the output of the compile command.
type CompilationResult struct {
	Dialect string         `json:"dialect"`
	SQL     string         `json:"sql"`
	Params  map[string]any `json:"params"`
	Fields  []string       `json:"fields"`
	// StatementID is a content-addressed hash of dialect, SQL and params.
	StatementID string `json:"statement_id"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile",
		Short: "Compile filter and sort rules to SQL",
		Long: `Compile filter and sort rules against a field spec and print the
parameterized SQL, the bound parameters and the fields the rules referenced.

Examples:
  sift compile --fields users.cue --filter '{"field":"age","operator":"greaterthan","value":20}'
  sift compile --fields users.cue --dialect postgres --filter @filter.json --sort '[{"field":"id","direction":"desc"}]'
  echo '{"field":"id","operator":"in","value":[1,2]}' | sift compile --fields users.yaml --filter -`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true, // Don't print usage on errors - we handle our own error output
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, cmd)
		},
	}

	opts.register(cmd)
	return cmd
}

func runCompile(opts *CompileOptions, cmd *cobra.Command) error {
	s, err := newSession(opts.RootOptions, opts.Fields, cmd)
	if err != nil {
		return err
	}
	dialect, err := querysql.DialectByName(opts.Dialect)
	if err != nil {
		_ = s.formatter.Error(ErrCodeUsage, err.Error(), nil)
		return WrapExitError(ExitCommandError, "select dialect", err)
	}
	filter, sort, err := s.ruleInputs(&opts.RuleFlags, cmd.InOrStdin())
	if err != nil {
		return err
	}

	// Filter and sort share one context so parameter counters and the
	// included field set cover both.
	pred, ctx, err := compiler.BuildFilters(filter, s.config, nil)
	if err != nil {
		return outputRuleError(s.formatter, err)
	}
	order, ctx, err := compiler.BuildSorting(sort, s.config, ctx)
	if err != nil {
		return outputRuleError(s.formatter, err)
	}

	q := s.baseQuery(&opts.RuleFlags).Where(pred).Params(ctx.Params).OrderBy(order...)
	sqlText, _, err := querysql.NewSQLCompiler(dialect).Compile(q)
	if err != nil {
		return outputRuleError(s.formatter, err)
	}
	s.logger.Debug("rules compiled", "dialect", dialect.Name(), "params", len(ctx.Params))

	id, err := ir.StatementID(dialect.Name(), sqlText, ctx.Params)
	if err != nil {
		return WrapExitError(ExitCommandError, "hash statement", err)
	}

	result := CompilationResult{
		Dialect:     dialect.Name(),
		SQL:         sqlText,
		Params:      ctx.Params,
		Fields:      ctx.Fields(),
		StatementID: id,
	}
	return outputCompileSuccess(s.formatter, result)
}

// outputCompileSuccess outputs successful compilation results.
func outputCompileSuccess(formatter *OutputFormatter, result CompilationResult) error {
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	params, err := ir.MarshalCanonical(result.Params)
	if err != nil {
		return WrapExitError(ExitCommandError, "encode params", err)
	}
	fmt.Fprintln(formatter.Writer, result.SQL)
	fmt.Fprintf(formatter.Writer, "params: %s\n", params)
	fmt.Fprintf(formatter.Writer, "fields: %v\n", result.Fields)
	return nil
}
