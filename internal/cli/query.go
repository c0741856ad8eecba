package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/sift/internal/compiler"
	"github.com/roach88/sift/internal/queryir"
	"github.com/roach88/sift/internal/store"
)

// QueryOptions holds flags for the query command.
type QueryOptions struct {
	*RootOptions
	RuleFlags
	DSN   string // database connection string
	Init  string // SQL script run before the query
	Count bool   // print the match count instead of rows
}

// QueryResult is the output of the query command.
type QueryResult struct {
	SQL   string           `json:"sql"`
	Rows  []map[string]any `json:"rows,omitempty"`
	Count *int64           `json:"count,omitempty"`
}

// NewQueryCommand creates the query command.
func NewQueryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &QueryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "query",
		Short: "Compile rules and run the query against a database",
		Long: `Compile filter and sort rules, attach them to a SELECT over the base
table and execute it.

The database is opened for --dialect: a SQLite path (default :memory:),
a postgres connection string or a clickhouse:// URL. --init runs a SQL
script first, which is how an in-memory database gets its tables.

Examples:
  sift query --fields users.cue --dsn ./app.db --filter '{"field":"email","operator":"isnull"}'
  sift query --fields users.cue --init seed.sql --sort '[{"field":"age","direction":"desc"}]' --limit 3
  sift query --fields users.cue --dialect postgres --dsn "$DATABASE_URL" --filter @rules.json --count`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd.Context(), opts, cmd)
		},
	}

	opts.register(cmd)
	cmd.Flags().StringVar(&opts.DSN, "dsn", ":memory:", "database path or connection string")
	cmd.Flags().StringVar(&opts.Init, "init", "", "SQL script to run before the query")
	cmd.Flags().BoolVar(&opts.Count, "count", false, "print the number of matching rows")

	return cmd
}

func runQuery(ctx context.Context, opts *QueryOptions, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	s, err := newSession(opts.RootOptions, opts.Fields, cmd)
	if err != nil {
		return err
	}
	filter, sort, err := s.ruleInputs(&opts.RuleFlags, cmd.InOrStdin())
	if err != nil {
		return err
	}

	queries, err := compiler.ApplyFilters(s.config, filter, s.baseQuery(&opts.RuleFlags))
	if err != nil {
		return outputRuleError(s.formatter, err)
	}
	queries, err = compiler.ApplySorting(s.config, sort, queries...)
	if err != nil {
		return outputRuleError(s.formatter, err)
	}
	q := queries[0]

	st, err := store.Connect(ctx, opts.Dialect, opts.DSN)
	if err != nil {
		return s.queryError("connect", err)
	}
	defer st.Close()

	if opts.Init != "" {
		script, err := os.ReadFile(opts.Init)
		if err != nil {
			return s.queryError("read init script", err)
		}
		if err := st.ExecScript(ctx, string(script)); err != nil {
			return s.queryError("init", err)
		}
		s.logger.Debug("init script applied", "path", opts.Init)
	}

	if opts.Count {
		return s.outputCount(ctx, st, q)
	}

	res, err := st.Query(ctx, q)
	if err != nil {
		return s.queryError("query", err)
	}
	s.logger.Info("query executed", "dialect", opts.Dialect, "rows", len(res.Rows))

	if s.formatter.Format == "json" {
		return s.formatter.Success(QueryResult{SQL: res.SQL, Rows: res.Rows})
	}
	return writeRowsText(s.formatter, res)
}

func (s *session) outputCount(ctx context.Context, st *store.Store, q queryir.Select) error {
	n, err := st.Count(ctx, q)
	if err != nil {
		return s.queryError("count", err)
	}
	if s.formatter.Format == "json" {
		return s.formatter.Success(QueryResult{Count: &n})
	}
	fmt.Fprintln(s.formatter.Writer, n)
	return nil
}

func (s *session) queryError(stage string, err error) error {
	_ = s.formatter.Error(ErrCodeQueryFailed, fmt.Sprintf("%s: %v", stage, err), nil)
	return WrapExitError(ExitCommandError, stage, err)
}

// writeRowsText prints one canonical JSON object per row.
func writeRowsText(formatter *OutputFormatter, res *store.Result) error {
	formatter.VerboseLog("%s", res.SQL)
	if len(res.Rows) == 0 {
		fmt.Fprintln(formatter.Writer, "(no rows)")
		return nil
	}
	data, err := store.MarshalRows(res.Rows)
	if err != nil {
		return WrapExitError(ExitCommandError, "encode rows", err)
	}
	_, err = formatter.Writer.Write(data)
	return err
}
