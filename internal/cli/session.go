package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/sift/internal/compiler"
	"github.com/roach88/sift/internal/fieldspec"
	"github.com/roach88/sift/internal/ir"
	"github.com/roach88/sift/internal/queryir"
	"github.com/roach88/sift/internal/rules"
)

// RuleFlags are the flags shared by commands that compile rules.
type RuleFlags struct {
	Fields    string   // field spec path
	Dialect   string   // SQL dialect
	Table     string   // base table, defaults to the spec's table
	Columns   []string // selected columns
	Filter    string   // filter input: literal, @file or - for stdin
	Sort      string   // sort input: literal, @file or - for stdin
	Limit     int      // row limit
	DecodeIDs bool     // decode id fields as UUIDs before compiling
}

func (f *RuleFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.Fields, "fields", "", "path to field spec (.cue, .yaml or CUE package dir) (required)")
	cmd.Flags().StringVar(&f.Dialect, "dialect", "sqlite", "SQL dialect (sqlite|postgres|clickhouse)")
	cmd.Flags().StringVar(&f.Table, "table", "", "base table (defaults to the field spec's table)")
	cmd.Flags().StringSliceVar(&f.Columns, "columns", nil, "selected columns (default all)")
	cmd.Flags().StringVar(&f.Filter, "filter", "", "filter rules as JSON or YAML, @file, or - for stdin")
	cmd.Flags().StringVar(&f.Sort, "sort", "", "sort rules as JSON or YAML, @file, or - for stdin")
	cmd.Flags().IntVar(&f.Limit, "limit", 0, "row limit (0 = none)")
	cmd.Flags().BoolVar(&f.DecodeIDs, "decode-ids", false, "validate and canonicalize UUID values of id fields")
	_ = cmd.MarkFlagRequired("fields")
}

// session is the state every rule command builds before compiling.
type session struct {
	logger    *slog.Logger
	formatter *OutputFormatter
	spec      *fieldspec.Spec
	config    *compiler.Config
}

func newSession(opts *RootOptions, fieldsPath string, cmd *cobra.Command) (*session, error) {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}
	logger, err := newLogger(opts, cmd.ErrOrStderr())
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "configure logging", err)
	}

	spec, err := fieldspec.Load(fieldsPath)
	if err != nil {
		return nil, outputLoadError(formatter, err)
	}
	copts, err := spec.Options()
	if err != nil {
		return nil, outputLoadError(formatter, err)
	}
	copts.Logger = logger
	logger.Debug("field spec loaded", "path", fieldsPath, "fields", len(spec.Fields))

	return &session{
		logger:    logger,
		formatter: formatter,
		spec:      spec,
		config:    compiler.NewConfig(copts),
	}, nil
}

// baseQuery is the query the compiled rules attach to.
func (s *session) baseQuery(flags *RuleFlags) queryir.Select {
	table := flags.Table
	if table == "" {
		table = s.spec.Table
	}
	q := queryir.NewSelect(table, flags.Columns...)
	if flags.Limit > 0 {
		q = q.WithLimit(flags.Limit)
	}
	return q
}

// ruleInputs reads the filter and sort inputs. At most one may use stdin.
func (s *session) ruleInputs(flags *RuleFlags, stdin io.Reader) (filter, sort any, err error) {
	if flags.Filter == "-" && flags.Sort == "-" {
		return nil, nil, NewExitError(ExitCommandError, "only one of --filter and --sort may read stdin")
	}
	filter, err = readRuleInput(flags.Filter, stdin)
	if err != nil {
		return nil, nil, s.inputError("filter", err)
	}
	if flags.DecodeIDs {
		if m, ok := filter.(map[string]any); ok {
			filter, err = rules.ParseIDFields(m, rules.UUIDDecoder)
			if err != nil {
				return nil, nil, outputRuleError(s.formatter, rules.NewInvalidShapeError("%v", err))
			}
		}
	}
	sort, err = readRuleInput(flags.Sort, stdin)
	if err != nil {
		return nil, nil, s.inputError("sort", err)
	}
	return filter, sort, nil
}

func (s *session) inputError(name string, err error) error {
	_ = s.formatter.Error(fieldspec.ErrCodeLoadFailed, fmt.Sprintf("reading %s: %v", name, err), nil)
	return WrapExitError(ExitCommandError, "read "+name, err)
}

// readRuleInput reads a rule argument.
//
//	""      no rules
//	"-"     read from stdin
//	"@path" read from a file
//	other   the rules themselves
//
// Text starting with '{' or '[' decodes as JSON, anything else as YAML.
func readRuleInput(arg string, stdin io.Reader) (any, error) {
	var data []byte
	switch {
	case arg == "":
		return nil, nil
	case arg == "-":
		b, err := io.ReadAll(stdin)
		if err != nil {
			return nil, err
		}
		data = b
	case strings.HasPrefix(arg, "@"):
		b, err := os.ReadFile(arg[1:])
		if err != nil {
			return nil, err
		}
		data = b
	default:
		data = []byte(arg)
	}

	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, nil
	}
	if data[0] == '{' || data[0] == '[' {
		return ir.DecodeJSON(data)
	}
	return ir.DecodeYAML(data)
}

// outputLoadError reports a field spec that could not be loaded.
func outputLoadError(formatter *OutputFormatter, err error) error {
	var loadErr *fieldspec.LoadError
	if errors.As(err, &loadErr) {
		_ = formatter.Error(loadErr.Code, loadErr.Message, nil)
		return WrapExitError(ExitCommandError, "load field spec", err)
	}
	_ = formatter.Error(fieldspec.ErrCodeGeneric, err.Error(), nil)
	return WrapExitError(ExitCommandError, "load field spec", err)
}
