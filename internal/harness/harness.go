package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/roach88/sift/internal/compiler"
	"github.com/roach88/sift/internal/fieldspec"
	"github.com/roach88/sift/internal/ir"
	"github.com/roach88/sift/internal/queryir"
	"github.com/roach88/sift/internal/querysql"
	"github.com/roach88/sift/internal/rules"
	"github.com/roach88/sift/internal/store"
)

// Harness runs scenarios.
type Harness struct {
	logger *slog.Logger
}

// New creates a harness. A nil logger discards output.
func New(logger *slog.Logger) *Harness {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Harness{logger: logger}
}

// Run executes a test scenario with a silent harness.
func Run(scenario *Scenario) (*Result, error) {
	return New(nil).Run(context.Background(), scenario)
}

// Run executes a test scenario and returns the result.
//
// Execution flow:
//  1. Load the field spec and build a compiler Config from it
//  2. Compile filter then sort against one Context
//  3. Render the query in the scenario's dialect
//  4. If the scenario has setup, execute against a fresh in-memory database
//  5. Evaluate assertions
//
// A rule that fails to compile is an outcome, not an error: its kind and
// message are recorded on the Result for error_kind assertions. Errors are
// returned only for broken scenarios (missing files, bad setup SQL).
func (h *Harness) Run(ctx context.Context, scenario *Scenario) (*Result, error) {
	spec, err := fieldspec.Load(scenario.Fields)
	if err != nil {
		return nil, fmt.Errorf("load fields: %w", err)
	}
	opts, err := spec.Options()
	if err != nil {
		return nil, fmt.Errorf("build options: %w", err)
	}
	opts.Logger = h.logger
	cfg := compiler.NewConfig(opts)
	dialect, err := querysql.DialectByName(scenario.Dialect)
	if err != nil {
		return nil, err
	}

	result := NewResult()
	q, cctx, err := h.build(scenario, cfg)
	if err != nil {
		result.ErrorKind = string(rules.KindOf(err))
		result.Error = err.Error()
		h.logger.Info("scenario rejected", "scenario", scenario.Name, "kind", result.ErrorKind)
		h.evaluate(result, scenario)
		return result, nil
	}
	result.Params = cctx.Params
	result.IncludedFields = cctx.Fields()

	sqlText, _, err := querysql.NewSQLCompiler(dialect).Compile(q)
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", dialect.Name(), err)
	}
	result.SQL = sqlText

	if scenario.Executes() {
		rows, err := h.execute(ctx, scenario, q)
		if err != nil {
			return nil, err
		}
		result.Rows = rows
	}

	h.logger.Info("scenario compiled",
		"scenario", scenario.Name,
		"dialect", dialect.Name(),
		"params", len(result.Params),
		"rows", len(result.Rows),
	)
	h.evaluate(result, scenario)
	return result, nil
}

// build compiles the scenario's filter and sort onto its base query.
func (h *Harness) build(scenario *Scenario, cfg *compiler.Config) (queryir.Select, *compiler.Context, error) {
	base := queryir.NewSelect(scenario.Table, scenario.Columns...)

	filter, err := ir.Normalize(scenario.Filter)
	if err != nil {
		return base, nil, rules.NewInvalidShapeError("filter: %v", err)
	}
	sort, err := ir.Normalize(scenario.Sort)
	if err != nil {
		return base, nil, rules.NewInvalidShapeError("sort: %v", err)
	}

	pred, cctx, err := compiler.BuildFilters(filter, cfg, nil)
	if err != nil {
		return base, nil, err
	}
	order, cctx, err := compiler.BuildSorting(sort, cfg, cctx)
	if err != nil {
		return base, nil, err
	}
	return base.Where(pred).Params(cctx.Params).OrderBy(order...), cctx, nil
}

// execute runs q against a fresh in-memory SQLite database prepared by
// the scenario's setup script.
func (h *Harness) execute(ctx context.Context, scenario *Scenario, q queryir.Select) ([]map[string]any, error) {
	script := scenario.Setup
	if scenario.SetupFile != "" {
		data, err := os.ReadFile(scenario.SetupFile)
		if err != nil {
			return nil, fmt.Errorf("read setup file: %w", err)
		}
		script = string(data) + "\n" + script
	}

	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	if err := st.ExecScript(ctx, script); err != nil {
		return nil, fmt.Errorf("setup: %w", err)
	}
	res, err := st.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("execute: %w", err)
	}
	return res.Rows, nil
}

func (h *Harness) evaluate(result *Result, scenario *Scenario) {
	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}
}
