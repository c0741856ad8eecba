package compiler

import (
	"maps"

	"github.com/roach88/sift/internal/queryir"
	"github.com/roach88/sift/internal/rules"
)

// Filterable is a query builder that accepts a predicate and parameters.
// queryir.Select implements it.
type Filterable[Q any] interface {
	Where(p queryir.Predicate) Q
	Params(params map[string]any) Q
}

// Sortable is a query builder that accepts ordering keys.
// queryir.Select implements it.
type Sortable[Q any] interface {
	OrderBy(keys ...queryir.OrderKey) Q
}

// Statement is a precompiled filter. Passing one to ApplyFilters attaches
// it directly, without parsing or compiling.
type Statement struct {
	Predicate queryir.Predicate
	Params    map[string]any
}

// NewStatement creates a precompiled filter from a predicate and its bindings.
func NewStatement(pred queryir.Predicate, params map[string]any) Statement {
	return Statement{Predicate: pred, Params: maps.Clone(params)}
}

// BuildFilters parses and compiles raw filter input without attaching it.
//
// raw is anything rules.Parser.ParseFilter accepts. ctx may be nil, in
// which case a fresh Context is used; the context is returned either way
// so callers can inspect Params and IncludedFields. Empty input yields a
// nil predicate.
func BuildFilters(raw any, cfg *Config, ctx *Context) (queryir.Predicate, *Context, error) {
	if ctx == nil {
		ctx = NewContext()
	}
	rule, err := cfg.Parser().ParseFilter(raw)
	if err != nil {
		return nil, ctx, err
	}
	pred, err := CompileFilter(rule, cfg, ctx)
	if err != nil {
		return nil, ctx, err
	}
	return pred, ctx, nil
}

// BuildSorting parses and compiles raw sort input without attaching it.
// Empty input falls back to the Config's DefaultSort.
func BuildSorting(raw any, cfg *Config, ctx *Context) ([]queryir.OrderKey, *Context, error) {
	if ctx == nil {
		ctx = NewContext()
	}
	keys, err := rules.ParseSort(raw)
	if err != nil {
		return nil, ctx, err
	}
	if len(keys) == 0 {
		keys = cfg.DefaultSort()
	}
	order, err := CompileSort(keys, cfg, ctx)
	if err != nil {
		return nil, ctx, err
	}
	return order, ctx, nil
}

// ApplyFilters compiles raw filter input once and attaches the predicate
// and its parameters to every query.
//
// Empty input returns the queries unchanged. On error no query is
// modified and nil is returned.
func ApplyFilters[Q Filterable[Q]](cfg *Config, raw any, queries ...Q) ([]Q, error) {
	var stmt Statement
	switch v := raw.(type) {
	case Statement:
		stmt = v
	case *Statement:
		if v != nil {
			stmt = *v
		}
	default:
		pred, ctx, err := BuildFilters(raw, cfg, nil)
		if err != nil {
			cfg.Logger().Debug("filter rejected", "error", err)
			return nil, err
		}
		cfg.Logger().Debug("filter compiled",
			"fields", ctx.Fields(),
			"params", len(ctx.Params),
			"queries", len(queries))
		stmt = Statement{Predicate: pred, Params: ctx.Params}
	}

	out := make([]Q, len(queries))
	for i, q := range queries {
		if stmt.Predicate == nil {
			out[i] = q
			continue
		}
		out[i] = q.Where(stmt.Predicate).Params(stmt.Params)
	}
	return out, nil
}

// ApplySorting compiles raw sort input once and attaches the ordering to
// every query. raw must be a list; empty input applies the Config's
// DefaultSort, or returns the queries unchanged when there is none.
func ApplySorting[Q Sortable[Q]](cfg *Config, raw any, queries ...Q) ([]Q, error) {
	order, ctx, err := BuildSorting(raw, cfg, nil)
	if err != nil {
		cfg.Logger().Debug("sort rejected", "error", err)
		return nil, err
	}
	cfg.Logger().Debug("sort compiled",
		"fields", ctx.Fields(),
		"keys", len(order),
		"queries", len(queries))

	out := make([]Q, len(queries))
	for i, q := range queries {
		if len(order) == 0 {
			out[i] = q
			continue
		}
		out[i] = q.OrderBy(order...)
	}
	return out, nil
}
