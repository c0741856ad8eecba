package compiler

import (
	"fmt"
	"reflect"

	"github.com/roach88/sift/internal/queryir"
)

// Operator turns one predicate into a target predicate.
//
// Value-bearing operators allocate their parameter names through ctx so
// names stay unique across the whole compile call.
type Operator interface {
	Code() string
	Apply(cfg *Config, ctx *Context, field FieldMap, value any) (queryir.Predicate, error)
}

// OperatorFunc adapts a function into an Operator registered under code.
func OperatorFunc(code string, fn func(cfg *Config, ctx *Context, field FieldMap, value any) (queryir.Predicate, error)) Operator {
	return funcOperator{code: code, fn: fn}
}

type funcOperator struct {
	code string
	fn   func(*Config, *Context, FieldMap, any) (queryir.Predicate, error)
}

func (o funcOperator) Code() string { return o.code }

func (o funcOperator) Apply(cfg *Config, ctx *Context, field FieldMap, value any) (queryir.Predicate, error) {
	return o.fn(cfg, ctx, field, value)
}

// Default operator codes.
const (
	OpEqual              = "equal"
	OpNotEqual           = "notequal"
	OpIEqual             = "iequal"
	OpINotEqual          = "inotequal"
	OpLike               = "like"
	OpILike              = "ilike"
	OpContains           = "contains"
	OpIContains          = "icontains"
	OpStartsWith         = "startswith"
	OpIStartsWith        = "istartswith"
	OpEndsWith           = "endswith"
	OpIEndsWith          = "iendswith"
	OpIn                 = "in"
	OpNotIn              = "notin"
	OpGreaterThan        = "greaterthan"
	OpGreaterThanOrEqual = "greaterthanorequal"
	OpLessThan           = "lessthan"
	OpLessThanOrEqual    = "lessthanorequal"
	OpIsNull             = "isnull"
	OpIsNotNull          = "isnotnull"
	OpIsEmpty            = "isempty"
	OpIsNotEmpty         = "isnotempty"
	OpAny                = "any"
	OpAll                = "all"
)

// DefaultOperators returns a fresh list of the built-in operators.
func DefaultOperators() []Operator {
	return []Operator{
		CompareOperator{code: OpEqual, op: queryir.OpEq},
		CompareOperator{code: OpNotEqual, op: queryir.OpNe},
		CompareOperator{code: OpIEqual, op: queryir.OpEq, fold: true},
		CompareOperator{code: OpINotEqual, op: queryir.OpNe, fold: true},
		LikeOperator{code: OpLike},
		LikeOperator{code: OpILike, caseInsensitive: true},
		LikeOperator{code: OpContains, prefix: "%", suffix: "%"},
		LikeOperator{code: OpIContains, prefix: "%", suffix: "%", caseInsensitive: true},
		LikeOperator{code: OpStartsWith, suffix: "%"},
		LikeOperator{code: OpIStartsWith, suffix: "%", caseInsensitive: true},
		LikeOperator{code: OpEndsWith, prefix: "%"},
		LikeOperator{code: OpIEndsWith, prefix: "%", caseInsensitive: true},
		InOperator{code: OpIn},
		InOperator{code: OpNotIn, negate: true},
		CompareOperator{code: OpGreaterThan, op: queryir.OpGt},
		CompareOperator{code: OpGreaterThanOrEqual, op: queryir.OpGte},
		CompareOperator{code: OpLessThan, op: queryir.OpLt},
		CompareOperator{code: OpLessThanOrEqual, op: queryir.OpLte},
		NullOperator{code: OpIsNull},
		NullOperator{code: OpIsNotNull, negate: true},
		EmptyOperator{code: OpIsEmpty},
		EmptyOperator{code: OpIsNotEmpty, negate: true},
		AnyOperator{code: OpAny},
		AnyOperator{code: OpAll, all: true},
	}
}

// CompareOperator compares the column against one bound parameter.
// With fold set both sides are lowercased.
type CompareOperator struct {
	code string
	op   queryir.CompareOp
	fold bool
}

// NewCompareOperator creates a comparison operator registered under code.
func NewCompareOperator(code string, op queryir.CompareOp, fold bool) CompareOperator {
	return CompareOperator{code: code, op: op, fold: fold}
}

func (o CompareOperator) Code() string { return o.code }

func (o CompareOperator) Apply(_ *Config, ctx *Context, field FieldMap, value any) (queryir.Predicate, error) {
	return queryir.Compare{
		Column: field.Column,
		Op:     o.op,
		Param:  ctx.AddParam(field.Name, value),
		Fold:   o.fold,
	}, nil
}

// LikeOperator pattern-matches the column. The bound pattern is the value
// wrapped in prefix and suffix; with neither the value is used verbatim.
type LikeOperator struct {
	code            string
	prefix, suffix  string
	caseInsensitive bool
}

func (o LikeOperator) Code() string { return o.code }

func (o LikeOperator) Apply(_ *Config, ctx *Context, field FieldMap, value any) (queryir.Predicate, error) {
	pattern := value
	if o.prefix != "" || o.suffix != "" {
		pattern = fmt.Sprintf("%s%v%s", o.prefix, value, o.suffix)
	}
	return queryir.Like{
		Column:          field.Column,
		Param:           ctx.AddParam(field.Name, pattern),
		CaseInsensitive: o.caseInsensitive,
	}, nil
}

// InOperator tests membership against a single sequence-valued parameter.
// A scalar value is bound as a one-element sequence.
type InOperator struct {
	code   string
	negate bool
}

func (o InOperator) Code() string { return o.code }

func (o InOperator) Apply(_ *Config, ctx *Context, field FieldMap, value any) (queryir.Predicate, error) {
	return queryir.In{
		Column: field.Column,
		Param:  ctx.AddParam(field.Name, asSequence(value)),
		Negate: o.negate,
	}, nil
}

// isSequence reports whether value is a slice or array other than []byte.
func isSequence(value any) bool {
	switch value.(type) {
	case nil, []byte:
		return false
	case []any:
		return true
	}
	k := reflect.ValueOf(value).Kind()
	return k == reflect.Slice || k == reflect.Array
}

func asSequence(value any) []any {
	switch v := value.(type) {
	case []any:
		return v
	case nil:
		return []any{}
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return []any{value}
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out
}

// NullOperator tests the column for NULL. It binds nothing.
type NullOperator struct {
	code   string
	negate bool
}

func (o NullOperator) Code() string { return o.code }

func (o NullOperator) Apply(_ *Config, _ *Context, field FieldMap, _ any) (queryir.Predicate, error) {
	return queryir.IsNull{Column: field.Column, Negate: o.negate}, nil
}

// EmptyOperator tests the trimmed column for the empty string. It binds nothing.
type EmptyOperator struct {
	code   string
	negate bool
}

func (o EmptyOperator) Code() string { return o.code }

func (o EmptyOperator) Apply(_ *Config, _ *Context, field FieldMap, _ any) (queryir.Predicate, error) {
	return queryir.IsEmpty{Column: field.Column, Negate: o.negate}, nil
}

// AnyOperator applies a nested rule to the related rows of a collection
// field. The value is a filter in the same rule syntax and is compiled
// with the caller's Context, so its parameters share the call's counters.
//
//	any: at least one related row satisfies the rule
//	all: no related row fails it, Not(Any(Not(rule)))
//
// A nil value compiles the nested rule as always-true. The nested rule is
// held to the Config's limits on its own.
type AnyOperator struct {
	code string
	all  bool
}

func (o AnyOperator) Code() string { return o.code }

func (o AnyOperator) Apply(cfg *Config, ctx *Context, field FieldMap, value any) (queryir.Predicate, error) {
	var inner queryir.Predicate = queryir.True{}
	if value != nil {
		rule, err := cfg.Parser().ParseFilter(value)
		if err != nil {
			return nil, fmt.Errorf("%s on %s: %w", o.code, field.Name, err)
		}
		if rule != nil {
			if err := cfg.limits.check(rule); err != nil {
				return nil, err
			}
			compiled, err := compileRule(rule, cfg, ctx)
			if err != nil {
				return nil, err
			}
			if compiled != nil {
				inner = compiled
			}
		}
	}

	if !o.all {
		return queryir.Any{Column: field.Column, Predicate: inner}, nil
	}
	return queryir.Not{Predicate: queryir.Any{
		Column:    field.Column,
		Predicate: queryir.Not{Predicate: inner},
	}}, nil
}
