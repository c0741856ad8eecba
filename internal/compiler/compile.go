package compiler

import (
	"fmt"

	"github.com/roach88/sift/internal/queryir"
	"github.com/roach88/sift/internal/rules"
)

// CompileFilter compiles a parsed rule into a target predicate.
//
// Parameters are allocated in ctx in left-to-right traversal order. On
// error ctx is left exactly as it was: compilation runs against a scratch
// copy that is committed only on success. A nil rule compiles to a nil
// predicate. A nil ctx compiles against a fresh Context whose bindings the
// caller cannot see. Trees over the Config's MaxRules or MaxDepth are rejected
// before any parameter is allocated.
func CompileFilter(rule rules.Rule, cfg *Config, ctx *Context) (queryir.Predicate, error) {
	if ctx == nil {
		ctx = NewContext()
	}
	if err := cfg.limits.check(rule); err != nil {
		return nil, err
	}
	scratch := ctx.clone()
	pred, err := compileRule(rule, cfg, scratch)
	if err != nil {
		return nil, err
	}
	ctx.commit(scratch)
	return pred, nil
}

// CompileSort compiles sort keys into ordering keys, primary first.
// Every resolved field is recorded in ctx.IncludedFields.
func CompileSort(keys []rules.SortKey, cfg *Config, ctx *Context) ([]queryir.OrderKey, error) {
	if ctx == nil {
		ctx = NewContext()
	}
	scratch := ctx.clone()
	out := make([]queryir.OrderKey, 0, len(keys))
	for _, key := range keys {
		field, err := cfg.Field(key.Field)
		if err != nil {
			return nil, err
		}
		scratch.Include(field.Name)

		direction, err := cfg.Direction(key.Direction)
		if err != nil {
			return nil, err
		}
		out = append(out, direction.Apply(field))
	}
	ctx.commit(scratch)
	return out, nil
}

// compileRule is the recursive walk. It mutates ctx directly; callers that
// need atomicity pass a scratch context.
func compileRule(rule rules.Rule, cfg *Config, ctx *Context) (queryir.Predicate, error) {
	switch r := rule.(type) {
	case nil:
		return nil, nil
	case rules.Predicate:
		return compilePredicate(r, cfg, ctx)
	case rules.Group:
		return compileGroup(r, cfg, ctx)
	default:
		return nil, rules.NewInvalidShapeError("unsupported rule type %T", rule)
	}
}

func compilePredicate(p rules.Predicate, cfg *Config, ctx *Context) (queryir.Predicate, error) {
	field, err := cfg.Field(p.Field)
	if err != nil {
		return nil, err
	}

	// Per-field restrictions are checked before the operator is resolved.
	if field.IsBlocked(p.Operator) {
		return nil, rules.NewBlockedOperatorError(field.Name, p.Operator)
	}

	op, err := cfg.Operator(p.Operator)
	if err != nil {
		return nil, err
	}

	value := p.Value
	if !rules.IsValueless(p.Operator) {
		value, err = field.TransformValue(value)
		if err != nil {
			return nil, rules.NewInvalidShapeError("field %s: invalid value: %v", field.Name, err)
		}
	}

	ctx.Include(field.Name)
	pred, err := op.Apply(cfg, ctx, field, value)
	if err != nil {
		return nil, err
	}
	if pred == nil {
		return nil, fmt.Errorf("operator %s returned no predicate for field %s", op.Code(), field.Name)
	}
	return pred, nil
}

func compileGroup(g rules.Group, cfg *Config, ctx *Context) (queryir.Predicate, error) {
	children := make([]queryir.Predicate, 0, len(g.Rules))
	for _, child := range g.Rules {
		pred, err := compileRule(child, cfg, ctx)
		if err != nil {
			return nil, err
		}
		if pred != nil {
			children = append(children, pred)
		}
	}

	cond, err := cfg.Condition(g.Condition)
	if err != nil {
		return nil, err
	}
	return cond.Join(children)
}
