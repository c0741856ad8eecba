package compiler

import (
	"github.com/roach88/sift/internal/queryir"
	"github.com/roach88/sift/internal/rules"
)

// Condition joins compiled child predicates.
// Arity is enforced by Join, never by the compiler.
type Condition interface {
	Name() string
	Join(children []queryir.Predicate) (queryir.Predicate, error)
}

// DefaultConditions returns a fresh list of and, or and not.
func DefaultConditions() []Condition {
	return []Condition{AndCondition{}, OrCondition{}, NotCondition{}}
}

// AndCondition requires at least one child. A single child is returned as-is.
type AndCondition struct{}

func (AndCondition) Name() string { return rules.ConditionAnd }

func (AndCondition) Join(children []queryir.Predicate) (queryir.Predicate, error) {
	switch len(children) {
	case 0:
		return nil, rules.NewInvalidArityError(rules.ConditionAnd, 0, "at least 1")
	case 1:
		return children[0], nil
	}
	return queryir.And{Predicates: children}, nil
}

// OrCondition requires at least one child. A single child is returned as-is.
type OrCondition struct{}

func (OrCondition) Name() string { return rules.ConditionOr }

func (OrCondition) Join(children []queryir.Predicate) (queryir.Predicate, error) {
	switch len(children) {
	case 0:
		return nil, rules.NewInvalidArityError(rules.ConditionOr, 0, "at least 1")
	case 1:
		return children[0], nil
	}
	return queryir.Or{Predicates: children}, nil
}

// NotCondition requires exactly one child.
type NotCondition struct{}

func (NotCondition) Name() string { return rules.ConditionNot }

func (NotCondition) Join(children []queryir.Predicate) (queryir.Predicate, error) {
	if len(children) != 1 {
		return nil, rules.NewInvalidArityError(rules.ConditionNot, len(children), "exactly 1")
	}
	return queryir.Not{Predicate: children[0]}, nil
}
