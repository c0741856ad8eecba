package queryir

import (
	"fmt"
	"slices"
)

// ValidationResult contains the problems found in a query.
type ValidationResult struct {
	// IsValid is true when the query can be rendered and executed as-is.
	IsValid bool

	// Problems lists every defect found. Empty when IsValid is true.
	Problems []string
}

// Validate checks that a query is self-consistent before rendering.
//
// Rules:
//  1. From and every column name are non-empty
//  2. Every parameter referenced by the filter has a binding
//  3. Any predicates target a column with a Relation
//  4. Not wraps a non-nil predicate
//
// Unused bindings are not a problem; queries often carry params for
// fragments attached elsewhere.
//
// Validate is a pure function with no side effects. It reports all
// problems instead of stopping at the first.
func Validate(q Select) ValidationResult {
	v := &validator{
		problems: []string{},
		bindings: q.Bindings,
	}
	if q.From == "" {
		v.addProblem("query has no FROM table")
	}
	if q.Filter != nil {
		v.validatePredicate(q.Filter)
	}
	for i, key := range q.Order {
		v.validateColumn(key.Column, fmt.Sprintf("order[%d]", i))
	}

	return ValidationResult{
		IsValid:  len(v.problems) == 0,
		Problems: v.problems,
	}
}

// ReferencedParams returns the parameter names used by p, sorted.
func ReferencedParams(p Predicate) []string {
	v := &validator{seen: map[string]bool{}}
	v.validatePredicate(p)
	names := make([]string, 0, len(v.seen))
	for name := range v.seen {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// validator accumulates problems during traversal.
type validator struct {
	problems []string
	bindings map[string]any
	seen     map[string]bool
}

func (v *validator) addProblem(format string, args ...any) {
	v.problems = append(v.problems, fmt.Sprintf(format, args...))
}

func (v *validator) validatePredicate(p Predicate) {
	switch pred := p.(type) {
	case nil:
		v.addProblem("nil predicate in filter tree")
	case Compare:
		v.validateColumn(pred.Column, string(pred.Op))
		v.validateParam(pred.Param)
	case Like:
		v.validateColumn(pred.Column, "like")
		v.validateParam(pred.Param)
	case In:
		v.validateColumn(pred.Column, "in")
		v.validateParam(pred.Param)
	case IsNull:
		v.validateColumn(pred.Column, "is null")
	case IsEmpty:
		v.validateColumn(pred.Column, "is empty")
	case Any:
		v.validateColumn(pred.Column, "any")
		if pred.Column.Relation == nil {
			v.addProblem("any on column %q has no relation", pred.Column.Qualified())
		}
		if pred.Predicate != nil {
			v.validatePredicate(pred.Predicate)
		}
	case And:
		for _, sub := range pred.Predicates {
			v.validatePredicate(sub)
		}
	case Or:
		for _, sub := range pred.Predicates {
			v.validatePredicate(sub)
		}
	case Not:
		v.validatePredicate(pred.Predicate)
	case True:
	default:
		v.addProblem("unknown predicate type: %T", p)
	}
}

func (v *validator) validateColumn(c Column, where string) {
	if c.Name == "" {
		v.addProblem("%s: column has no name", where)
	}
	if c.Relation != nil && (c.Relation.Table == "" || c.Relation.ForeignKey == "") {
		v.addProblem("%s: relation on column %q is incomplete", where, c.Qualified())
	}
}

func (v *validator) validateParam(name string) {
	if v.seen != nil {
		v.seen[name] = true
		return
	}
	if name == "" {
		v.addProblem("predicate references an unnamed parameter")
		return
	}
	if _, ok := v.bindings[name]; !ok {
		v.addProblem("parameter %q has no binding", name)
	}
}
