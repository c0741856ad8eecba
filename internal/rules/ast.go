package rules

// Rule is a sealed interface for parsed filter rules.
// Only Predicate and Group implement it.
type Rule interface {
	ruleNode()
}

// Predicate is a leaf rule: field, operator and the raw value to compare.
// Value is nil for the value-less operators.
type Predicate struct {
	Field    string
	Operator string
	Value    any
}

func (Predicate) ruleNode() {}

// Group joins child rules with a condition.
// Children are owned exclusively by the group; the tree never shares nodes.
type Group struct {
	Condition string
	Rules     []Rule
}

func (Group) ruleNode() {}

// SortKey is one parsed ordering rule. Direction is lowercased.
type SortKey struct {
	Field     string
	Direction string
}

// Well-known condition and direction codes.
const (
	ConditionAnd = "and"
	ConditionOr  = "or"
	ConditionNot = "not"

	DirectionAsc  = "asc"
	DirectionDesc = "desc"
)

// valuelessOperators never read a value, so predicates using them may omit it.
var valuelessOperators = map[string]bool{
	"isnull":     true,
	"isnotnull":  true,
	"isempty":    true,
	"isnotempty": true,
}

// IsValueless reports whether operator ignores the predicate value.
func IsValueless(operator string) bool {
	return valuelessOperators[operator]
}
