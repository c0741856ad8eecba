package compiler

import "github.com/roach88/sift/internal/rules"

// limits bounds the size of a filter tree.
//
// Filter input usually comes straight from a request, so a tree with
// thousands of predicates or deep nesting would turn into an equally large
// SQL statement. Both counters are checked in one walk before compiling.
//
// Two different shapes are caught:
//   - maxRules: wide trees (one group with many children)
//   - maxDepth: deep trees (groups nested inside groups)
type limits struct {
	maxRules int
	maxDepth int
}

// check walks rule and returns a LimitExceeded error on the first limit
// crossed. Zero limits are not enforced.
func (l limits) check(rule rules.Rule) error {
	if l.maxRules <= 0 && l.maxDepth <= 0 {
		return nil
	}
	count := 0
	return l.walk(rule, 1, &count)
}

func (l limits) walk(rule rules.Rule, depth int, count *int) error {
	if rule == nil {
		return nil
	}
	if l.maxDepth > 0 && depth > l.maxDepth {
		return rules.NewLimitExceededError("depth", depth, l.maxDepth)
	}
	*count++
	if l.maxRules > 0 && *count > l.maxRules {
		return rules.NewLimitExceededError("rules", *count, l.maxRules)
	}

	g, ok := rule.(rules.Group)
	if !ok {
		return nil
	}
	for _, child := range g.Rules {
		if err := l.walk(child, depth+1, count); err != nil {
			return err
		}
	}
	return nil
}
