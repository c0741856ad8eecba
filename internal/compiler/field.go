package compiler

import (
	"maps"
	"slices"

	"github.com/roach88/sift/internal/queryir"
	"github.com/roach88/sift/internal/rules"
)

// Transform converts an incoming rule value before it is bound.
// A nil Transform is the identity.
type Transform func(value any) (any, error)

// FieldMap binds a logical field name to a physical column and its policy.
//
// Name is case-sensitive and unique within a Config. FieldMaps are built
// once per registry and never modified afterwards.
type FieldMap struct {
	Name   string
	Column queryir.Column

	// Transform is applied to the value of every predicate on this field,
	// element-wise when the value is a sequence.
	Transform Transform

	// BlockedOperators lists operator codes this field refuses.
	BlockedOperators []string
}

// IsBlocked reports whether operator is disallowed for the field.
func (f FieldMap) IsBlocked(operator string) bool {
	return slices.Contains(f.BlockedOperators, operator)
}

// TransformValue applies the field transform to value.
//
// Sequences are transformed element by element into a new slice. Nested
// rule values (dictionaries and parsed rules, as used by any/all) pass
// through untouched; their own predicates carry their own transforms.
func (f FieldMap) TransformValue(value any) (any, error) {
	if f.Transform == nil {
		return value, nil
	}
	switch value.(type) {
	case map[string]any, rules.Rule:
		return value, nil
	}
	if !isSequence(value) {
		return f.Transform(value)
	}
	elems := asSequence(value)
	out := make([]any, len(elems))
	for i, elem := range elems {
		t, err := f.Transform(elem)
		if err != nil {
			return nil, err
		}
		out[i] = t
	}
	return out, nil
}

// FieldsFromColumns adapts a flat name-to-column map into FieldMaps with
// identity transforms and no blocked operators. The result is sorted by
// name.
func FieldsFromColumns(columns map[string]queryir.Column) []FieldMap {
	fields := make([]FieldMap, 0, len(columns))
	for _, name := range slices.Sorted(maps.Keys(columns)) {
		fields = append(fields, FieldMap{Name: name, Column: columns[name]})
	}
	return fields
}
