package rules

import (
	"bytes"
	"fmt"

	"github.com/roach88/sift/internal/ir"
)

// JoinFilters combines raw filter fragments under one condition ("and" when
// condition is empty).
//
// Fragments may be decoded dictionaries, JSON text (string or []byte) or
// parsed Rules. nil and empty fragments are dropped. The result is nil when
// nothing remains and the lone fragment itself when only one remains.
func JoinFilters(condition string, fragments ...any) (any, error) {
	if condition == "" {
		condition = ConditionAnd
	}

	kept := make([]any, 0, len(fragments))
	for i, fragment := range fragments {
		f, err := normalizeFragment(fragment)
		if err != nil {
			return nil, fmt.Errorf("fragment %d: %w", i, err)
		}
		if f != nil {
			kept = append(kept, f)
		}
	}

	switch len(kept) {
	case 0:
		return nil, nil
	case 1:
		return kept[0], nil
	}
	return map[string]any{
		"condition": condition,
		"rules":     kept,
	}, nil
}

// StringJoinFilters is JoinFilters with canonical JSON text output.
// It returns "" when nothing remains to join.
func StringJoinFilters(condition string, fragments ...any) (string, error) {
	joined, err := JoinFilters(condition, fragments...)
	if err != nil {
		return "", err
	}
	if joined == nil {
		return "", nil
	}
	if _, ok := joined.(Rule); ok {
		return "", NewInvalidShapeError("parsed rules cannot be rendered as JSON")
	}
	out, err := ir.MarshalCanonical(joined)
	if err != nil {
		return "", fmt.Errorf("marshal joined filter: %w", err)
	}
	return string(out), nil
}

func normalizeFragment(fragment any) (any, error) {
	switch f := fragment.(type) {
	case nil:
		return nil, nil
	case Rule:
		return f, nil
	case map[string]any:
		if len(f) == 0 {
			return nil, nil
		}
		return f, nil
	case string:
		return decodeFragment([]byte(f))
	case []byte:
		return decodeFragment(f)
	default:
		return nil, NewInvalidShapeError("filter fragment must be an object or JSON text, got %T", fragment)
	}
}

func decodeFragment(text []byte) (any, error) {
	text = bytes.TrimSpace(text)
	if len(text) == 0 {
		return nil, nil
	}
	v, err := ir.DecodeJSON(text)
	if err != nil {
		return nil, NewInvalidShapeError("filter fragment is not valid JSON: %v", err)
	}
	switch m := v.(type) {
	case nil:
		return nil, nil
	case map[string]any:
		return normalizeFragment(m)
	default:
		return nil, NewInvalidShapeError("filter fragment must decode to an object, got %T", v)
	}
}
