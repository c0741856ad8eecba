package rules

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// IDDecoder maps an encoded id value (scalar or list) to its decoded form.
type IDDecoder func(value any) (any, error)

// ParseIDFields returns a copy of a raw filter with every id value decoded.
//
// A field is an id field when its last dot-separated segment is "id",
// case-insensitively: "id", "ID", "user.id" and "company.user.id" qualify;
// "UserId", "uuid" and "id.user" do not. Nested dictionaries under "rules"
// and dictionary values (any/all sub-rules) are walked recursively.
// The input is never mutated.
func ParseIDFields(raw map[string]any, decode IDDecoder) (map[string]any, error) {
	out := make(map[string]any, len(raw))
	for k, v := range raw {
		out[k] = v
	}

	if children, ok := raw["rules"].([]any); ok {
		decoded := make([]any, len(children))
		for i, child := range children {
			m, ok := child.(map[string]any)
			if !ok {
				decoded[i] = child
				continue
			}
			d, err := ParseIDFields(m, decode)
			if err != nil {
				return nil, fmt.Errorf("rules[%d]: %w", i, err)
			}
			decoded[i] = d
		}
		out["rules"] = decoded
		return out, nil
	}

	field, _ := raw["field"].(string)
	value, hasValue := raw["value"]
	if field == "" || !hasValue {
		return out, nil
	}

	if nested, ok := value.(map[string]any); ok {
		d, err := ParseIDFields(nested, decode)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", field, err)
		}
		out["value"] = d
		return out, nil
	}

	if isIDField(field) {
		d, err := decode(value)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", field, err)
		}
		out["value"] = d
	}
	return out, nil
}

func isIDField(field string) bool {
	segments := strings.Split(strings.ToLower(field), ".")
	return segments[len(segments)-1] == "id"
}

// UUIDDecoder is an IDDecoder that validates UUID strings and returns them in
// canonical lowercase hyphenated form. Lists are decoded element-wise; nil
// passes through.
func UUIDDecoder(value any) (any, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case string:
		id, err := uuid.Parse(v)
		if err != nil {
			return nil, fmt.Errorf("invalid uuid %q: %w", v, err)
		}
		return id.String(), nil
	case []any:
		out := make([]any, len(v))
		for i, elem := range v {
			d, err := UUIDDecoder(elem)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			out[i] = d
		}
		return out, nil
	default:
		return nil, fmt.Errorf("uuid must be a string, got %T", value)
	}
}
