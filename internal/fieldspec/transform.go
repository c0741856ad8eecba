package fieldspec

import (
	"encoding/json"
	"fmt"
	"maps"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/roach88/sift/internal/compiler"
)

// transforms maps transform names to implementations. identity is nil.
var transforms = map[string]compiler.Transform{
	"identity": nil,
	"lower":    lowerTransform,
	"upper":    upperTransform,
	"trim":     trimTransform,
	"int":      intTransform,
	"float":    floatTransform,
	"uuid":     uuidTransform,
}

// TransformNames returns the known transform names, sorted.
func TransformNames() []string {
	return slices.Sorted(maps.Keys(transforms))
}

// TransformByName resolves a named transform. The empty name is identity.
func TransformByName(name string) (compiler.Transform, error) {
	if name == "" {
		return nil, nil
	}
	t, ok := transforms[name]
	if !ok {
		return nil, fmt.Errorf("unknown transform %q", name)
	}
	return t, nil
}

func asString(v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("expected string, got %T", v)
	}
	return s, nil
}

// Casers are stateful, so each call builds its own.
func lowerTransform(v any) (any, error) {
	s, err := asString(v)
	if err != nil {
		return nil, err
	}
	return cases.Lower(language.Und).String(s), nil
}

func upperTransform(v any) (any, error) {
	s, err := asString(v)
	if err != nil {
		return nil, err
	}
	return cases.Upper(language.Und).String(s), nil
}

func trimTransform(v any) (any, error) {
	s, err := asString(v)
	if err != nil {
		return nil, err
	}
	return strings.TrimSpace(s), nil
}

func intTransform(v any) (any, error) {
	switch n := v.(type) {
	case int64:
		return n, nil
	case int:
		return int64(n), nil
	case float64:
		if n != math.Trunc(n) || math.IsInf(n, 0) {
			return nil, fmt.Errorf("%v is not an integer", n)
		}
		if n < -(1<<63) || n >= 1<<63 {
			return nil, fmt.Errorf("%v is out of range for int64", n)
		}
		return int64(n), nil
	case json.Number:
		return n.Int64()
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(n), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%q is not an integer", n)
		}
		return i, nil
	default:
		return nil, fmt.Errorf("cannot convert %T to int", v)
	}
}

func floatTransform(v any) (any, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case int64:
		return float64(n), nil
	case int:
		return float64(n), nil
	case json.Number:
		return n.Float64()
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return nil, fmt.Errorf("%q is not a number", n)
		}
		return f, nil
	default:
		return nil, fmt.Errorf("cannot convert %T to float", v)
	}
}

// uuidTransform accepts any form uuid.Parse does and binds the canonical
// lowercase hyphenated string.
func uuidTransform(v any) (any, error) {
	s, err := asString(v)
	if err != nil {
		return nil, err
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return nil, fmt.Errorf("invalid uuid %q: %w", s, err)
	}
	return u.String(), nil
}
