package rules

import (
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// Syntax recognizes one dictionary shape of filter rule.
//
// Parse returns ok=false when raw does not have this syntax's shape, so the
// parser can try the next syntax. A recognized shape with bad content is an
// error, not a miss.
type Syntax interface {
	Parse(p *Parser, raw map[string]any) (rule Rule, ok bool, err error)
}

// DefaultSyntaxes returns the built-in syntaxes in recognition order:
// groups first, then predicates.
func DefaultSyntaxes() []Syntax {
	return []Syntax{GroupSyntax{}, PredicateSyntax{}}
}

// Parser turns loosely typed dictionaries into the Rule AST.
//
// The parser is purely structural. It never looks at field, operator or
// condition registries; unknown codes surface at compile time.
type Parser struct {
	// Syntaxes are tried in order; the first match wins.
	Syntaxes []Syntax

	// Lenient drops group children that match no syntax instead of failing.
	Lenient bool
}

// NewParser creates a parser over the given syntaxes, or DefaultSyntaxes
// when none are given.
func NewParser(syntaxes ...Syntax) *Parser {
	if len(syntaxes) == 0 {
		syntaxes = DefaultSyntaxes()
	}
	return &Parser{Syntaxes: syntaxes}
}

// TryParse tries each syntax in order against raw.
// ok=false with a nil error means no syntax recognized the shape.
func (p *Parser) TryParse(raw map[string]any) (Rule, bool, error) {
	for _, syntax := range p.Syntaxes {
		rule, ok, err := syntax.Parse(p, raw)
		if err != nil {
			return nil, false, err
		}
		if ok {
			return rule, true, nil
		}
	}
	return nil, false, nil
}

// ParseFilter parses a top-level filter.
//
// A Rule value is returned as-is. nil and an empty map parse to a nil Rule.
// Anything else must be a dictionary recognized by one of the syntaxes.
func (p *Parser) ParseFilter(raw any) (Rule, error) {
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case Rule:
		return v, nil
	case map[string]any:
		if len(v) == 0 {
			return nil, nil
		}
		rule, ok, err := p.TryParse(v)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, NewInvalidShapeError("filter matches no known rule syntax")
		}
		return rule, nil
	default:
		return nil, NewInvalidShapeError("filter must be an object, got %T", raw)
	}
}

// ParseChild parses one element of a group's rules list.
// It returns a nil Rule when the child is dropped in lenient mode.
func (p *Parser) ParseChild(raw any, index int) (Rule, error) {
	if r, ok := raw.(Rule); ok {
		return r, nil
	}
	m, isMap := raw.(map[string]any)
	if isMap {
		rule, ok, err := p.TryParse(m)
		if err != nil {
			return nil, err
		}
		if ok {
			return rule, nil
		}
	}
	if p.Lenient {
		return nil, nil
	}
	if !isMap {
		return nil, NewInvalidShapeError("rules[%d] must be an object, got %T", index, raw)
	}
	return nil, NewInvalidShapeError("rules[%d] matches no known rule syntax", index)
}

// GroupSyntax recognizes {"condition": ..., "rules": [...]}.
type GroupSyntax struct{}

type groupShape struct {
	Condition string `mapstructure:"condition"`
	Rules     []any  `mapstructure:"rules"`
}

// Parse implements Syntax.
func (GroupSyntax) Parse(p *Parser, raw map[string]any) (Rule, bool, error) {
	if _, ok := raw["condition"]; !ok {
		return nil, false, nil
	}
	if _, ok := raw["rules"]; !ok {
		return nil, false, NewMissingPropertyError("rules")
	}
	if raw["rules"] == nil {
		return nil, false, NewInvalidShapeError("group: rules must be a list")
	}

	var shape groupShape
	if err := decodeShape(raw, &shape); err != nil {
		return nil, false, NewInvalidShapeError("group: %v", err)
	}

	group := Group{Condition: shape.Condition}
	for i, child := range shape.Rules {
		rule, err := p.ParseChild(child, i)
		if err != nil {
			return nil, false, err
		}
		if rule != nil {
			group.Rules = append(group.Rules, rule)
		}
	}
	return group, true, nil
}

// PredicateSyntax recognizes {"field": ..., "operator": ..., "value": ...}.
type PredicateSyntax struct{}

type predicateShape struct {
	Field    string `mapstructure:"field"`
	Operator string `mapstructure:"operator"`
	Value    any    `mapstructure:"value"`
}

// Parse implements Syntax.
func (PredicateSyntax) Parse(_ *Parser, raw map[string]any) (Rule, bool, error) {
	if _, ok := raw["field"]; !ok {
		return nil, false, nil
	}
	if _, ok := raw["operator"]; !ok {
		return nil, false, NewMissingPropertyError("operator")
	}

	var shape predicateShape
	if err := decodeShape(raw, &shape); err != nil {
		return nil, false, NewInvalidShapeError("predicate: %v", err)
	}

	if IsValueless(shape.Operator) {
		return Predicate{Field: shape.Field, Operator: shape.Operator}, true, nil
	}
	if _, ok := raw["value"]; !ok {
		return nil, false, NewMissingPropertyError("value")
	}
	return Predicate{Field: shape.Field, Operator: shape.Operator, Value: raw["value"]}, true, nil
}

type sortShape struct {
	Field     string `mapstructure:"field"`
	Property  string `mapstructure:"property"`
	Direction string `mapstructure:"direction"`
}

// ParseSort parses a list of sort rules.
//
// Each element is a SortKey or a dictionary with "field" (or the legacy alias
// "property") and an optional "direction" defaulting to asc. nil parses to no keys.
func ParseSort(raw any) ([]SortKey, error) {
	var items []any
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case []any:
		items = v
	case []map[string]any:
		items = make([]any, len(v))
		for i := range v {
			items[i] = v[i]
		}
	case []SortKey:
		items = make([]any, len(v))
		for i := range v {
			items[i] = v[i]
		}
	default:
		return nil, NewInvalidShapeError("sort rules must be a list, got %T", raw)
	}

	keys := make([]SortKey, 0, len(items))
	for i, item := range items {
		key, err := parseSortKey(item, i)
		if err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, nil
}

func parseSortKey(item any, index int) (SortKey, error) {
	if key, ok := item.(SortKey); ok {
		return NormalizeSortKey(key), nil
	}
	m, ok := item.(map[string]any)
	if !ok {
		return SortKey{}, NewInvalidShapeError("sort[%d] must be an object, got %T", index, item)
	}

	var shape sortShape
	if err := decodeShape(m, &shape); err != nil {
		return SortKey{}, NewInvalidShapeError("sort[%d]: %v", index, err)
	}

	_, hasField := m["field"]
	if !hasField {
		if _, hasProperty := m["property"]; !hasProperty {
			return SortKey{}, NewMissingPropertyError("field")
		}
		shape.Field = shape.Property
	}

	direction := ""
	if d, ok := m["direction"]; ok && d != nil {
		direction = shape.Direction
	}
	return NormalizeSortKey(SortKey{Field: shape.Field, Direction: direction}), nil
}

// NormalizeSortKey lowercases the direction and defaults an empty one to asc.
func NormalizeSortKey(key SortKey) SortKey {
	key.Direction = strings.ToLower(key.Direction)
	if key.Direction == "" {
		key.Direction = DirectionAsc
	}
	return key
}

// decodeShape decodes a raw dictionary into a shape struct without weak typing,
// so a string where a list belongs is rejected.
func decodeShape(raw map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName: "mapstructure",
		Result:  out,
	})
	if err != nil {
		return fmt.Errorf("build decoder: %w", err)
	}
	return dec.Decode(raw)
}
