package compiler

import (
	"io"
	"log/slog"
	"maps"
	"slices"

	"github.com/roach88/sift/internal/rules"
)

// Options describes the registries and policies of a Config.
type Options struct {
	Fields     []FieldMap
	Operators  []Operator
	Conditions []Condition
	Directions []Direction

	// Syntaxes are the rule shapes the parser recognizes, in order.
	// nil means rules.DefaultSyntaxes.
	Syntaxes []rules.Syntax

	// DefaultSort is applied when sort input is empty. nil leaves the
	// query unordered.
	DefaultSort []rules.SortKey

	// LenientGroups drops group children that match no syntax instead of
	// failing the compile.
	LenientGroups bool

	// MaxRules caps the number of rules (predicates and groups) in one
	// filter. Zero is unlimited.
	MaxRules int

	// MaxDepth caps group nesting. A bare predicate has depth 1. Zero is
	// unlimited.
	MaxDepth int

	// Logger receives one debug record per compile. nil discards.
	Logger *slog.Logger
}

// DefaultOptions returns options with the built-in operators, conditions
// and directions over fields.
func DefaultOptions(fields []FieldMap) Options {
	return Options{
		Fields:     fields,
		Operators:  DefaultOperators(),
		Conditions: DefaultConditions(),
		Directions: DefaultDirections(),
	}
}

// Config is the immutable registry bundle a compile runs against.
//
// A Config is safe to share between goroutines. Build it once per field
// set and reuse it; every compile call brings its own Context.
type Config struct {
	fields      map[string]FieldMap
	operators   map[string]Operator
	conditions  map[string]Condition
	directions  map[string]Direction
	parser      *rules.Parser
	defaultSort []rules.SortKey
	limits      limits
	logger      *slog.Logger
}

// NewConfig builds a Config. Duplicate keys in any list are last-write-wins.
func NewConfig(opts Options) *Config {
	cfg := &Config{
		fields:      make(map[string]FieldMap, len(opts.Fields)),
		operators:   make(map[string]Operator, len(opts.Operators)),
		conditions:  make(map[string]Condition, len(opts.Conditions)),
		directions:  make(map[string]Direction, len(opts.Directions)),
		parser:      rules.NewParser(opts.Syntaxes...),
		defaultSort: make([]rules.SortKey, 0, len(opts.DefaultSort)),
		limits:      limits{maxRules: opts.MaxRules, maxDepth: opts.MaxDepth},
		logger:      opts.Logger,
	}
	cfg.parser.Lenient = opts.LenientGroups
	if cfg.logger == nil {
		cfg.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	for _, key := range opts.DefaultSort {
		cfg.defaultSort = append(cfg.defaultSort, rules.NormalizeSortKey(key))
	}
	for _, f := range opts.Fields {
		cfg.fields[f.Name] = f
	}
	for _, op := range opts.Operators {
		cfg.operators[op.Code()] = op
	}
	for _, c := range opts.Conditions {
		cfg.conditions[c.Name()] = c
	}
	for _, d := range opts.Directions {
		cfg.directions[d.Code()] = d
	}
	return cfg
}

// DefaultConfig builds a Config over fields with the built-in registries.
func DefaultConfig(fields []FieldMap) *Config {
	return NewConfig(DefaultOptions(fields))
}

// Field resolves a field by name.
func (c *Config) Field(name string) (FieldMap, error) {
	f, ok := c.fields[name]
	if !ok {
		return FieldMap{}, rules.NewUnknownFieldError(name)
	}
	return f, nil
}

// Operator resolves an operator by code.
func (c *Config) Operator(code string) (Operator, error) {
	op, ok := c.operators[code]
	if !ok {
		return nil, rules.NewUnknownOperatorError(code)
	}
	return op, nil
}

// Condition resolves a condition by name.
func (c *Config) Condition(name string) (Condition, error) {
	cond, ok := c.conditions[name]
	if !ok {
		return nil, rules.NewUnknownConditionError(name)
	}
	return cond, nil
}

// Direction resolves a sort direction by code.
func (c *Config) Direction(code string) (Direction, error) {
	d, ok := c.directions[code]
	if !ok {
		return nil, rules.NewUnknownDirectionError(code)
	}
	return d, nil
}

// Parser returns the rule parser configured with this Config's syntaxes.
func (c *Config) Parser() *rules.Parser {
	return c.parser
}

// DefaultSort returns the ordering applied to empty sort input.
func (c *Config) DefaultSort() []rules.SortKey {
	return slices.Clone(c.defaultSort)
}

// FieldNames returns the registered field names, sorted.
func (c *Config) FieldNames() []string {
	return slices.Sorted(maps.Keys(c.fields))
}

// OperatorCodes returns the registered operator codes, sorted.
func (c *Config) OperatorCodes() []string {
	return slices.Sorted(maps.Keys(c.operators))
}

// Logger returns the configured logger.
func (c *Config) Logger() *slog.Logger {
	return c.logger
}
