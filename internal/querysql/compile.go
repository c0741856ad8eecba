package querysql

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/sift/internal/queryir"
)

// SQLCompiler renders QueryIR to parameterized SQL for one dialect.
//
// CRITICAL: Values are never interpolated. Every value travels as a named
// argument built by the dialect from Select.Bindings.
type SQLCompiler struct {
	Dialect Dialect
}

// NewSQLCompiler creates a compiler for the given dialect.
func NewSQLCompiler(d Dialect) *SQLCompiler {
	return &SQLCompiler{Dialect: d}
}

// Compile converts a query to SQL plus driver arguments.
//
// The query is validated first; an invalid query is an error listing every
// problem. Arguments cover exactly the parameters referenced by the filter,
// in order of first appearance.
func (c *SQLCompiler) Compile(q queryir.Select) (string, []any, error) {
	if c.Dialect == nil {
		return "", nil, fmt.Errorf("no SQL dialect configured")
	}
	if result := queryir.Validate(q); !result.IsValid {
		return "", nil, fmt.Errorf("invalid query: %s", strings.Join(result.Problems, "; "))
	}

	r := newRenderer(c.Dialect)

	var sb strings.Builder
	sb.WriteString("SELECT ")
	if len(q.Columns) == 0 {
		sb.WriteString("*")
	} else {
		sb.WriteString(strings.Join(q.Columns, ", "))
	}
	sb.WriteString(" FROM ")
	sb.WriteString(q.From)

	if q.Filter != nil {
		where, err := r.predicate(q.Filter)
		if err != nil {
			return "", nil, fmt.Errorf("compile filter: %w", err)
		}
		sb.WriteString(" WHERE ")
		sb.WriteString(where)
	}

	if len(q.Order) > 0 {
		sb.WriteString(" ORDER BY ")
		sb.WriteString(CompileOrder(q.Order))
	}

	if q.Limit > 0 {
		sb.WriteString(" LIMIT ")
		sb.WriteString(strconv.Itoa(q.Limit))
	}

	if r.err != nil {
		return "", nil, r.err
	}

	// Bind under the placeholder names the SQL text uses.
	bound := make(map[string]any, len(r.names))
	for _, name := range r.names {
		if v, ok := q.Bindings[r.origin[name]]; ok {
			bound[name] = v
		}
	}
	args, err := c.Dialect.Args(bound, r.names)
	if err != nil {
		return "", nil, fmt.Errorf("bind arguments: %w", err)
	}
	return sb.String(), args, nil
}

// CompilePredicate renders a predicate alone, returning the SQL fragment and
// the parameter names it references in order of first appearance.
func (c *SQLCompiler) CompilePredicate(p queryir.Predicate) (string, []string, error) {
	r := newRenderer(c.Dialect)
	sql, err := r.predicate(p)
	if err != nil {
		return "", nil, err
	}
	if r.err != nil {
		return "", nil, r.err
	}
	names := make([]string, len(r.names))
	for i, name := range r.names {
		names[i] = r.origin[name]
	}
	return sql, names, nil
}

// CompileOrder renders ORDER BY keys without the keyword.
// Ascending keys render as the bare column.
func CompileOrder(keys []queryir.OrderKey) string {
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k.Column.Qualified()
		if k.Desc {
			parts[i] += " DESC"
		}
	}
	return strings.Join(parts, ", ")
}

// renderer walks one predicate tree and records referenced parameters.
//
// Parameter names derive from field names and may hold characters no
// placeholder syntax accepts ("tags.name_0"). Each is rendered under a
// sanitized name; origin maps it back to the binding.
type renderer struct {
	dialect Dialect
	names   []string          // sanitized, in order of first appearance
	origin  map[string]string // sanitized -> binding name
	err     error
}

func newRenderer(d Dialect) *renderer {
	return &renderer{dialect: d, origin: map[string]string{}}
}

func (r *renderer) param(name string) string {
	safe := placeholderName(name)
	switch orig, ok := r.origin[safe]; {
	case !ok:
		r.origin[safe] = name
		r.names = append(r.names, safe)
	case orig != name && r.err == nil:
		r.err = fmt.Errorf("parameters %q and %q collide as placeholder %q", orig, name, safe)
	}
	return r.dialect.Placeholder(safe)
}

// placeholderName replaces every rune outside [A-Za-z0-9_] with '_'.
func placeholderName(name string) string {
	return strings.Map(func(c rune) rune {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '_':
			return c
		}
		return '_'
	}, name)
}

func (r *renderer) predicate(p queryir.Predicate) (string, error) {
	switch pred := p.(type) {
	case nil, queryir.True:
		return "1 = 1", nil
	case queryir.Compare:
		col := pred.Column.Qualified()
		ph := r.param(pred.Param)
		if pred.Fold {
			return fmt.Sprintf("lower(%s) %s lower(%s)", col, pred.Op, ph), nil
		}
		return fmt.Sprintf("%s %s %s", col, pred.Op, ph), nil
	case queryir.Like:
		return r.dialect.Like(pred.Column.Qualified(), r.param(pred.Param), pred.CaseInsensitive), nil
	case queryir.In:
		return r.dialect.In(pred.Column.Qualified(), r.param(pred.Param), pred.Negate), nil
	case queryir.IsNull:
		if pred.Negate {
			return pred.Column.Qualified() + " IS NOT NULL", nil
		}
		return pred.Column.Qualified() + " IS NULL", nil
	case queryir.IsEmpty:
		if pred.Negate {
			return fmt.Sprintf("trim(%s) != ''", pred.Column.Qualified()), nil
		}
		return fmt.Sprintf("trim(%s) = ''", pred.Column.Qualified()), nil
	case queryir.Any:
		return r.any(pred)
	case queryir.And:
		return r.join(pred.Predicates, " AND ", "1 = 1")
	case queryir.Or:
		return r.join(pred.Predicates, " OR ", "1 = 0")
	case queryir.Not:
		inner, err := r.predicate(pred.Predicate)
		if err != nil {
			return "", err
		}
		return "NOT (" + inner + ")", nil
	default:
		return "", fmt.Errorf("unsupported predicate type: %T", p)
	}
}

// join renders a combinator. Compound children are parenthesized so mixed
// AND/OR trees keep their shape.
func (r *renderer) join(preds []queryir.Predicate, sep, empty string) (string, error) {
	if len(preds) == 0 {
		return empty, nil
	}
	parts := make([]string, 0, len(preds))
	for _, p := range preds {
		sql, err := r.predicate(p)
		if err != nil {
			return "", err
		}
		switch p.(type) {
		case queryir.And, queryir.Or:
			if len(preds) > 1 {
				sql = "(" + sql + ")"
			}
		}
		parts = append(parts, sql)
	}
	return strings.Join(parts, sep), nil
}

func (r *renderer) any(pred queryir.Any) (string, error) {
	rel := pred.Column.Relation
	if rel == nil {
		return "", fmt.Errorf("any on column %q has no relation", pred.Column.Qualified())
	}
	link := fmt.Sprintf("%s.%s = %s", rel.Table, rel.ForeignKey, pred.Column.Qualified())
	if pred.Predicate == nil {
		return fmt.Sprintf("EXISTS (SELECT 1 FROM %s WHERE %s)", rel.Table, link), nil
	}
	inner, err := r.predicate(pred.Predicate)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("EXISTS (SELECT 1 FROM %s WHERE %s AND (%s))", rel.Table, link, inner), nil
}
