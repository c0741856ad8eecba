package querysql

import (
	"database/sql"
	"fmt"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/jackc/pgx/v5"

	"github.com/roach88/sift/internal/ir"
)

// Dialect captures the SQL differences between backends.
type Dialect interface {
	// Name identifies the dialect ("sqlite", "postgres", "clickhouse").
	Name() string

	// Placeholder renders a reference to a named parameter.
	Placeholder(name string) string

	// Like renders a pattern match of column against placeholder.
	Like(column, placeholder string, caseInsensitive bool) string

	// In renders membership of column in a sequence-valued placeholder.
	In(column, placeholder string, negate bool) string

	// Args builds driver arguments for the named parameters, in order.
	Args(bindings map[string]any, names []string) ([]any, error)
}

// DialectByName returns the dialect registered under name.
func DialectByName(name string) (Dialect, error) {
	switch name {
	case "sqlite", "sqlite3":
		return SQLite{}, nil
	case "postgres", "postgresql", "pgx":
		return Postgres{}, nil
	case "clickhouse":
		return ClickHouse{}, nil
	default:
		return nil, fmt.Errorf("unknown SQL dialect %q", name)
	}
}

func lookup(bindings map[string]any, name string) (any, error) {
	v, ok := bindings[name]
	if !ok {
		return nil, fmt.Errorf("parameter %q has no binding", name)
	}
	return v, nil
}

// SQLite renders for mattn/go-sqlite3 with sql.Named arguments.
//
// Sequence parameters are bound as JSON text and expanded with json_each,
// since SQLite has no array type. LIKE is case-sensitive only with
// PRAGMA case_sensitive_like, which store.Open sets.
type SQLite struct{}

func (SQLite) Name() string { return "sqlite" }

func (SQLite) Placeholder(name string) string { return ":" + name }

func (SQLite) Like(column, placeholder string, caseInsensitive bool) string {
	if caseInsensitive {
		return fmt.Sprintf("lower(%s) LIKE lower(%s)", column, placeholder)
	}
	return fmt.Sprintf("%s LIKE %s", column, placeholder)
}

func (SQLite) In(column, placeholder string, negate bool) string {
	op := "IN"
	if negate {
		op = "NOT IN"
	}
	return fmt.Sprintf("%s %s (SELECT value FROM json_each(%s))", column, op, placeholder)
}

func (SQLite) Args(bindings map[string]any, names []string) ([]any, error) {
	args := make([]any, 0, len(names))
	for _, name := range names {
		v, err := lookup(bindings, name)
		if err != nil {
			return nil, err
		}
		switch v.(type) {
		case []any, []string, map[string]any:
			text, err := ir.MarshalCanonical(v)
			if err != nil {
				return nil, fmt.Errorf("encode %s: %w", name, err)
			}
			v = string(text)
		}
		args = append(args, sql.Named(name, v))
	}
	return args, nil
}

// Postgres renders @name placeholders and binds a single pgx.NamedArgs,
// which pgx rewrites to positional parameters.
type Postgres struct{}

func (Postgres) Name() string { return "postgres" }

func (Postgres) Placeholder(name string) string { return "@" + name }

func (Postgres) Like(column, placeholder string, caseInsensitive bool) string {
	if caseInsensitive {
		return fmt.Sprintf("%s ILIKE %s", column, placeholder)
	}
	return fmt.Sprintf("%s LIKE %s", column, placeholder)
}

func (Postgres) In(column, placeholder string, negate bool) string {
	if negate {
		return fmt.Sprintf("NOT (%s = ANY(%s))", column, placeholder)
	}
	return fmt.Sprintf("%s = ANY(%s)", column, placeholder)
}

func (Postgres) Args(bindings map[string]any, names []string) ([]any, error) {
	if len(names) == 0 {
		return nil, nil
	}
	named := make(pgx.NamedArgs, len(names))
	for _, name := range names {
		v, err := lookup(bindings, name)
		if err != nil {
			return nil, err
		}
		named[name] = v
	}
	return []any{named}, nil
}

// ClickHouse renders @name placeholders bound with clickhouse.Named.
// Sequence membership uses has(), which accepts an array parameter.
type ClickHouse struct{}

func (ClickHouse) Name() string { return "clickhouse" }

func (ClickHouse) Placeholder(name string) string { return "@" + name }

func (ClickHouse) Like(column, placeholder string, caseInsensitive bool) string {
	if caseInsensitive {
		return fmt.Sprintf("%s ILIKE %s", column, placeholder)
	}
	return fmt.Sprintf("%s LIKE %s", column, placeholder)
}

func (ClickHouse) In(column, placeholder string, negate bool) string {
	if negate {
		return fmt.Sprintf("NOT has(%s, %s)", placeholder, column)
	}
	return fmt.Sprintf("has(%s, %s)", placeholder, column)
}

func (ClickHouse) Args(bindings map[string]any, names []string) ([]any, error) {
	args := make([]any, 0, len(names))
	for _, name := range names {
		v, err := lookup(bindings, name)
		if err != nil {
			return nil, err
		}
		args = append(args, clickhouse.Named(name, v))
	}
	return args, nil
}
