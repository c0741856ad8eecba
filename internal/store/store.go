package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/ClickHouse/clickhouse-go/v2"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"

	"github.com/roach88/sift/internal/querysql"
)

// Store executes compiled queries against one database.
// The dialect decides how queries are rendered and arguments bound.
type Store struct {
	db       *sql.DB
	compiler *querysql.SQLCompiler
}

// New wraps an open database. The caller keeps ownership of db until
// Close is called on the Store.
func New(db *sql.DB, dialect querysql.Dialect) *Store {
	return &Store{db: db, compiler: querysql.NewSQLCompiler(dialect)}
}

// Open creates or opens a SQLite database at the given path.
// ":memory:" opens a private in-memory database.
//
// The database is configured with:
//   - WAL mode for concurrent reads during writes
//   - 5-second busy timeout for lock contention
//   - Foreign key enforcement
//   - Case-sensitive LIKE, so like and ilike differ as they do elsewhere
func Open(path string) (*Store, error) {
	// Open database (creates file if doesn't exist)
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Verify connection works
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Pragmas are per connection, and an in-memory database exists only
	// on its own connection, so keep exactly one.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	return New(db, querysql.SQLite{}), nil
}

// Connect opens a database for the named dialect.
//
//	sqlite:     dsn is a file path or ":memory:"
//	postgres:   dsn is a pgx connection string, via pgx/v5/stdlib
//	clickhouse: dsn is a clickhouse:// URL, via clickhouse-go
func Connect(ctx context.Context, dialectName, dsn string) (*Store, error) {
	dialect, err := querysql.DialectByName(dialectName)
	if err != nil {
		return nil, err
	}

	var driver string
	switch dialect.(type) {
	case querysql.SQLite:
		return Open(dsn)
	case querysql.Postgres:
		driver = "pgx"
	case querysql.ClickHouse:
		driver = "clickhouse"
	default:
		return nil, fmt.Errorf("no driver for dialect %s", dialect.Name())
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", dialect.Name(), err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to %s database: %w", dialect.Name(), err)
	}
	return New(db, dialect), nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// DB returns the underlying sql.DB for direct queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Dialect returns the SQL dialect queries are rendered in.
func (s *Store) Dialect() querysql.Dialect {
	return s.compiler.Dialect
}

// ExecScript runs a multi-statement SQL script, such as a schema file.
func (s *Store) ExecScript(ctx context.Context, script string) error {
	if _, err := s.db.ExecContext(ctx, script); err != nil {
		return fmt.Errorf("exec script: %w", err)
	}
	return nil
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
		"PRAGMA case_sensitive_like = ON",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}

// verifyPragma checks that a pragma is set to the expected value.
// Used for testing.
func (s *Store) verifyPragma(name, expected string) error {
	var value string
	query := fmt.Sprintf("PRAGMA %s", name)
	if err := s.db.QueryRow(query).Scan(&value); err != nil {
		return fmt.Errorf("failed to query %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}
