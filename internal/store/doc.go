// Package store executes compiled filter and sort queries.
//
// A Store pairs a database/sql handle with a querysql dialect. Query and
// Count render a queryir.Select in that dialect and bind its parameters
// as driver arguments; values never appear in SQL text.
//
// # Drivers
//
//   - sqlite: github.com/mattn/go-sqlite3 (Open)
//   - postgres: github.com/jackc/pgx/v5/stdlib (Connect)
//   - clickhouse: github.com/ClickHouse/clickhouse-go/v2 (Connect)
//
// # SQLite Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//   - case_sensitive_like=ON: LIKE matches case, ilike lowercases both sides
package store
