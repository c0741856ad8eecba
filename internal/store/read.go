package store

import (
	"context"
	"fmt"

	"github.com/roach88/sift/internal/queryir"
)

// Result holds the rows of one query.
type Result struct {
	// SQL is the rendered statement, for logging and debugging.
	SQL string

	Columns []string

	// Rows are keyed by column name. Values are normalized by
	// normalizeValue.
	Rows []map[string]any
}

// Query renders q in the store's dialect, executes it and reads every row.
//
// Returns an empty Rows slice (not nil) when nothing matches.
func (s *Store) Query(ctx context.Context, q queryir.Select) (*Result, error) {
	sqlStr, args, err := s.compiler.Compile(q)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", q.From, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("read columns: %w", err)
	}

	result := &Result{SQL: sqlStr, Columns: columns, Rows: []map[string]any{}}
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}

		row := make(map[string]any, len(columns))
		for i, col := range columns {
			row[col] = normalizeValue(values[i])
		}
		result.Rows = append(result.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return result, nil
}

// Count returns the number of rows q matches, ignoring its columns,
// ordering and limit.
func (s *Store) Count(ctx context.Context, q queryir.Select) (int64, error) {
	counted := q
	counted.Columns = []string{"count(*)"}
	counted.Order = nil
	counted.Limit = 0

	sqlStr, args, err := s.compiler.Compile(counted)
	if err != nil {
		return 0, err
	}

	var n int64
	if err := s.db.QueryRowContext(ctx, sqlStr, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", q.From, err)
	}
	return n, nil
}
