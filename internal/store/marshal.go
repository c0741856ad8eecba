package store

import (
	"bytes"
	"fmt"
	"time"

	"github.com/roach88/sift/internal/ir"
)

// normalizeValue maps driver values onto the types ir.MarshalCanonical
// accepts. Text columns scanned as []byte become strings and timestamps
// become RFC 3339 strings in UTC. Driver-specific types with no JSON
// counterpart fall back to their string form.
func normalizeValue(v any) any {
	switch x := v.(type) {
	case []byte:
		return string(x)
	case time.Time:
		return x.UTC().Format(time.RFC3339Nano)
	}
	n, err := ir.Normalize(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return n
}

// MarshalRows encodes rows as newline-delimited canonical JSON, one
// object per line, each line terminated. No rows encode to nothing.
func MarshalRows(rows []map[string]any) ([]byte, error) {
	var buf bytes.Buffer
	for i, row := range rows {
		line, err := ir.MarshalCanonical(row)
		if err != nil {
			return nil, fmt.Errorf("marshal row %d: %w", i, err)
		}
		buf.Write(line)
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}
