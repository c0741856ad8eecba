package queryir

import "maps"

// Select is a relational query being built up from compiled rules.
//
// Semantics:
//
//	SELECT <columns> FROM <from> WHERE <filter> ORDER BY <order>
//
// Select is a value type. Where, OrderBy and Params return modified copies
// and never touch the receiver, so one base query can be shared by
// concurrent requests.
type Select struct {
	From     string         // Table name
	Columns  []string       // Selected columns (empty = all columns)
	Filter   Predicate      // WHERE conditions (nil = no filter)
	Order    []OrderKey     // ORDER BY keys, primary first
	Bindings map[string]any // Named parameter values referenced by Filter
	Limit    int            // Row limit (0 = no limit)
}

// NewSelect creates a query over a table.
func NewSelect(from string, columns ...string) Select {
	return Select{From: from, Columns: columns}
}

// Where returns a copy with p attached to the filter.
// An existing filter is kept and joined with p under And.
func (s Select) Where(p Predicate) Select {
	if p == nil {
		return s
	}
	out := s.clone()
	switch existing := s.Filter.(type) {
	case nil:
		out.Filter = p
	case And:
		preds := make([]Predicate, 0, len(existing.Predicates)+1)
		preds = append(preds, existing.Predicates...)
		out.Filter = And{Predicates: append(preds, p)}
	default:
		out.Filter = And{Predicates: []Predicate{existing, p}}
	}
	return out
}

// OrderBy returns a copy with keys appended to the ordering.
func (s Select) OrderBy(keys ...OrderKey) Select {
	if len(keys) == 0 {
		return s
	}
	out := s.clone()
	out.Order = append(append([]OrderKey(nil), s.Order...), keys...)
	return out
}

// Params returns a copy with params merged into the bindings.
// Later values win on name collision.
func (s Select) Params(params map[string]any) Select {
	if len(params) == 0 {
		return s
	}
	out := s.clone()
	out.Bindings = make(map[string]any, len(s.Bindings)+len(params))
	maps.Copy(out.Bindings, s.Bindings)
	maps.Copy(out.Bindings, params)
	return out
}

// WithLimit returns a copy limited to n rows.
func (s Select) WithLimit(n int) Select {
	out := s.clone()
	out.Limit = n
	return out
}

func (s Select) clone() Select {
	out := s
	out.Columns = append([]string(nil), s.Columns...)
	out.Order = append([]OrderKey(nil), s.Order...)
	if s.Bindings != nil {
		out.Bindings = maps.Clone(s.Bindings)
	}
	return out
}
