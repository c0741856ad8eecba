package queryir

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateValidQuery(t *testing.T) {
	tags := Column{Table: "users", Name: "id", Relation: &Relation{Table: "tags", ForeignKey: "user_id"}}

	q := NewSelect("users").
		Where(Or{Predicates: []Predicate{
			Compare{Column: usersID, Op: OpEq, Param: "id_0"},
			Like{Column: usersUsername, Param: "username_0", CaseInsensitive: true},
			In{Column: usersID, Param: "id_1", Negate: true},
			IsNull{Column: usersUsername},
			IsEmpty{Column: usersUsername, Negate: true},
			Any{Column: tags, Predicate: Compare{Column: Column{Table: "tags", Name: "name"}, Op: OpEq, Param: "name_0"}},
			Any{Column: tags},
			Not{Predicate: True{}},
		}}).
		OrderBy(OrderKey{Column: usersUsername}).
		Params(map[string]any{"id_0": int64(1), "username_0": "%a%", "id_1": []any{int64(2)}, "name_0": "go"})

	result := Validate(q)
	assert.True(t, result.IsValid, "problems: %v", result.Problems)
	assert.Empty(t, result.Problems)
}

func TestValidateProblems(t *testing.T) {
	tests := []struct {
		name     string
		query    Select
		contains string
	}{
		{
			name:     "missing from",
			query:    Select{},
			contains: "no FROM",
		},
		{
			name:     "unbound parameter",
			query:    NewSelect("users").Where(Compare{Column: usersID, Op: OpEq, Param: "id_0"}),
			contains: `parameter "id_0" has no binding`,
		},
		{
			name:     "unnamed parameter",
			query:    NewSelect("users").Where(Like{Column: usersID}),
			contains: "unnamed parameter",
		},
		{
			name:     "column without name",
			query:    NewSelect("users").Where(IsNull{Column: Column{Table: "users"}}),
			contains: "column has no name",
		},
		{
			name:     "any without relation",
			query:    NewSelect("users").Where(Any{Column: usersID}),
			contains: "has no relation",
		},
		{
			name:     "incomplete relation",
			query:    NewSelect("users").Where(Any{Column: Column{Table: "users", Name: "id", Relation: &Relation{Table: "tags"}}}),
			contains: "incomplete",
		},
		{
			name:     "not of nil",
			query:    NewSelect("users").Where(Not{}),
			contains: "nil predicate",
		},
		{
			name:     "order column without name",
			query:    NewSelect("users").OrderBy(OrderKey{Column: Column{Table: "users"}}),
			contains: "order[0]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Validate(tt.query)
			assert.False(t, result.IsValid)
			assert.NotEmpty(t, result.Problems)
			found := false
			for _, p := range result.Problems {
				if strings.Contains(p, tt.contains) {
					found = true
				}
			}
			assert.True(t, found, "expected a problem containing %q, got %v", tt.contains, result.Problems)
		})
	}
}

func TestValidateCollectsAllProblems(t *testing.T) {
	q := Select{Filter: And{Predicates: []Predicate{
		Compare{Column: usersID, Op: OpEq, Param: "a"},
		Compare{Column: usersID, Op: OpEq, Param: "b"},
	}}}

	result := Validate(q)
	assert.Len(t, result.Problems, 3)
}

func TestReferencedParams(t *testing.T) {
	p := And{Predicates: []Predicate{
		Compare{Column: usersID, Op: OpGt, Param: "id_1"},
		Compare{Column: usersID, Op: OpLt, Param: "id_0"},
		Not{Predicate: In{Column: usersUsername, Param: "username_0"}},
		IsNull{Column: usersUsername},
	}}

	assert.Equal(t, []string{"id_0", "id_1", "username_0"}, ReferencedParams(p))
	assert.Empty(t, ReferencedParams(True{}))
}
