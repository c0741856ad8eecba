package fieldspec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sift/internal/rules"
)

func TestValidateValid(t *testing.T) {
	spec := &Spec{
		Table: "users",
		Fields: []Field{
			{Name: "id", Transform: "int"},
			{Name: "tags.name", Table: "tags", Column: "name"},
			{Name: "tags", Column: "id", Relation: &Relation{Table: "tags", Key: "user_id"}},
		},
		DefaultSort: []rules.SortKey{{Field: "id", Direction: "desc"}},
	}

	errs := Validate(spec)
	assert.Empty(t, errs, "valid spec should have no errors")
}

func TestValidateNoFields(t *testing.T) {
	errs := Validate(&Spec{})
	require.Len(t, errs, 1)
	assert.Equal(t, ErrNoFields, errs[0].Code)
}

func TestValidateErrors(t *testing.T) {
	tests := []struct {
		name  string
		field Field
		code  string
	}{
		{"empty name", Field{Column: "id"}, ErrEmptyFieldName},
		{"dotted name without column", Field{Name: "tags.name"}, ErrInvalidIdentifier},
		{"injected column", Field{Name: "id", Column: "id; DROP TABLE users"}, ErrInvalidIdentifier},
		{"bad table", Field{Name: "id", Table: "public.users"}, ErrInvalidIdentifier},
		{"unknown transform", Field{Name: "id", Transform: "rot13"}, ErrUnknownTransform},
		{"empty blocked code", Field{Name: "id", Blocked: []string{""}}, ErrEmptyBlocked},
		{"relation without key", Field{Name: "tags", Relation: &Relation{Table: "tags"}}, ErrIncompleteRelation},
		{"relation bad key", Field{Name: "tags", Relation: &Relation{Table: "tags", Key: "user id"}}, ErrInvalidIdentifier},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := Validate(&Spec{Table: "users", Fields: []Field{tt.field}})
			require.NotEmpty(t, errs)
			assert.Equal(t, tt.code, errs[0].Code, errs[0].Error())
		})
	}
}

func TestValidateDefaultSort(t *testing.T) {
	spec := &Spec{
		Fields: []Field{{Name: "id"}},
		DefaultSort: []rules.SortKey{
			{Field: "age", Direction: "asc"},
			{Field: "id", Direction: "sideways"},
		},
	}

	errs := Validate(spec)
	require.Len(t, errs, 2)
	assert.Equal(t, ErrUnknownSortField, errs[0].Code)
	assert.Equal(t, ErrInvalidDirection, errs[1].Code)
}

func TestValidateCollectsAll(t *testing.T) {
	spec := &Spec{Fields: []Field{
		{Name: "a", Transform: "nope", Line: 3},
		{Name: "b", Column: "1b", Line: 4},
	}}

	errs := Validate(spec)
	require.Len(t, errs, 2)
	assert.Equal(t, "[E104] line 3: fields.a.transform: unknown transform \"nope\" (known: [float identity int lower trim upper uuid])", errs[0].Error())
	assert.Equal(t, ErrInvalidIdentifier, errs[1].Code)
	assert.Equal(t, 4, errs[1].Line)
}

func TestValidateNegativeLimits(t *testing.T) {
	spec := &Spec{Fields: []Field{{Name: "id"}}, MaxRules: -1, MaxDepth: -2}

	errs := Validate(spec)
	require.Len(t, errs, 2)
	assert.Equal(t, ErrNegativeLimit, errs[0].Code)
	assert.Equal(t, "max_rules", errs[0].Field)
	assert.Equal(t, "max_depth", errs[1].Field)
}
