// Package fieldspec loads field-map configuration from CUE or YAML files
// and turns it into compiler field maps.
package fieldspec

import "github.com/roach88/sift/internal/rules"

// Spec is a field-map configuration file.
//
//	table: "users"
//	fields: {
//	    id:       {column: "id", transform: "int"}
//	    username: {blocked: ["like", "ilike"]}
//	    tags:     {column: "id", relation: {table: "tags", key: "user_id"}}
//	}
//	default_sort: [{field: "id", direction: "desc"}]
//	max_rules: 50
//	max_depth: 4
type Spec struct {
	// Table is the default table for fields that name none.
	Table string `yaml:"table"`

	// Fields in declaration order.
	Fields []Field `yaml:"-"`

	// DefaultSort is applied when a request sends no sort rules.
	DefaultSort []rules.SortKey `yaml:"-"`

	// MaxRules and MaxDepth bound filter trees. Zero is unlimited.
	MaxRules int `yaml:"-"`
	MaxDepth int `yaml:"-"`
}

// Field declares one logical field.
type Field struct {
	Name string `yaml:"-"`

	// Table overrides Spec.Table for this field.
	Table string `yaml:"table"`

	// Column defaults to Name.
	Column string `yaml:"column"`

	// Transform names a value transform, see TransformNames.
	Transform string `yaml:"transform"`

	// Blocked lists operator codes refused for this field.
	Blocked []string `yaml:"blocked"`

	Relation *Relation `yaml:"relation"`

	// Line is the source line of the declaration, 0 when unknown.
	Line int `yaml:"-"`
}

// Relation declares the child table of a collection field.
type Relation struct {
	Table string `yaml:"table"`
	Key   string `yaml:"key"`
}
