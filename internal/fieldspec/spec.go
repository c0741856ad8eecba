package fieldspec

import (
	"fmt"

	"github.com/roach88/sift/internal/compiler"
	"github.com/roach88/sift/internal/queryir"
)

func (s *Spec) tableFor(f Field) string {
	if f.Table != "" {
		return f.Table
	}
	return s.Table
}

func (f Field) columnName() string {
	if f.Column != "" {
		return f.Column
	}
	return f.Name
}

// FieldMaps converts the spec into compiler field maps, in declaration order.
func (s *Spec) FieldMaps() ([]compiler.FieldMap, error) {
	out := make([]compiler.FieldMap, 0, len(s.Fields))
	for _, f := range s.Fields {
		transform, err := TransformByName(f.Transform)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", f.Name, err)
		}
		col := queryir.Column{Table: s.tableFor(f), Name: f.columnName()}
		if f.Relation != nil {
			col.Relation = &queryir.Relation{Table: f.Relation.Table, ForeignKey: f.Relation.Key}
		}
		out = append(out, compiler.FieldMap{
			Name:             f.Name,
			Column:           col,
			Transform:        transform,
			BlockedOperators: append([]string(nil), f.Blocked...),
		})
	}
	return out, nil
}

// Options returns compiler options with the built-in registries over the
// spec's fields and its default sort.
func (s *Spec) Options() (compiler.Options, error) {
	fields, err := s.FieldMaps()
	if err != nil {
		return compiler.Options{}, err
	}
	opts := compiler.DefaultOptions(fields)
	opts.DefaultSort = append(opts.DefaultSort, s.DefaultSort...)
	opts.MaxRules = s.MaxRules
	opts.MaxDepth = s.MaxDepth
	return opts, nil
}
