package fieldspec

import (
	"fmt"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/sift/internal/rules"
)

// CompileSpec parses a CUE value into a Spec.
// Uses CUE SDK's Go API directly (not CLI subprocess).
//
// The value is the root of a field-map file:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`fields: id: {table: "users"}`)
//	spec, err := CompileSpec(v)
func CompileSpec(v cue.Value) (*Spec, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	spec := &Spec{}

	table, err := optionalString(v, "table")
	if err != nil {
		return nil, err
	}
	spec.Table = table

	// Parse fields (required, at least one)
	fieldsVal := v.LookupPath(cue.ParsePath("fields"))
	if !fieldsVal.Exists() {
		return nil, &CompileError{
			Field:   "fields",
			Message: "fields is required",
			Pos:     v.Pos(),
		}
	}
	iter, err := fieldsVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}
	for iter.Next() {
		field, err := CompileField(iter.Selector().Unquoted(), iter.Value())
		if err != nil {
			return nil, err
		}
		spec.Fields = append(spec.Fields, field)
	}
	if len(spec.Fields) == 0 {
		return nil, &CompileError{
			Field:   "fields",
			Message: "at least one field is required",
			Pos:     fieldsVal.Pos(),
		}
	}

	// Parse default_sort (optional)
	sortVal := v.LookupPath(cue.ParsePath("default_sort"))
	if sortVal.Exists() {
		spec.DefaultSort, err = parseDefaultSort(sortVal)
		if err != nil {
			return nil, err
		}
	}

	if spec.MaxRules, err = optionalInt(v, "max_rules"); err != nil {
		return nil, err
	}
	if spec.MaxDepth, err = optionalInt(v, "max_depth"); err != nil {
		return nil, err
	}

	return spec, nil
}

// CompileField parses one entry of the fields struct.
func CompileField(name string, v cue.Value) (Field, error) {
	if err := v.Err(); err != nil {
		return Field{}, formatCUEError(err)
	}
	if v.IncompleteKind() != cue.StructKind {
		return Field{}, &CompileError{
			Field:   "fields." + name,
			Message: fmt.Sprintf("field must be a struct, got %v", v.IncompleteKind()),
			Pos:     v.Pos(),
		}
	}

	field := Field{Name: name, Line: v.Pos().Line()}
	var err error
	if field.Table, err = optionalString(v, "table"); err != nil {
		return Field{}, err
	}
	if field.Column, err = optionalString(v, "column"); err != nil {
		return Field{}, err
	}
	if field.Transform, err = optionalString(v, "transform"); err != nil {
		return Field{}, err
	}

	blockedVal := v.LookupPath(cue.ParsePath("blocked"))
	if blockedVal.Exists() {
		list, err := blockedVal.List()
		if err != nil {
			return Field{}, &CompileError{
				Field:   "fields." + name + ".blocked",
				Message: "blocked must be a list of operator codes",
				Pos:     blockedVal.Pos(),
			}
		}
		for list.Next() {
			code, err := list.Value().String()
			if err != nil {
				return Field{}, formatCUEError(err)
			}
			field.Blocked = append(field.Blocked, code)
		}
	}

	relVal := v.LookupPath(cue.ParsePath("relation"))
	if relVal.Exists() {
		rel := &Relation{}
		if rel.Table, err = optionalString(relVal, "table"); err != nil {
			return Field{}, err
		}
		if rel.Key, err = optionalString(relVal, "key"); err != nil {
			return Field{}, err
		}
		field.Relation = rel
	}

	return field, nil
}

func parseDefaultSort(v cue.Value) ([]rules.SortKey, error) {
	list, err := v.List()
	if err != nil {
		return nil, &CompileError{
			Field:   "default_sort",
			Message: "default_sort must be a list",
			Pos:     v.Pos(),
		}
	}

	var keys []rules.SortKey
	for list.Next() {
		item := list.Value()
		field, err := optionalString(item, "field")
		if err != nil {
			return nil, err
		}
		if field == "" {
			return nil, &CompileError{
				Field:   "default_sort.field",
				Message: "field is required",
				Pos:     item.Pos(),
			}
		}
		direction, err := optionalString(item, "direction")
		if err != nil {
			return nil, err
		}
		if direction == "" {
			direction = rules.DirectionAsc
		}
		keys = append(keys, rules.SortKey{Field: field, Direction: strings.ToLower(direction)})
	}
	return keys, nil
}

// optionalString reads a string at path, returning "" when absent.
func optionalString(v cue.Value, path string) (string, error) {
	sv := v.LookupPath(cue.ParsePath(path))
	if !sv.Exists() {
		return "", nil
	}
	s, err := sv.String()
	if err != nil {
		return "", &CompileError{
			Field:   path,
			Message: fmt.Sprintf("%s must be a string", path),
			Pos:     sv.Pos(),
		}
	}
	return s, nil
}

// optionalInt reads an integer at path, returning 0 when absent.
func optionalInt(v cue.Value, path string) (int, error) {
	iv := v.LookupPath(cue.ParsePath(path))
	if !iv.Exists() {
		return 0, nil
	}
	n, err := iv.Int64()
	if err != nil {
		return 0, &CompileError{
			Field:   path,
			Message: fmt.Sprintf("%s must be an integer", path),
			Pos:     iv.Pos(),
		}
	}
	return int(n), nil
}

// CompileError represents a compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	// CUE errors may contain multiple errors
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
