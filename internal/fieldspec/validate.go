package fieldspec

import (
	"fmt"
	"regexp"
	"slices"

	"github.com/roach88/sift/internal/rules"
)

// Validation error codes (E100-E199)
const (
	ErrNoFields           = "E101" // at least one field required
	ErrEmptyFieldName     = "E102" // field name is empty
	ErrInvalidIdentifier  = "E103" // table or column is not a plain SQL identifier
	ErrUnknownTransform   = "E104" // transform name not registered
	ErrIncompleteRelation = "E105" // relation missing table or key
	ErrEmptyBlocked       = "E106" // blocked operator code is empty
	ErrUnknownSortField   = "E110" // default_sort references an undeclared field
	ErrInvalidDirection   = "E111" // default_sort direction is not asc or desc
	ErrNegativeLimit      = "E112" // max_rules or max_depth below zero
)

// identifierPattern admits unquoted SQL identifiers only. Table and column
// names are rendered into SQL text, so nothing else may pass.
var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidationError represents a field spec validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Line    int    `json:"line,omitempty"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("[%s] line %d: %s: %s", e.Code, e.Line, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate checks a spec before it is turned into field maps.
// Returns all errors found (does not fail-fast).
func Validate(spec *Spec) []ValidationError {
	var errs []ValidationError

	// E101: at least one field required
	if len(spec.Fields) == 0 {
		errs = append(errs, ValidationError{
			Field:   "fields",
			Message: "at least one field is required",
			Code:    ErrNoFields,
		})
	}

	declared := make(map[string]bool, len(spec.Fields))
	for i, f := range spec.Fields {
		path := fmt.Sprintf("fields.%s", f.Name)
		declared[f.Name] = true

		// E102: field name is empty
		if f.Name == "" {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("fields[%d]", i),
				Message: "field name is empty",
				Code:    ErrEmptyFieldName,
				Line:    f.Line,
			})
			continue
		}

		// E103: resolved table and column must be identifiers
		table := spec.tableFor(f)
		if table != "" && !identifierPattern.MatchString(table) {
			errs = append(errs, identifierError(path+".table", table, f.Line))
		}
		if column := f.columnName(); !identifierPattern.MatchString(column) {
			errs = append(errs, identifierError(path+".column", column, f.Line))
		}

		// E104: transform must be registered
		if _, err := TransformByName(f.Transform); err != nil {
			errs = append(errs, ValidationError{
				Field:   path + ".transform",
				Message: fmt.Sprintf("%v (known: %v)", err, TransformNames()),
				Code:    ErrUnknownTransform,
				Line:    f.Line,
			})
		}

		// E106: blocked codes must be non-empty
		if slices.Contains(f.Blocked, "") {
			errs = append(errs, ValidationError{
				Field:   path + ".blocked",
				Message: "blocked operator code is empty",
				Code:    ErrEmptyBlocked,
				Line:    f.Line,
			})
		}

		if f.Relation != nil {
			errs = append(errs, validateRelation(path+".relation", f.Relation, f.Line)...)
		}
	}

	for i, key := range spec.DefaultSort {
		// E110: default sort must reference a declared field
		if !declared[key.Field] {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("default_sort[%d].field", i),
				Message: fmt.Sprintf("undeclared field %q", key.Field),
				Code:    ErrUnknownSortField,
			})
		}
		// E111: only the built-in directions are allowed here
		if key.Direction != rules.DirectionAsc && key.Direction != rules.DirectionDesc {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("default_sort[%d].direction", i),
				Message: fmt.Sprintf("direction must be asc or desc, got %q", key.Direction),
				Code:    ErrInvalidDirection,
			})
		}
	}

	// E112: limits are counts, zero disables them
	if spec.MaxRules < 0 {
		errs = append(errs, ValidationError{
			Field:   "max_rules",
			Message: fmt.Sprintf("must not be negative, got %d", spec.MaxRules),
			Code:    ErrNegativeLimit,
		})
	}
	if spec.MaxDepth < 0 {
		errs = append(errs, ValidationError{
			Field:   "max_depth",
			Message: fmt.Sprintf("must not be negative, got %d", spec.MaxDepth),
			Code:    ErrNegativeLimit,
		})
	}

	return errs
}

func validateRelation(path string, rel *Relation, line int) []ValidationError {
	var errs []ValidationError
	if rel.Table == "" || rel.Key == "" {
		return append(errs, ValidationError{
			Field:   path,
			Message: "relation requires table and key",
			Code:    ErrIncompleteRelation,
			Line:    line,
		})
	}
	if !identifierPattern.MatchString(rel.Table) {
		errs = append(errs, identifierError(path+".table", rel.Table, line))
	}
	if !identifierPattern.MatchString(rel.Key) {
		errs = append(errs, identifierError(path+".key", rel.Key, line))
	}
	return errs
}

func identifierError(path, value string, line int) ValidationError {
	return ValidationError{
		Field:   path,
		Message: fmt.Sprintf("%q is not a valid identifier", value),
		Code:    ErrInvalidIdentifier,
		Line:    line,
	}
}
