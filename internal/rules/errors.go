package rules

import (
	"errors"
	"fmt"
)

// SyntaxError is the single error type raised while parsing or compiling
// filter and sort rules.
//
// All syntax errors are terminal for the compile call that raised them.
// Callers typically map them to a 4xx response.
type SyntaxError struct {
	// Kind identifies the error category.
	Kind ErrorKind

	// Message is a human-readable description.
	Message string

	// Name is the offending key: a property, field, operator, condition
	// or direction depending on Kind.
	Name string

	// Field is set for BlockedOperator errors.
	Field string

	// Got and Expected are set for InvalidArity and LimitExceeded errors.
	Got      int
	Expected string
}

// ErrorKind categorizes syntax errors.
type ErrorKind string

const (
	// KindMissingRequiredProperty indicates a rule shape missing a mandatory key.
	KindMissingRequiredProperty ErrorKind = "MISSING_REQUIRED_PROPERTY"

	// KindUnknownField indicates a field absent from the field registry.
	KindUnknownField ErrorKind = "UNKNOWN_FIELD"

	// KindUnknownOperator indicates an operator code absent from the operator registry.
	KindUnknownOperator ErrorKind = "UNKNOWN_OPERATOR"

	// KindUnknownCondition indicates a condition absent from the condition registry.
	KindUnknownCondition ErrorKind = "UNKNOWN_CONDITION"

	// KindUnknownDirection indicates a sort direction absent from the direction registry.
	KindUnknownDirection ErrorKind = "UNKNOWN_DIRECTION"

	// KindBlockedOperator indicates an operator disallowed for a specific field.
	KindBlockedOperator ErrorKind = "BLOCKED_OPERATOR"

	// KindInvalidArity indicates a condition received the wrong number of children.
	KindInvalidArity ErrorKind = "INVALID_ARITY"

	// KindInvalidInputShape indicates input of the wrong type or structure.
	KindInvalidInputShape ErrorKind = "INVALID_INPUT_SHAPE"

	// KindLimitExceeded indicates a rule tree larger or deeper than the
	// configured limits.
	KindLimitExceeded ErrorKind = "LIMIT_EXCEEDED"
)

// Error implements the error interface.
func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// IsKind reports whether err is a SyntaxError of the given kind.
// Uses errors.As to handle wrapped errors.
func IsKind(err error, kind ErrorKind) bool {
	var se *SyntaxError
	if errors.As(err, &se) {
		return se.Kind == kind
	}
	return false
}

// IsSyntaxError reports whether err is (or wraps) a SyntaxError.
func IsSyntaxError(err error) bool {
	var se *SyntaxError
	return errors.As(err, &se)
}

// KindOf returns the kind of the wrapped SyntaxError, or "" if err is not one.
func KindOf(err error) ErrorKind {
	var se *SyntaxError
	if errors.As(err, &se) {
		return se.Kind
	}
	return ""
}

// NewMissingPropertyError creates a SyntaxError for a missing mandatory key.
func NewMissingPropertyError(name string) *SyntaxError {
	return &SyntaxError{
		Kind:    KindMissingRequiredProperty,
		Message: fmt.Sprintf("missing required property %q", name),
		Name:    name,
	}
}

// NewUnknownFieldError creates a SyntaxError for a field registry miss.
func NewUnknownFieldError(name string) *SyntaxError {
	return &SyntaxError{
		Kind:    KindUnknownField,
		Message: fmt.Sprintf("unknown field: %s", name),
		Name:    name,
	}
}

// NewUnknownOperatorError creates a SyntaxError for an operator registry miss.
func NewUnknownOperatorError(code string) *SyntaxError {
	return &SyntaxError{
		Kind:    KindUnknownOperator,
		Message: fmt.Sprintf("unknown operator: %s", code),
		Name:    code,
	}
}

// NewUnknownConditionError creates a SyntaxError for a condition registry miss.
func NewUnknownConditionError(name string) *SyntaxError {
	return &SyntaxError{
		Kind:    KindUnknownCondition,
		Message: fmt.Sprintf("unknown condition: %s", name),
		Name:    name,
	}
}

// NewUnknownDirectionError creates a SyntaxError for a direction registry miss.
func NewUnknownDirectionError(code string) *SyntaxError {
	return &SyntaxError{
		Kind:    KindUnknownDirection,
		Message: fmt.Sprintf("unknown direction: %s", code),
		Name:    code,
	}
}

// NewBlockedOperatorError creates a SyntaxError for an operator the field disallows.
func NewBlockedOperatorError(field, operator string) *SyntaxError {
	return &SyntaxError{
		Kind:    KindBlockedOperator,
		Message: fmt.Sprintf("operator %s is not allowed on field %s", operator, field),
		Name:    operator,
		Field:   field,
	}
}

// NewInvalidArityError creates a SyntaxError for a condition with the wrong child count.
func NewInvalidArityError(condition string, got int, expected string) *SyntaxError {
	return &SyntaxError{
		Kind:     KindInvalidArity,
		Message:  fmt.Sprintf("condition %s expects %s rules, got %d", condition, expected, got),
		Name:     condition,
		Got:      got,
		Expected: expected,
	}
}

// NewInvalidShapeError creates a SyntaxError for malformed input.
func NewInvalidShapeError(format string, args ...any) *SyntaxError {
	return &SyntaxError{
		Kind:    KindInvalidInputShape,
		Message: fmt.Sprintf(format, args...),
	}
}

// NewLimitExceededError creates a SyntaxError for a rule tree over a limit.
// limit names the limit ("rules" or "depth").
func NewLimitExceededError(limit string, got, max int) *SyntaxError {
	return &SyntaxError{
		Kind:     KindLimitExceeded,
		Message:  fmt.Sprintf("rule %s %d exceeds limit %d", limit, got, max),
		Name:     limit,
		Got:      got,
		Expected: fmt.Sprint(max),
	}
}
