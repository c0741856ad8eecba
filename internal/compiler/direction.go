package compiler

import (
	"github.com/roach88/sift/internal/queryir"
	"github.com/roach88/sift/internal/rules"
)

// Direction turns a sort field into an ordering key.
type Direction interface {
	Code() string
	Apply(field FieldMap) queryir.OrderKey
}

// DefaultDirections returns a fresh list of asc and desc.
func DefaultDirections() []Direction {
	return []Direction{AscDirection{}, DescDirection{}}
}

// AscDirection orders by the bare column.
type AscDirection struct{}

func (AscDirection) Code() string { return rules.DirectionAsc }

func (AscDirection) Apply(field FieldMap) queryir.OrderKey {
	return queryir.OrderKey{Column: field.Column}
}

// DescDirection orders by the column in reverse.
type DescDirection struct{}

func (DescDirection) Code() string { return rules.DirectionDesc }

func (DescDirection) Apply(field FieldMap) queryir.OrderKey {
	return queryir.OrderKey{Column: field.Column, Desc: true}
}
