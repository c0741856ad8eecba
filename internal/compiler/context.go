package compiler

import (
	"fmt"
	"maps"
	"slices"
)

// Context is the mutable state of one compile call.
//
// A Context must never be shared between concurrent compilations:
// parameter names are allocated from its counters, and sharing it would
// hand two requests the same names.
type Context struct {
	// Params holds every bound parameter value by name.
	Params map[string]any

	// ParamCounters holds the next suffix to allocate per field name.
	ParamCounters map[string]int

	// IncludedFields records the fields a compile call touched.
	IncludedFields map[string]bool
}

// NewContext creates an empty context.
func NewContext() *Context {
	return &Context{
		Params:         map[string]any{},
		ParamCounters:  map[string]int{},
		IncludedFields: map[string]bool{},
	}
}

// AddParam binds value under a fresh name for field and returns the name.
// Names are "{field}_{n}" with n counting from 0 per field.
func (c *Context) AddParam(field string, value any) string {
	n := c.ParamCounters[field]
	name := fmt.Sprintf("%s_%d", field, n)
	c.Params[name] = value
	c.ParamCounters[field] = n + 1
	return name
}

// Include records that field was referenced.
func (c *Context) Include(field string) {
	c.IncludedFields[field] = true
}

// Fields returns the included field names, sorted.
func (c *Context) Fields() []string {
	return slices.Sorted(maps.Keys(c.IncludedFields))
}

// clone returns a deep copy so a failed compile can be discarded without
// touching the original.
func (c *Context) clone() *Context {
	return &Context{
		Params:         cloneMap(c.Params),
		ParamCounters:  cloneMap(c.ParamCounters),
		IncludedFields: cloneMap(c.IncludedFields),
	}
}

func cloneMap[V any](m map[string]V) map[string]V {
	out := make(map[string]V, len(m))
	maps.Copy(out, m)
	return out
}

// commit replaces c's state with other's.
func (c *Context) commit(other *Context) {
	c.Params = other.Params
	c.ParamCounters = other.ParamCounters
	c.IncludedFields = other.IncludedFields
}
