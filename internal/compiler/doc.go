// Package compiler compiles parsed filter and sort rules into QueryIR.
//
// ARCHITECTURE:
//
//	raw input → rules.Parser → rules.Rule → compiler (Config, Context) → queryir.Predicate + params
//	raw sort  → rules.ParseSort → []rules.SortKey → compiler → []queryir.OrderKey
//
// Config is the immutable registry bundle: fields, operators, conditions,
// directions and the parse syntaxes. Context is the mutable state of one
// compile call: bound parameters, per-field counters and included fields.
//
// EXTENSIBILITY:
//
// Operators, conditions and directions are interfaces keyed by code. A new
// operator is a type implementing Operator (or an OperatorFunc) added to
// Options.Operators; the compiler itself does not change.
//
// CRITICAL PATTERNS:
//
// Parameter naming: every value is bound as "{field}_{n}", n counting from
// 0 per field across the whole call, nested any/all rules included:
//
//	{"condition":"and","rules":[
//	    {"field":"username","operator":"equal","value":"a"},
//	    {"field":"username","operator":"equal","value":"b"}]}
//	→ users.username = :username_0 AND users.username = :username_1
//
// Field ACL: a field's BlockedOperators are checked before the operator is
// looked up, so a globally valid operator cannot bypass a field restriction.
//
// Atomicity: a failed compile leaves the caller's Context untouched and
// ApplyFilters/ApplySorting return no queries.
//
// Limits: Options.MaxRules and Options.MaxDepth reject oversized filter
// trees before any parameter is allocated.
//
// Concurrency: share a Config freely; never share a Context.
package compiler
