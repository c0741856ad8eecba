// Package queryir provides the relational query representation that compiled
// filter and sort rules are attached to.
//
// ARCHITECTURE:
//
// QueryIR sits between the rule compiler and the SQL renderers:
//
//	[rules AST] → [compiler] → [Query IR] → [querysql: sqlite | postgres | clickhouse]
//
// The compiler produces Predicate trees and OrderKey lists. It never builds
// SQL text. Select plays the part of a query builder: Where, OrderBy and
// Params attach compiled output and return new values.
//
// SEALED INTERFACES:
//
// Predicate is sealed using the marker method pattern. Only types in this
// package implement it, which lets renderers and Validate switch
// exhaustively:
//
//	switch p := pred.(type) {
//	case queryir.Compare:
//	    // column <op> :param
//	case queryir.And:
//	    // recurse
//	}
//
// CRITICAL PATTERNS:
//
// No literals: predicates reference values only by parameter name. Values
// live in Select.Bindings and reach the database as bound parameters.
//
// Value semantics: Select and all predicate nodes are plain values. Building
// a query never mutates a shared base query.
package queryir
