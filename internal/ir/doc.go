// Package ir holds the loose value layer shared by the rule parser, the CLI
// and the golden-file tests.
//
// Rule input arrives as JSON or YAML text (or as already-decoded maps from a
// caller). DecodeJSON, DecodeYAML and Normalize reduce every source to one
// value set: nil, bool, string, int64, float64, []any and map[string]any.
// MarshalCanonical prints that value set deterministically, and RulesID and
// StatementID hash the canonical form with domain separation to give stable
// content-addressed identities.
//
// ir imports nothing internal.
package ir
