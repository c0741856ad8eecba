// Package harness runs rule compilation scenarios end to end.
//
// A scenario is a YAML file naming a field spec, a base table, raw filter
// and sort input, and assertions about the outcome:
//
//	name: any_tag
//	description: Users with at least one related tag
//	fields: ../fields/users.cue
//	table: users
//	setup_file: ../setup/users.sql
//	filter:
//	  field: tags
//	  operator: any
//	  value: {field: tags.name, operator: equal, value: go}
//	assertions:
//	  - type: row_count
//	    count: 2
//
// ARCHITECTURE:
//
//	[scenario.yaml] → [fieldspec.Load] → [compiler] → [querysql] → [store (sqlite)]
//	                                                       ↓
//	                                             [Result] → [assertions, golden]
//
// Run compiles the filter and sort the way a request handler would, through
// compiler.BuildFilters and compiler.BuildSorting sharing one Context. A
// compile error is captured on the Result so scenarios can assert on its
// kind. Scenarios with setup SQL also execute the query against a fresh
// in-memory SQLite database.
//
// Golden files hold the canonical JSON snapshot of each scenario and live in
// testdata/golden. Regenerate them with:
//
//	go test ./internal/harness -update
package harness
