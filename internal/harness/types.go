package harness

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every assertion held.
	Pass bool `json:"pass"`

	// SQL is the rendered query. Empty when compilation failed.
	SQL string `json:"sql,omitempty"`

	// Params are the bound parameters produced by the compiler.
	Params map[string]any `json:"params"`

	// IncludedFields lists the fields the filter and sort referenced.
	IncludedFields []string `json:"included_fields"`

	// ErrorKind is the rules.ErrorKind of a compile failure, or "".
	ErrorKind string `json:"error_kind,omitempty"`

	// Error is the compile failure message, or "".
	Error string `json:"error,omitempty"`

	// Rows are the query results when the scenario executes.
	Rows []map[string]any `json:"rows,omitempty"`

	// Errors contains assertion failure messages.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:           true,
		Params:         map[string]any{},
		IncludedFields: []string{},
		Errors:         []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
