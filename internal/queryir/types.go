package queryir

// Predicate represents a boolean filter fragment in the QueryIR.
//
// This is a sealed interface - only types in this package implement it.
// Renderers switch exhaustively over the node types below.
//
// Predicate types:
//   - Compare: column <op> :param, optionally case-folded
//   - Like: column LIKE :param, optionally case-insensitive
//   - In: column IN :param (sequence parameter)
//   - IsNull: column IS [NOT] NULL
//   - IsEmpty: trim(column) is the empty string (negated: !=)
//   - Any: at least one related row satisfies a nested predicate
//   - And, Or, Not: boolean combinators
//   - True: always-true fragment
//
// Predicates never hold literal values. Every value reaches the database
// through a named parameter carried in Select.Bindings.
type Predicate interface {
	predicateNode() // Marker method - seals interface to this package
}

// Column is an opaque handle to a physical column.
type Column struct {
	Table string // Owning table (may be empty for unqualified columns)
	Name  string // Column name

	// Relation is set for collection-valued fields used with any/all.
	// The column is then the parent key joined against Relation.ForeignKey.
	Relation *Relation
}

// Relation describes a one-to-many child table reachable from a column.
//
// Any{Column: users.id (Relation: tags.user_id), Predicate: P} reads as
//
//	EXISTS (SELECT 1 FROM tags WHERE tags.user_id = users.id AND P)
type Relation struct {
	Table      string // Child table name
	ForeignKey string // Column in Table referencing the parent column
}

// Qualified returns "table.name", or just the name for unqualified columns.
func (c Column) Qualified() string {
	if c.Table == "" {
		return c.Name
	}
	return c.Table + "." + c.Name
}

// CompareOp is a comparison operator.
type CompareOp string

const (
	OpEq  CompareOp = "="
	OpNe  CompareOp = "!="
	OpGt  CompareOp = ">"
	OpGte CompareOp = ">="
	OpLt  CompareOp = "<"
	OpLte CompareOp = "<="
)

// Compare compares a column against one bound parameter.
//
// With Fold set both sides are lowercased before comparison:
//
//	lower(users.username) = lower(:username_0)
type Compare struct {
	Column Column
	Op     CompareOp
	Param  string // Parameter name in Select.Bindings
	Fold   bool
}

func (Compare) predicateNode() {}

// Like matches a column against a pattern parameter.
// The pattern (including any % wildcards) is the parameter value.
type Like struct {
	Column          Column
	Param           string
	CaseInsensitive bool
}

func (Like) predicateNode() {}

// In tests membership against a sequence-valued parameter.
type In struct {
	Column Column
	Param  string
	Negate bool // NOT IN
}

func (In) predicateNode() {}

// IsNull tests nullity. No parameter.
type IsNull struct {
	Column Column
	Negate bool // IS NOT NULL
}

func (IsNull) predicateNode() {}

// IsEmpty tests trimmed-string emptiness. No parameter.
type IsEmpty struct {
	Column Column
	Negate bool // trim(column) <> ''
}

func (IsEmpty) predicateNode() {}

// Any holds when at least one related row satisfies Predicate.
// Column.Relation must be set. A nil Predicate means any related row at all.
type Any struct {
	Column    Column
	Predicate Predicate
}

func (Any) predicateNode() {}

// And represents a conjunction of predicates (all must be true).
// An empty And is always true.
type And struct {
	Predicates []Predicate
}

func (And) predicateNode() {}

// Or represents a disjunction of predicates (at least one must be true).
// An empty Or is always false.
type Or struct {
	Predicates []Predicate
}

func (Or) predicateNode() {}

// Not negates a predicate.
type Not struct {
	Predicate Predicate
}

func (Not) predicateNode() {}

// True is the always-true fragment, rendered as 1 = 1.
type True struct{}

func (True) predicateNode() {}

// OrderKey is one ordering expression.
// Ascending keys render as the bare column.
type OrderKey struct {
	Column Column
	Desc   bool
}
