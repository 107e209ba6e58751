package querytree

// Operator is a comparison applied to a task column
type Operator string

const (
	OpEQ       Operator = "EQ"
	OpContains Operator = "Contains"
	OpIn       Operator = "IN"
)

// Predicate restricts tasks by one column
type Predicate struct {
	Field    string   `json:"field"`
	Operator Operator `json:"operator"`
	Values   []string `json:"values"`
}

// TaskQuery is the "read tasks" request used to fetch a substep's tasks
// directly from the source, bypassing the tree snapshot
type TaskQuery struct {
	StepID     string      `json:"stepId"`
	SubstepID  string      `json:"substepId"`
	Predicates []Predicate `json:"predicates,omitempty"`
}
