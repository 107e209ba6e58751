package querytree

// SelectionState is the navigation state of the detail view
type SelectionState string

const (
	SelectionNone    SelectionState = "none"
	SelectionStep    SelectionState = "step"
	SelectionSubstep SelectionState = "substep"
)

// Selection is the current navigation target. Path is set only when State is
// SelectionSubstep, StepIndex whenever a step is selected.
type Selection struct {
	State      SelectionState `json:"state"`
	StepID     string         `json:"stepId,omitempty"`
	SubstepID  string         `json:"substepId,omitempty"`
	StepIndex  int            `json:"stepIndex"`
	Path       string         `json:"path,omitempty"`
	Generation uint64         `json:"generation"`
}

// SelectionTarget is an externally requested (stepId, substepId) pair.
// SubstepID may be empty to select a whole step.
type SelectionTarget struct {
	StepID    string `json:"stepId"`
	SubstepID string `json:"substepId"`
}
