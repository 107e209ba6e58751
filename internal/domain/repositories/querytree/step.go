package querytree

import (
	"context"

	"steptree/internal/domain/models/querytree"
)

// StepSource defines read access to the Step -> Substep -> Task hierarchy
type StepSource interface {
	// Name identifies the source in logs and errors
	Name() string

	// ListStepsExpanded returns all steps with substeps and tasks eagerly joined.
	// Missing embedded collections come back as empty slices.
	ListStepsExpanded(ctx context.Context) ([]querytree.Step, error)

	// ListTasks returns the tasks of one substep, narrowed by the query predicates
	ListTasks(ctx context.Context, query *querytree.TaskQuery) ([]querytree.Task, error)
}

// StepWriter defines write access used when seeding a source
type StepWriter interface {
	// ReplaceAll deletes the existing hierarchy and stores the given steps
	ReplaceAll(ctx context.Context, steps []querytree.Step) error
}
