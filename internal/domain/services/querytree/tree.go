package querytree

import (
	"context"

	"steptree/internal/domain/models/querytree"
)

// TreeService defines operations on the navigation tree built from the step source
type TreeService interface {
	// Refresh reads the source, rebuilds the tree and publishes it as the new snapshot.
	// On failure the previous snapshot stays in place.
	Refresh(ctx context.Context) (*querytree.Snapshot, error)

	// Tree returns the current snapshot, building it on first use
	Tree(ctx context.Context) (*querytree.Snapshot, error)

	// Resolve maps a (stepId, substepId) pair to its path and tasks in the current snapshot
	Resolve(ctx context.Context, stepID, substepID string) (*querytree.ResolvedSubstep, error)

	// Select moves the navigation selection to the target
	Select(ctx context.Context, target *querytree.SelectionTarget) (*querytree.Selection, error)

	// Selection returns the current navigation selection
	Selection(ctx context.Context) (*querytree.Selection, error)

	// DefaultSelection returns the first selectable (stepId, substepId) pair
	DefaultSelection(ctx context.Context) (*querytree.SelectionTarget, error)

	// SearchTasks reads a substep's tasks directly from the source
	SearchTasks(ctx context.Context, query *querytree.TaskQuery) ([]querytree.Task, error)
}
