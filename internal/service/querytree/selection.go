package querytree

import (
	"fmt"
	"sync"

	"steptree/internal/domain"
	models "steptree/internal/domain/models/querytree"
)

// Navigator tracks the detail-view selection against the published snapshot.
//
//	none    -> substep  on a resolver hit or a first-available pick
//	substep -> substep  on re-selection
//	any     -> step     when only a step id is selected
//	any     -> none     when a new snapshot is published
//
// A resolver miss leaves the current selection unchanged.
type Navigator struct {
	mu      sync.RWMutex
	current models.Selection
}

// NewNavigator creates a navigator in the no-selection state
func NewNavigator() *Navigator {
	return &Navigator{current: models.Selection{State: models.SelectionNone}}
}

// Current returns a copy of the current selection
func (n *Navigator) Current() models.Selection {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.current
}

// Reset drops the selection after a tree rebuild. A reset for a generation
// older than the current selection's is ignored.
func (n *Navigator) Reset(generation uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if generation < n.current.Generation {
		return
	}
	n.current = models.Selection{State: models.SelectionNone, Generation: generation}
}

// Select resolves target against snap and moves to the matching state.
// Returns a NotFoundError when the step or substep does not exist.
func (n *Navigator) Select(snap *models.Snapshot, target models.SelectionTarget) (models.Selection, error) {
	next, err := transition(snap, target)
	if err != nil {
		return n.Current(), err
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	// A rebuild that happened after snap was read has already reset us
	if next.Generation < n.current.Generation {
		return n.current, &domain.NotFoundError{
			Message: fmt.Sprintf("tree generation %d is stale", next.Generation),
		}
	}
	n.current = next
	return next, nil
}

// transition computes the selection for target without touching navigator state
func transition(snap *models.Snapshot, target models.SelectionTarget) (models.Selection, error) {
	var nodes []models.TreeNode
	var generation uint64
	if snap != nil {
		nodes = snap.Nodes
		generation = snap.Generation
	}

	if target.SubstepID == "" {
		stepIndex, ok := ResolveStep(nodes, target.StepID)
		if !ok {
			return models.Selection{}, &domain.NotFoundError{
				Message: fmt.Sprintf("step %q not found", target.StepID),
			}
		}
		return models.Selection{
			State:      models.SelectionStep,
			StepID:     target.StepID,
			StepIndex:  stepIndex,
			Generation: generation,
		}, nil
	}

	path, ok := Resolve(nodes, target.StepID, target.SubstepID)
	if !ok {
		return models.Selection{}, &domain.NotFoundError{
			Message: fmt.Sprintf("substep %q of step %q not found", target.SubstepID, target.StepID),
		}
	}

	return models.Selection{
		State:      models.SelectionSubstep,
		StepID:     target.StepID,
		SubstepID:  target.SubstepID,
		StepIndex:  path.StepIndex,
		Path:       path.String(),
		Generation: generation,
	}, nil
}
