package querytree

import (
	models "steptree/internal/domain/models/querytree"
)

// Resolve finds the folder with id stepID, then the document with id
// substepID among its children. First match wins at both levels.
// ok is false when either scan misses; the zero Path is never a fallback.
func Resolve(nodes []models.TreeNode, stepID, substepID string) (models.Path, bool) {
	stepIndex, ok := ResolveStep(nodes, stepID)
	if !ok {
		return models.Path{}, false
	}

	for j := range nodes[stepIndex].Children {
		child := &nodes[stepIndex].Children[j]
		if child.Type == models.NodeTypeDocument && child.ID == substepID {
			return models.Path{StepIndex: stepIndex, SubstepIndex: j}, true
		}
	}

	return models.Path{}, false
}

// ResolveStep returns the index of the first folder with id stepID
func ResolveStep(nodes []models.TreeNode, stepID string) (int, bool) {
	for i := range nodes {
		if nodes[i].Type == models.NodeTypeFolder && nodes[i].ID == stepID {
			return i, true
		}
	}
	return 0, false
}

// TasksAt returns the tasks attached to the document at the given position.
// The indices must come from Resolve against the same nodes. Out of range
// indices yield an empty list rather than a panic.
func TasksAt(nodes []models.TreeNode, stepIndex, substepIndex int) []models.Task {
	if stepIndex < 0 || stepIndex >= len(nodes) {
		return []models.Task{}
	}
	children := nodes[stepIndex].Children
	if substepIndex < 0 || substepIndex >= len(children) {
		return []models.Task{}
	}

	tasks := children[substepIndex].Tasks
	if tasks == nil {
		return []models.Task{}
	}
	return tasks
}

// FirstSelectable returns the first folder that has a document child,
// together with that child's id. ok is false for an empty tree or when every
// folder is childless.
func FirstSelectable(nodes []models.TreeNode) (stepID, substepID string, ok bool) {
	for i := range nodes {
		if nodes[i].Type != models.NodeTypeFolder {
			continue
		}
		for j := range nodes[i].Children {
			if nodes[i].Children[j].IsSelectable() {
				return nodes[i].ID, nodes[i].Children[j].ID, true
			}
		}
	}
	return "", "", false
}
