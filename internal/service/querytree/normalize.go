package querytree

import (
	models "steptree/internal/domain/models/querytree"
)

// Normalize maps steps to folder nodes and their substeps to document nodes.
// Input order is kept exactly; ids are neither sorted, deduplicated nor
// checked for uniqueness. Nil collections become empty slices.
func Normalize(steps []models.Step) []models.TreeNode {
	nodes := make([]models.TreeNode, 0, len(steps))

	for _, step := range steps {
		folder := models.TreeNode{
			Text:     step.Description,
			Type:     models.NodeTypeFolder,
			ID:       step.ID,
			Children: make([]models.TreeNode, 0, len(step.Substeps)),
		}

		for _, sub := range step.Substeps {
			folder.Children = append(folder.Children, models.TreeNode{
				Text:     sub.Description,
				Type:     models.NodeTypeDocument,
				ID:       sub.ID,
				StepID:   step.ID, // parent id, not sub.StepID: the nesting is authoritative
				Children: []models.TreeNode{},
				Tasks:    copyTasks(sub.Tasks),
			})
		}

		nodes = append(nodes, folder)
	}

	return nodes
}

// copyTasks copies the task list so snapshots never share backing arrays with
// source records
func copyTasks(tasks []models.Task) []models.Task {
	out := make([]models.Task, len(tasks))
	for i, t := range tasks {
		if t.Extra != nil {
			extra := make(map[string]any, len(t.Extra))
			for k, v := range t.Extra {
				extra[k] = v
			}
			t.Extra = extra
		}
		out[i] = t
	}
	return out
}

// DuplicateIDs reports step ids that occur more than once at the top level and
// substep ids repeated within the same step. The resolver picks the first
// match, so any duplicates hide later nodes.
func DuplicateIDs(nodes []models.TreeNode) []string {
	var dups []string
	seenSteps := make(map[string]bool, len(nodes))

	for _, folder := range nodes {
		if seenSteps[folder.ID] {
			dups = append(dups, folder.ID)
		}
		seenSteps[folder.ID] = true

		seenSubs := make(map[string]bool, len(folder.Children))
		for _, doc := range folder.Children {
			if seenSubs[doc.ID] {
				dups = append(dups, folder.ID+"/"+doc.ID)
			}
			seenSubs[doc.ID] = true
		}
	}

	return dups
}
