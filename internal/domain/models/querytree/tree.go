package querytree

import (
	"encoding/json"
	"fmt"
	"time"
)

// NodeType distinguishes steps (folders) from substeps (documents)
type NodeType string

const (
	NodeTypeFolder   NodeType = "folder"
	NodeTypeDocument NodeType = "document"
)

// TreeNode is the display projection of a Step or Substep.
// Tasks are attached to document nodes only and are not navigable children.
type TreeNode struct {
	Text     string     `json:"text"`
	Type     NodeType   `json:"type"`
	ID       string     `json:"id"`
	StepID   string     `json:"stepId,omitempty"` // owning step, documents only
	Children []TreeNode `json:"children"`
	Tasks    []Task     `json:"tasks,omitempty"`
}

// MarshalJSON always writes tasks on document nodes, as [] when there are
// none, and never on folders
func (n TreeNode) MarshalJSON() ([]byte, error) {
	type node TreeNode
	if n.Type != NodeTypeDocument {
		n.Tasks = nil
		return json.Marshal(node(n))
	}

	tasks := n.Tasks
	if tasks == nil {
		tasks = []Task{}
	}
	return json.Marshal(struct {
		node
		Tasks []Task `json:"tasks"`
	}{node: node(n), Tasks: tasks})
}

// IsSelectable reports whether the node can be shown in the detail view
func (n *TreeNode) IsSelectable() bool {
	return n.Type == NodeTypeDocument
}

// Snapshot is one complete, atomically published tree. Never mutated after
// publication; a rebuild replaces it wholesale.
type Snapshot struct {
	Version    string     `json:"version"`
	Generation uint64     `json:"generation"`
	BuiltAt    time.Time  `json:"built_at"`
	Nodes      []TreeNode `json:"nodes"`
}

// StepCount returns the number of top-level folders
func (s *Snapshot) StepCount() int {
	if s == nil {
		return 0
	}
	return len(s.Nodes)
}

// Path addresses a document node by position within a snapshot
type Path struct {
	StepIndex    int `json:"stepIndex"`
	SubstepIndex int `json:"substepIndex"`
}

// String returns the binding path used by display collaborators
func (p Path) String() string {
	return fmt.Sprintf("root/%d/children/%d", p.StepIndex, p.SubstepIndex)
}

// ResolvedSubstep is a resolver hit together with the tasks found there
type ResolvedSubstep struct {
	StepID       string `json:"stepId"`
	SubstepID    string `json:"substepId"`
	Path         string `json:"path"`
	StepIndex    int    `json:"stepIndex"`
	SubstepIndex int    `json:"substepIndex"`
	Generation   uint64 `json:"generation"`
	Tasks        []Task `json:"tasks"`
}
