package querytree

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestTreeNode_MarshalJSONTasks(t *testing.T) {
	tests := []struct {
		name string
		node TreeNode
		want string
	}{
		{
			name: "document without tasks",
			node: TreeNode{Text: "Review", Type: NodeTypeDocument, ID: "SSTEP2.1", StepID: "STEP02", Children: []TreeNode{}},
			want: `{"text":"Review","type":"document","id":"SSTEP2.1","stepId":"STEP02","children":[],"tasks":[]}`,
		},
		{
			name: "document with empty slice",
			node: TreeNode{Type: NodeTypeDocument, ID: "S", Children: []TreeNode{}, Tasks: []Task{}},
			want: `{"text":"","type":"document","id":"S","children":[],"tasks":[]}`,
		},
		{
			name: "folder",
			node: TreeNode{Text: "Plan", Type: NodeTypeFolder, ID: "STEP03", Children: []TreeNode{}},
			want: `{"text":"Plan","type":"folder","id":"STEP03","children":[]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := json.Marshal(tt.node)
			if err != nil {
				t.Fatalf("Marshal() error = %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("Marshal() =\n%s\nwant\n%s", got, tt.want)
			}
		})
	}
}

func TestTreeNode_MarshalJSONNested(t *testing.T) {
	snap := Snapshot{Nodes: []TreeNode{{
		Type: NodeTypeFolder,
		ID:   "STEP02",
		Children: []TreeNode{
			{Type: NodeTypeDocument, ID: "SSTEP2.1", StepID: "STEP02", Children: []TreeNode{}},
		},
	}}}

	data, err := json.Marshal(snap)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var decoded struct {
		Nodes []struct {
			Tasks    *[]any `json:"tasks"`
			Children []struct {
				Tasks *[]any `json:"tasks"`
			} `json:"children"`
		} `json:"nodes"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	if decoded.Nodes[0].Tasks != nil {
		t.Errorf("folder tasks = %v, want absent", *decoded.Nodes[0].Tasks)
	}
	doc := decoded.Nodes[0].Children[0]
	if doc.Tasks == nil {
		t.Fatal("document tasks key missing")
	}
	if diff := cmp.Diff([]any{}, *doc.Tasks); diff != "" {
		t.Errorf("document tasks mismatch (-want +got):\n%s", diff)
	}
}
