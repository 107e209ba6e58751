package querytree

import (
	"testing"

	models "steptree/internal/domain/models/querytree"

	"github.com/google/go-cmp/cmp"
)

// sampleSteps is the two-step hierarchy used across the package tests
func sampleSteps() []models.Step {
	return []models.Step{
		{
			ID:          "STEP01",
			Description: "Approve detailed requirements",
			Substeps: []models.Substep{
				{
					ID:          "SSTEP1.1",
					StepID:      "STEP01",
					Description: "Draft requirements",
					Tasks: []models.Task{
						{Step: "STEP01", Substep: "SSTEP1.1", Task: "T1", WiPrio: "3"},
					},
				},
				{ID: "SSTEP1.2", StepID: "STEP01", Description: "Submit for approval"},
			},
		},
		{ID: "STEP02", Description: "Select contractor"},
	}
}

func TestNormalize(t *testing.T) {
	nodes := Normalize(sampleSteps())

	want := []models.TreeNode{
		{
			Text:     "Approve detailed requirements",
			Type:     models.NodeTypeFolder,
			ID:       "STEP01",
			Children: []models.TreeNode{
				{
					Text:     "Draft requirements",
					Type:     models.NodeTypeDocument,
					ID:       "SSTEP1.1",
					StepID:   "STEP01",
					Children: []models.TreeNode{},
					Tasks: []models.Task{
						{Step: "STEP01", Substep: "SSTEP1.1", Task: "T1", WiPrio: "3"},
					},
				},
				{
					Text:     "Submit for approval",
					Type:     models.NodeTypeDocument,
					ID:       "SSTEP1.2",
					StepID:   "STEP01",
					Children: []models.TreeNode{},
					Tasks:    []models.Task{},
				},
			},
		},
		{
			Text:     "Select contractor",
			Type:     models.NodeTypeFolder,
			ID:       "STEP02",
			Children: []models.TreeNode{},
		},
	}

	if diff := cmp.Diff(want, nodes); diff != "" {
		t.Errorf("Normalize() mismatch (-want +got):\n%s", diff)
	}
}

func TestNormalize_Empty(t *testing.T) {
	for _, steps := range [][]models.Step{nil, {}} {
		nodes := Normalize(steps)
		if nodes == nil {
			t.Fatal("Normalize() returned nil, want empty slice")
		}
		if len(nodes) != 0 {
			t.Errorf("len(Normalize()) = %d, want 0", len(nodes))
		}
	}
}

func TestNormalize_KeepsOrderAndDuplicates(t *testing.T) {
	steps := []models.Step{
		{ID: "B"},
		{ID: "A"},
		{ID: "B", Description: "second B"},
	}

	nodes := Normalize(steps)

	var ids []string
	for _, n := range nodes {
		ids = append(ids, n.ID)
	}
	if diff := cmp.Diff([]string{"B", "A", "B"}, ids); diff != "" {
		t.Errorf("node ids mismatch (-want +got):\n%s", diff)
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	steps := sampleSteps()

	first := Normalize(steps)
	second := Normalize(steps)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("rebuild from the same steps differs (-first +second):\n%s", diff)
	}
}

func TestNormalize_DoesNotShareTasks(t *testing.T) {
	steps := sampleSteps()
	steps[0].Substeps[0].Tasks[0].Extra = map[string]any{"Custom": "a"}

	nodes := Normalize(steps)

	steps[0].Substeps[0].Tasks[0].Task = "changed"
	steps[0].Substeps[0].Tasks[0].Extra["Custom"] = "b"

	got := nodes[0].Children[0].Tasks[0]
	if got.Task != "T1" {
		t.Errorf("Task = %q, want %q", got.Task, "T1")
	}
	if got.Extra["Custom"] != "a" {
		t.Errorf("Extra[Custom] = %v, want %q", got.Extra["Custom"], "a")
	}
}

func TestNormalize_DocumentStepIDFromParent(t *testing.T) {
	steps := []models.Step{
		{ID: "STEP01", Substeps: []models.Substep{{ID: "S1", StepID: "OTHER"}}},
	}

	nodes := Normalize(steps)

	if got := nodes[0].Children[0].StepID; got != "STEP01" {
		t.Errorf("StepID = %q, want %q", got, "STEP01")
	}
}

func TestDuplicateIDs(t *testing.T) {
	tests := []struct {
		name  string
		steps []models.Step
		want  []string
	}{
		{
			name:  "unique",
			steps: sampleSteps(),
			want:  nil,
		},
		{
			name: "duplicate step",
			steps: []models.Step{
				{ID: "STEP01"}, {ID: "STEP01"},
			},
			want: []string{"STEP01"},
		},
		{
			name: "duplicate substep within step",
			steps: []models.Step{
				{ID: "STEP01", Substeps: []models.Substep{{ID: "S1"}, {ID: "S1"}}},
			},
			want: []string{"STEP01/S1"},
		},
		{
			name: "same substep id under different steps",
			steps: []models.Step{
				{ID: "STEP01", Substeps: []models.Substep{{ID: "S1"}}},
				{ID: "STEP02", Substeps: []models.Substep{{ID: "S1"}}},
			},
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DuplicateIDs(Normalize(tt.steps))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("DuplicateIDs() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
