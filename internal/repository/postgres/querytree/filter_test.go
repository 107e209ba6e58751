package querytree

import (
	"testing"

	models "steptree/internal/domain/models/querytree"

	"github.com/google/go-cmp/cmp"
)

func TestBuildTaskWhere(t *testing.T) {
	tests := []struct {
		name      string
		query     *models.TaskQuery
		wantWhere string
		wantArgs  []interface{}
		wantErr   bool
	}{
		{
			name:      "substep only",
			query:     &models.TaskQuery{StepID: "STEP01", SubstepID: "SSTEP1.1"},
			wantWhere: "step_id = $1 AND substep_id = $2",
			wantArgs:  []interface{}{"STEP01", "SSTEP1.1"},
		},
		{
			name: "all operators",
			query: &models.TaskQuery{
				StepID:    "STEP01",
				SubstepID: "SSTEP1.1",
				Predicates: []models.Predicate{
					{Field: "WiPrio", Operator: models.OpEQ, Values: []string{"1"}},
					{Field: "TaskDescr", Operator: models.OpContains, Values: []string{"50%_off"}},
					{Field: "WiStat", Operator: models.OpIn, Values: []string{"READY", "STARTED"}},
				},
			},
			wantWhere: "step_id = $1 AND substep_id = $2 AND wi_prio = $3 AND description ILIKE $4 AND wi_stat = ANY($5)",
			wantArgs: []interface{}{
				"STEP01", "SSTEP1.1", "1", `%50\%\_off%`, []string{"READY", "STARTED"},
			},
		},
		{
			name: "predicate without values is skipped",
			query: &models.TaskQuery{
				StepID:     "S",
				SubstepID:  "SS",
				Predicates: []models.Predicate{{Field: "WiStat", Operator: models.OpIn}},
			},
			wantWhere: "step_id = $1 AND substep_id = $2",
			wantArgs:  []interface{}{"S", "SS"},
		},
		{
			name: "unknown field",
			query: &models.TaskQuery{
				Predicates: []models.Predicate{{Field: "1=1; DROP TABLE", Operator: models.OpEQ, Values: []string{"x"}}},
			},
			wantErr: true,
		},
		{
			name: "unknown operator",
			query: &models.TaskQuery{
				Predicates: []models.Predicate{{Field: "WiPrio", Operator: "GT", Values: []string{"x"}}},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			where, args, err := buildTaskWhere(tt.query)
			if (err != nil) != tt.wantErr {
				t.Fatalf("buildTaskWhere() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if where != tt.wantWhere {
				t.Errorf("where = %q, want %q", where, tt.wantWhere)
			}
			if diff := cmp.Diff(tt.wantArgs, args); diff != "" {
				t.Errorf("args mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestTaskColumnsCoverTaskFields(t *testing.T) {
	for _, name := range models.TaskFieldNames {
		if _, ok := taskColumns[name]; !ok {
			t.Errorf("task field %q has no column", name)
		}
	}
}
