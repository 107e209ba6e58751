package filterbar

import (
	"encoding/json"
	"testing"

	models "steptree/internal/domain/models/querytree"

	"github.com/google/go-cmp/cmp"
)

func newTestBar(t *testing.T) *Bar {
	t.Helper()
	r, err := NewRegistry()
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}
	return r.NewBar()
}

func TestBar_Empty(t *testing.T) {
	bar := newTestBar(t)

	if got := bar.SummaryText(); got != "No filters active" {
		t.Errorf("SummaryText() = %q, want %q", got, "No filters active")
	}
	if got := bar.Predicates(); len(got) != 0 {
		t.Errorf("Predicates() = %+v, want none", got)
	}
	if got := len(bar.Fetch()); got != 8 {
		t.Errorf("len(Fetch()) = %d, want 8", got)
	}
}

func TestBar_ApplyAndPredicates(t *testing.T) {
	bar := newTestBar(t)

	err := bar.Apply([]Payload{
		{GroupName: "task", FieldName: "TaskDescr", FieldData: Text("  draft  ")},
		{GroupName: "task", FieldName: "WiPrio", FieldData: Text("1")},
		{GroupName: "task", FieldName: "WiStat", FieldData: List("READY", "STARTED")},
		{GroupName: "routing", FieldName: "Mancc", FieldData: Text("true")},
	})
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	want := []models.Predicate{
		{Field: "TaskDescr", Operator: models.OpContains, Values: []string{"draft"}},
		{Field: "WiPrio", Operator: models.OpEQ, Values: []string{"1"}},
		{Field: "WiStat", Operator: models.OpIn, Values: []string{"READY", "STARTED"}},
		{Field: "Mancc", Operator: models.OpEQ, Values: []string{"X"}},
	}
	if diff := cmp.Diff(want, bar.Predicates()); diff != "" {
		t.Errorf("Predicates() mismatch (-want +got):\n%s", diff)
	}

	wantSummary := "Filtered By (4): Description, Priority, Status, Manual confirmation"
	if got := bar.SummaryText(); got != wantSummary {
		t.Errorf("SummaryText() = %q, want %q", got, wantSummary)
	}
}

func TestBar_ApplyIsAllOrNothing(t *testing.T) {
	bar := newTestBar(t)

	err := bar.Apply([]Payload{
		{GroupName: "task", FieldName: "WiPrio", FieldData: Text("2")},
		{GroupName: "task", FieldName: "WiAed", FieldData: Text("not a date")},
	})
	if err == nil {
		t.Fatal("Apply() error = nil, want invalid date error")
	}
	if got := len(bar.FiltersWithValues()); got != 0 {
		t.Errorf("FiltersWithValues() has %d entries after failed Apply, want 0", got)
	}
}

func TestBar_ApplyErrors(t *testing.T) {
	tests := []struct {
		name    string
		payload Payload
	}{
		{"unknown field", Payload{GroupName: "task", FieldName: "Plant", FieldData: Text("1000")}},
		{"field in wrong group", Payload{GroupName: "routing", FieldName: "WiPrio", FieldData: Text("1")}},
		{"list for text field", Payload{GroupName: "task", FieldName: "WiText", FieldData: List("a")}},
		{"bad boolean", Payload{GroupName: "routing", FieldName: "Mancc", FieldData: Text("maybe")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bar := newTestBar(t)
			if err := bar.Apply([]Payload{tt.payload}); err == nil {
				t.Error("Apply() error = nil")
			}
		})
	}
}

func TestBar_FetchRoundTrip(t *testing.T) {
	bar := newTestBar(t)
	if err := bar.Apply([]Payload{
		{GroupName: "task", FieldName: "WiStat", FieldData: List("READY")},
		{GroupName: "task", FieldName: "WiAed", FieldData: Text("2024-05-01")},
	}); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	saved := bar.Fetch()

	restored := newTestBar(t)
	if err := restored.Apply(saved); err != nil {
		t.Fatalf("Apply(saved) error = %v", err)
	}
	if diff := cmp.Diff(bar.Predicates(), restored.Predicates()); diff != "" {
		t.Errorf("restored predicates mismatch (-want +got):\n%s", diff)
	}
}

func TestBar_ClearedFieldRestores(t *testing.T) {
	bar := newTestBar(t)
	_ = bar.Apply([]Payload{{GroupName: "task", FieldName: "WiText", FieldData: Text("x")}})
	_ = bar.Apply([]Payload{{GroupName: "task", FieldName: "WiText", FieldData: Text("")}})

	if got := len(bar.FiltersWithValues()); got != 0 {
		t.Errorf("FiltersWithValues() = %d, want 0 after clearing", got)
	}
}

func TestPayload_JSON(t *testing.T) {
	data := `[
		{"groupName": "task", "fieldName": "WiStat", "fieldData": ["READY", "STARTED"]},
		{"groupName": "task", "fieldName": "WiPrio", "fieldData": "1"},
		{"groupName": "routing", "fieldName": "Mancc", "fieldData": true},
		{"groupName": "task", "fieldName": "WiText", "fieldData": null}
	]`

	var payloads []Payload
	if err := json.Unmarshal([]byte(data), &payloads); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	want := []FieldData{
		List("READY", "STARTED"),
		Text("1"),
		Text("true"),
		{},
	}
	for i, p := range payloads {
		if diff := cmp.Diff(want[i], p.FieldData); diff != "" {
			t.Errorf("payload %d mismatch (-want +got):\n%s", i, diff)
		}
	}

	if err := json.Unmarshal([]byte(`{"fieldData": [1, 2]}`), &Payload{}); err == nil {
		t.Error("Unmarshal() of numeric list error = nil")
	}
}

func TestFieldData_MarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		data FieldData
		want string
	}{
		{"scalar", Text("a"), `"a"`},
		{"list", List("a", "b"), `["a","b"]`},
		{"empty list", List(), `[]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := json.Marshal(tt.data)
			if err != nil {
				t.Fatalf("Marshal() error = %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("Marshal() = %s, want %s", got, tt.want)
			}
		})
	}
}
