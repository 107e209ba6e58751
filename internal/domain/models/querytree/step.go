package querytree

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Step is a top-level grouping of the business process (rendered as a folder)
type Step struct {
	ID          string    `json:"Step" db:"id"`
	Description string    `json:"StepDescr" db:"description"`
	Substeps    []Substep `json:"ToSubstepList"`
}

// Substep is a child grouping under a Step (rendered as a document)
type Substep struct {
	ID          string `json:"Substep" db:"id"`
	StepID      string `json:"Step" db:"step_id"`
	Description string `json:"SubstepDescr" db:"description"`
	Tasks       []Task `json:"ToTaskList"`
}

// Task is a flat work item belonging to a Substep.
// Fields the source sends that are not listed here are kept in Extra and
// written back out unchanged.
type Task struct {
	Step      string `json:"Step" db:"step_id"`
	Substep   string `json:"Substep" db:"substep_id"`
	Task      string `json:"Task" db:"id"`
	TaskDescr string `json:"TaskDescr" db:"description"`
	WiText    string `json:"WiText" db:"wi_text"`
	WiID      string `json:"WiId" db:"wi_id"`
	WiCd      string `json:"WiCd" db:"wi_cd"`
	WiCt      string `json:"WiCt" db:"wi_ct"` // ISO 8601 duration, e.g. "PT00H00M00S"
	WiPrio    string `json:"WiPrio" db:"wi_prio"`
	WiStat    string `json:"WiStat" db:"wi_stat"`
	WiAed     string `json:"WiAed" db:"wi_aed"`
	WiForwBy  string `json:"WiForwBy" db:"wi_forw_by"`
	Screen    string `json:"Screen" db:"screen"`
	Magms     string `json:"Magms" db:"magms"`
	Mancc     string `json:"Mancc" db:"mancc"`

	Extra map[string]any `json:"-" db:"extra"`
}

// taskFields maps wire names to the typed fields of a Task
func (t *Task) taskFields() map[string]*string {
	return map[string]*string{
		"Step":      &t.Step,
		"Substep":   &t.Substep,
		"Task":      &t.Task,
		"TaskDescr": &t.TaskDescr,
		"WiText":    &t.WiText,
		"WiId":      &t.WiID,
		"WiCd":      &t.WiCd,
		"WiCt":      &t.WiCt,
		"WiPrio":    &t.WiPrio,
		"WiStat":    &t.WiStat,
		"WiAed":     &t.WiAed,
		"WiForwBy":  &t.WiForwBy,
		"Screen":    &t.Screen,
		"Magms":     &t.Magms,
		"Mancc":     &t.Mancc,
	}
}

// Set assigns a field by its wire name. Unknown names land in Extra.
func (t *Task) Set(name string, value any) {
	if field, ok := t.taskFields()[name]; ok {
		*field = coerceString(value)
		return
	}
	if t.Extra == nil {
		t.Extra = make(map[string]any)
	}
	t.Extra[name] = value
}

// Get returns a field by its wire name, looking in Extra for unknown names
func (t *Task) Get(name string) (any, bool) {
	if field, ok := t.taskFields()[name]; ok {
		return *field, true
	}
	v, ok := t.Extra[name]
	return v, ok
}

// MarshalJSON writes typed fields and Extra at the same level
func (t Task) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, len(t.Extra)+15)
	for k, v := range t.Extra {
		m[k] = v
	}
	for name, field := range t.taskFields() {
		m[name] = *field
	}
	return json.Marshal(m)
}

// UnmarshalJSON coerces each field of the record. Absent fields stay empty and
// non-string scalars are converted to their string form; nothing is dropped.
func (t *Task) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode task: %w", err)
	}
	*t = Task{}
	for k, v := range raw {
		t.Set(k, v)
	}
	return nil
}

// coerceString converts a decoded JSON scalar to a string. Null and
// structured values become the empty string.
func coerceString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case json.Number:
		return val.String()
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	default:
		return ""
	}
}

// TaskFieldNames lists the wire names of the typed task fields in display order
var TaskFieldNames = []string{
	"Step", "Substep", "Task", "TaskDescr", "WiText", "WiId", "WiCd", "WiCt",
	"WiPrio", "WiStat", "WiAed", "WiForwBy", "Screen", "Magms", "Mancc",
}

// IsTaskField reports whether name is a typed task field
func IsTaskField(name string) bool {
	for _, f := range TaskFieldNames {
		if f == name {
			return true
		}
	}
	return false
}
