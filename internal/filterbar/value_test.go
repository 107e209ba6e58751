package filterbar

import "testing"

func TestValue_SetGet(t *testing.T) {
	tests := []struct {
		name      string
		kind      Kind
		in        FieldData
		wantValue bool
		wantErr   bool
	}{
		{"text", KindText, Text("abc"), true, false},
		{"blank text", KindText, Text("   "), false, false},
		{"single select", KindSingleSelect, Text("3"), true, false},
		{"multi select list", KindMultiSelect, List("A", "B"), true, false},
		{"multi select scalar", KindMultiSelect, Text("A"), true, false},
		{"multi select empty", KindMultiSelect, List(), false, false},
		{"boolean true", KindBoolean, Text("true"), true, false},
		{"boolean false", KindBoolean, Text("false"), false, false},
		{"boolean empty", KindBoolean, Text(""), false, false},
		{"boolean invalid", KindBoolean, Text("yes please"), false, true},
		{"datetime RFC3339", KindDateTime, Text("2024-05-01T10:00:00Z"), true, false},
		{"datetime date", KindDateTime, Text("2024-05-01"), true, false},
		{"datetime time", KindDateTime, Text("10:30:00"), true, false},
		{"datetime invalid", KindDateTime, Text("tomorrow"), false, true},
		{"datetime list", KindDateTime, List("2024-05-01"), false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewValue(tt.kind)
			err := v.Set(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Set() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got := v.HasValue(); got != tt.wantValue {
				t.Errorf("HasValue() = %v, want %v", got, tt.wantValue)
			}
		})
	}
}

func TestValue_Clear(t *testing.T) {
	v := NewValue(KindMultiSelect)
	if err := v.Set(List("A")); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	v.Clear()

	if v.HasValue() {
		t.Error("HasValue() = true after Clear()")
	}
	if v.Kind != KindMultiSelect {
		t.Errorf("Kind = %q after Clear(), want %q", v.Kind, KindMultiSelect)
	}
	got := v.Get()
	if !got.IsList || len(got.List) != 0 {
		t.Errorf("Get() = %+v, want empty list", got)
	}
}

func TestValue_UnknownKind(t *testing.T) {
	v := NewValue(Kind("slider"))
	if err := v.Set(Text("1")); err == nil {
		t.Error("Set() on unknown kind error = nil")
	}
	if Kind("slider").Valid() {
		t.Error("Valid() = true for unknown kind")
	}
}
