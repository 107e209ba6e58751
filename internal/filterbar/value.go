package filterbar

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Value is the current input of one filter field. Which member is meaningful
// depends on Kind; every operation switches on Kind once.
type Value struct {
	Kind Kind

	text    string   // text, single_select, datetime
	keys    []string // multi_select
	checked bool     // boolean
}

// NewValue returns an empty value of kind k
func NewValue(k Kind) Value {
	return Value{Kind: k}
}

// Get returns the value as payload data
func (v *Value) Get() FieldData {
	switch v.Kind {
	case KindMultiSelect:
		return List(append([]string(nil), v.keys...)...)
	case KindBoolean:
		return Text(strconv.FormatBool(v.checked))
	default:
		return Text(v.text)
	}
}

// Set replaces the value from payload data
func (v *Value) Set(data FieldData) error {
	switch v.Kind {
	case KindText, KindSingleSelect:
		if data.IsList {
			return fmt.Errorf("%s field expects a single value", v.Kind)
		}
		v.text = data.Scalar

	case KindDateTime:
		if data.IsList {
			return fmt.Errorf("%s field expects a single value", v.Kind)
		}
		if data.Scalar != "" {
			if _, err := parseDateTime(data.Scalar); err != nil {
				return err
			}
		}
		v.text = data.Scalar

	case KindMultiSelect:
		if data.IsList {
			v.keys = append([]string(nil), data.List...)
		} else if data.Scalar != "" {
			v.keys = []string{data.Scalar}
		} else {
			v.keys = nil
		}

	case KindBoolean:
		if data.IsList {
			return fmt.Errorf("%s field expects a single value", v.Kind)
		}
		if data.Scalar == "" {
			v.checked = false
			return nil
		}
		b, err := strconv.ParseBool(data.Scalar)
		if err != nil {
			return fmt.Errorf("invalid boolean %q", data.Scalar)
		}
		v.checked = b

	default:
		return fmt.Errorf("unknown field kind %q", v.Kind)
	}
	return nil
}

// HasValue reports whether the field currently restricts results
func (v *Value) HasValue() bool {
	switch v.Kind {
	case KindMultiSelect:
		return len(v.keys) > 0
	case KindBoolean:
		return v.checked
	default:
		return strings.TrimSpace(v.text) != ""
	}
}

// Clear resets the value to empty
func (v *Value) Clear() {
	*v = NewValue(v.Kind)
}

// dateTimeLayouts are the accepted datetime inputs
var dateTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
	"15:04:05",
}

func parseDateTime(s string) (time.Time, error) {
	for _, layout := range dateTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date/time %q", s)
}
