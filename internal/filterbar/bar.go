package filterbar

import (
	"fmt"
	"strings"

	models "steptree/internal/domain/models/querytree"
)

// Bar is one filter bar instance: a value per registered field.
// Not safe for concurrent use; build one per request.
type Bar struct {
	registry *Registry
	values   map[string]*Value
}

// Fetch returns the payload of every field in display order, including
// empty ones, so a saved variant restores cleared fields too
func (b *Bar) Fetch() []Payload {
	var out []Payload
	for _, g := range b.registry.groups {
		for _, def := range g.Fields {
			v := b.values[key(g.Name, def.Name)]
			out = append(out, Payload{
				GroupName: g.Name,
				FieldName: def.Name,
				FieldData: v.Get(),
			})
		}
	}
	return out
}

// Apply sets field values from payloads. Unknown fields are an error; the
// bar is left unchanged when any payload fails.
func (b *Bar) Apply(payloads []Payload) error {
	staged := make(map[string]Value, len(payloads))

	for _, p := range payloads {
		k := key(p.GroupName, p.FieldName)
		current, ok := b.values[k]
		if !ok {
			return fmt.Errorf("unknown filter field %s/%s", p.GroupName, p.FieldName)
		}
		next := NewValue(current.Kind)
		if err := next.Set(p.FieldData); err != nil {
			return fmt.Errorf("filter field %s/%s: %w", p.GroupName, p.FieldName, err)
		}
		staged[k] = next
	}

	for k, v := range staged {
		v := v
		b.values[k] = &v
	}
	return nil
}

// FiltersWithValues returns the definitions of fields that have a value
func (b *Bar) FiltersWithValues() []FieldDef {
	var out []FieldDef
	for _, g := range b.registry.groups {
		for _, def := range g.Fields {
			if b.values[key(g.Name, def.Name)].HasValue() {
				out = append(out, def)
			}
		}
	}
	return out
}

// Predicates converts filled fields into task predicates.
// text -> Contains, single select and datetime -> EQ, multi select -> IN,
// boolean -> EQ against the field's true value.
func (b *Bar) Predicates() []models.Predicate {
	preds := []models.Predicate{}

	for _, def := range b.FiltersWithValues() {
		v := b.values[key(def.Group, def.Name)]

		switch def.Kind {
		case KindText:
			preds = append(preds, models.Predicate{
				Field: def.Column, Operator: models.OpContains, Values: []string{strings.TrimSpace(v.text)},
			})
		case KindSingleSelect, KindDateTime:
			preds = append(preds, models.Predicate{
				Field: def.Column, Operator: models.OpEQ, Values: []string{v.text},
			})
		case KindMultiSelect:
			preds = append(preds, models.Predicate{
				Field: def.Column, Operator: models.OpIn, Values: append([]string(nil), v.keys...),
			})
		case KindBoolean:
			trueValue := def.TrueValue
			if trueValue == "" {
				trueValue = "true"
			}
			preds = append(preds, models.Predicate{
				Field: def.Column, Operator: models.OpEQ, Values: []string{trueValue},
			})
		}
	}

	return preds
}

// SummaryText is the collapsed-header label, e.g. "Filtered By (2): Priority, Status"
func (b *Bar) SummaryText() string {
	filled := b.FiltersWithValues()
	if len(filled) == 0 {
		return "No filters active"
	}

	labels := make([]string, len(filled))
	for i, def := range filled {
		labels[i] = def.Label
	}
	return fmt.Sprintf("Filtered By (%d): %s", len(filled), strings.Join(labels, ", "))
}
