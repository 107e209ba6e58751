package filterbar

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Kind is the input variant of a filter field
type Kind string

const (
	KindText         Kind = "text"
	KindMultiSelect  Kind = "multi_select"
	KindSingleSelect Kind = "single_select"
	KindBoolean      Kind = "boolean"
	KindDateTime     Kind = "datetime"
)

// Valid reports whether k is a known kind
func (k Kind) Valid() bool {
	switch k {
	case KindText, KindMultiSelect, KindSingleSelect, KindBoolean, KindDateTime:
		return true
	}
	return false
}

// FieldDef describes one filter field
type FieldDef struct {
	// Name and Group are set from the YAML keys
	Name  string `yaml:"-" json:"name"`
	Group string `yaml:"-" json:"group"`

	Label   string   `yaml:"label" json:"label"`
	Kind    Kind     `yaml:"kind" json:"kind"`
	Column  string   `yaml:"column" json:"column"` // task field the filter applies to
	Options []string `yaml:"options" json:"options,omitempty"`

	// TrueValue is the stored value a checked boolean matches ("X" in SAP-style flags)
	TrueValue string `yaml:"true_value" json:"true_value,omitempty"`
}

// Group is an ordered set of fields
type Group struct {
	Name   string     `yaml:"-" json:"name"`
	Label  string     `yaml:"label" json:"label"`
	Fields []FieldDef `yaml:"-" json:"fields"`
}

// UnmarshalYAML keeps the field order of the YAML file
func (g *Group) UnmarshalYAML(node *yaml.Node) error {
	type groupOnly struct {
		Label  string              `yaml:"label"`
		Fields map[string]FieldDef `yaml:"fields"`
	}
	var raw groupOnly
	if err := node.Decode(&raw); err != nil {
		return err
	}
	g.Label = raw.Label

	for i := 0; i < len(node.Content); i += 2 {
		if node.Content[i].Value != "fields" {
			continue
		}
		fieldsNode := node.Content[i+1]
		for j := 0; j < len(fieldsNode.Content); j += 2 {
			name := fieldsNode.Content[j].Value
			if def, ok := raw.Fields[name]; ok {
				def.Name = name
				g.Fields = append(g.Fields, def)
			}
		}
		break
	}

	return nil
}

// Payload is the persisted form of one field value (a filter variant entry).
// FieldData is a string for scalar kinds and a list for multi-select.
type Payload struct {
	GroupName string    `json:"groupName"`
	FieldName string    `json:"fieldName"`
	FieldData FieldData `json:"fieldData"`
}

// FieldData holds either a single string or a list of strings
type FieldData struct {
	Scalar string
	List   []string
	IsList bool
}

// Text builds scalar field data
func Text(s string) FieldData { return FieldData{Scalar: s} }

// List builds list field data
func List(keys ...string) FieldData {
	if keys == nil {
		keys = []string{}
	}
	return FieldData{List: keys, IsList: true}
}

// MarshalJSON writes a string or an array
func (d FieldData) MarshalJSON() ([]byte, error) {
	if d.IsList {
		list := d.List
		if list == nil {
			list = []string{}
		}
		return json.Marshal(list)
	}
	return json.Marshal(d.Scalar)
}

// UnmarshalJSON accepts a string, an array of strings, a bool or null
func (d *FieldData) UnmarshalJSON(data []byte) error {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	switch v := raw.(type) {
	case nil:
		*d = FieldData{}
	case string:
		*d = Text(v)
	case bool:
		*d = Text(fmt.Sprintf("%t", v))
	case []interface{}:
		keys := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return fmt.Errorf("fieldData list must contain strings")
			}
			keys = append(keys, s)
		}
		*d = List(keys...)
	default:
		return fmt.Errorf("fieldData must be a string or a list of strings")
	}
	return nil
}
