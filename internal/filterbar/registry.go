package filterbar

import (
	"embed"
	"fmt"

	models "steptree/internal/domain/models/querytree"

	"gopkg.in/yaml.v3"
)

//go:embed config/*.yaml
var configFiles embed.FS

// Registry holds the filter field definitions loaded from YAML. It is
// read-only after construction.
type Registry struct {
	groups []Group
	fields map[string]FieldDef // key: group + "/" + name
}

// NewRegistry loads the embedded field definitions
func NewRegistry() (*Registry, error) {
	data, err := configFiles.ReadFile("config/fields.yaml")
	if err != nil {
		return nil, fmt.Errorf("failed to read fields.yaml: %w", err)
	}
	return ParseRegistry(data)
}

// ParseRegistry builds a registry from YAML field definitions
func ParseRegistry(data []byte) (*Registry, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal fields: %w", err)
	}
	if len(doc.Content) == 0 {
		return nil, fmt.Errorf("fields: empty document")
	}

	type groupsOnly struct {
		Groups map[string]Group `yaml:"groups"`
	}
	var raw groupsOnly
	if err := doc.Content[0].Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to unmarshal fields: %w", err)
	}

	r := &Registry{fields: make(map[string]FieldDef)}

	// Walk the mapping node to keep group order
	root := doc.Content[0]
	for i := 0; i < len(root.Content); i += 2 {
		if root.Content[i].Value != "groups" {
			continue
		}
		groupsNode := root.Content[i+1]
		for j := 0; j < len(groupsNode.Content); j += 2 {
			name := groupsNode.Content[j].Value
			group := raw.Groups[name]
			group.Name = name
			for k := range group.Fields {
				group.Fields[k].Group = name
				if err := validateDef(group.Fields[k]); err != nil {
					return nil, err
				}
				r.fields[key(name, group.Fields[k].Name)] = group.Fields[k]
			}
			r.groups = append(r.groups, group)
		}
	}

	return r, nil
}

func validateDef(def FieldDef) error {
	if !def.Kind.Valid() {
		return fmt.Errorf("field %s/%s: unknown kind %q", def.Group, def.Name, def.Kind)
	}
	if !models.IsTaskField(def.Column) {
		return fmt.Errorf("field %s/%s: unknown task column %q", def.Group, def.Name, def.Column)
	}
	return nil
}

func key(group, name string) string {
	return group + "/" + name
}

// Groups returns the field groups in display order
func (r *Registry) Groups() []Group {
	return r.groups
}

// Lookup finds a field by group and name
func (r *Registry) Lookup(group, name string) (FieldDef, bool) {
	def, ok := r.fields[key(group, name)]
	return def, ok
}

// NewBar creates an empty filter bar over the registry's fields
func (r *Registry) NewBar() *Bar {
	b := &Bar{registry: r, values: make(map[string]*Value, len(r.fields))}
	for k, def := range r.fields {
		v := NewValue(def.Kind)
		b.values[k] = &v
	}
	return b
}
