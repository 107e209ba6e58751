package seed

import (
	"embed"
	"fmt"
	"os"

	models "steptree/internal/domain/models/querytree"

	"gopkg.in/yaml.v3"
)

//go:embed fixtures/*.yaml
var fixtureFiles embed.FS

// fixture mirrors the YAML layout of a seed file
type fixture struct {
	Steps []struct {
		ID          string `yaml:"id"`
		Description string `yaml:"description"`
		Substeps    []struct {
			ID          string           `yaml:"id"`
			Description string           `yaml:"description"`
			Tasks       []map[string]any `yaml:"tasks"`
		} `yaml:"substeps"`
	} `yaml:"steps"`
}

// DefaultSteps returns the embedded sample hierarchy
func DefaultSteps() ([]models.Step, error) {
	data, err := fixtureFiles.ReadFile("fixtures/steps.yaml")
	if err != nil {
		return nil, fmt.Errorf("read default fixture: %w", err)
	}
	return ParseSteps(data)
}

// LoadSteps reads a hierarchy from a YAML file
func LoadSteps(path string) ([]models.Step, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	return ParseSteps(data)
}

// ParseSteps converts fixture YAML into steps. Task entries are free-form
// maps so fields beyond the typed ones are kept in Task.Extra.
func ParseSteps(data []byte) ([]models.Step, error) {
	var f fixture
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture: %w", err)
	}

	steps := make([]models.Step, 0, len(f.Steps))
	for _, s := range f.Steps {
		step := models.Step{
			ID:          s.ID,
			Description: s.Description,
			Substeps:    make([]models.Substep, 0, len(s.Substeps)),
		}
		for _, sub := range s.Substeps {
			substep := models.Substep{
				ID:          sub.ID,
				StepID:      s.ID,
				Description: sub.Description,
				Tasks:       make([]models.Task, 0, len(sub.Tasks)),
			}
			for _, raw := range sub.Tasks {
				task := models.Task{Step: s.ID, Substep: sub.ID}
				for k, v := range raw {
					task.Set(k, v)
				}
				substep.Tasks = append(substep.Tasks, task)
			}
			step.Substeps = append(step.Substeps, substep)
		}
		steps = append(steps, step)
	}

	return steps, nil
}
