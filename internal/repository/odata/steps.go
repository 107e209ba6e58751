package odata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"steptree/internal/domain"
	models "steptree/internal/domain/models/querytree"
	repo "steptree/internal/domain/repositories/querytree"

	"github.com/tidwall/gjson"
)

const (
	sourceName = "odata"

	stepEntitySet = "StepListSet"
	taskEntitySet = "TaskListSet"

	navSubsteps = "ToSubstepList"
	navTasks    = "ToTaskList"
)

// StepRepository reads the step hierarchy from the OData gateway
type StepRepository struct {
	client *Client
}

var _ repo.StepSource = (*StepRepository)(nil)

// NewStepRepository creates a step source backed by client
func NewStepRepository(client *Client) *StepRepository {
	return &StepRepository{client: client}
}

// Name identifies the source
func (r *StepRepository) Name() string {
	return sourceName
}

// ListStepsExpanded reads StepListSet with substeps and tasks expanded
func (r *StepRepository) ListStepsExpanded(ctx context.Context) ([]models.Step, error) {
	params := url.Values{}
	params.Set("$expand", navSubsteps+","+navSubsteps+"/"+navTasks)

	results, err := r.client.Read(ctx, stepEntitySet, params)
	if err != nil {
		return nil, fetchError("read steps", err)
	}

	steps, err := parseSteps(results)
	if err != nil {
		return nil, fetchError("read steps", err)
	}
	return steps, nil
}

// ListTasks reads TaskListSet filtered to one substep plus the predicates
func (r *StepRepository) ListTasks(ctx context.Context, query *models.TaskQuery) ([]models.Task, error) {
	filter, err := buildFilter(query)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	params := url.Values{}
	params.Set("$filter", filter)

	results, err := r.client.Read(ctx, taskEntitySet, params)
	if err != nil {
		return nil, fetchError("read tasks", err)
	}

	tasks, err := parseTasks(results)
	if err != nil {
		return nil, fetchError("read tasks", err)
	}
	return tasks, nil
}

// parseSteps maps result rows to steps. Missing navigation collections are
// treated as empty.
func parseSteps(results gjson.Result) ([]models.Step, error) {
	steps := []models.Step{}
	var parseErr error

	results.ForEach(func(_, row gjson.Result) bool {
		step := models.Step{
			ID:          row.Get("Step").String(),
			Description: row.Get("StepDescr").String(),
			Substeps:    []models.Substep{},
		}

		Results(row.Get(navSubsteps)).ForEach(func(_, subRow gjson.Result) bool {
			sub := models.Substep{
				ID:          subRow.Get("Substep").String(),
				StepID:      subRow.Get("Step").String(),
				Description: subRow.Get("SubstepDescr").String(),
			}
			sub.Tasks, parseErr = parseTasks(Results(subRow.Get(navTasks)))
			if parseErr != nil {
				return false
			}
			step.Substeps = append(step.Substeps, sub)
			return true
		})
		if parseErr != nil {
			return false
		}

		steps = append(steps, step)
		return true
	})

	if parseErr != nil {
		return nil, parseErr
	}
	return steps, nil
}

// parseTasks decodes each task row field for field
func parseTasks(results gjson.Result) ([]models.Task, error) {
	tasks := []models.Task{}
	var parseErr error

	results.ForEach(func(_, row gjson.Result) bool {
		if !row.IsObject() {
			return true
		}
		var t models.Task
		if err := json.Unmarshal([]byte(row.Raw), &t); err != nil {
			parseErr = err
			return false
		}
		tasks = append(tasks, t)
		return true
	})

	if parseErr != nil {
		return nil, parseErr
	}
	return tasks, nil
}

// buildFilter renders the $filter expression for a task query
func buildFilter(query *models.TaskQuery) (string, error) {
	clauses := []string{
		"Step eq " + Literal(query.StepID),
		"Substep eq " + Literal(query.SubstepID),
	}

	for _, p := range query.Predicates {
		if !models.IsTaskField(p.Field) {
			return "", fmt.Errorf("unknown task field %q", p.Field)
		}
		if len(p.Values) == 0 {
			continue
		}

		switch p.Operator {
		case models.OpEQ:
			clauses = append(clauses, p.Field+" eq "+Literal(p.Values[0]))
		case models.OpContains:
			clauses = append(clauses, "substringof("+Literal(p.Values[0])+","+p.Field+")")
		case models.OpIn:
			alts := make([]string, len(p.Values))
			for i, v := range p.Values {
				alts[i] = p.Field + " eq " + Literal(v)
			}
			clauses = append(clauses, "("+strings.Join(alts, " or ")+")")
		default:
			return "", fmt.Errorf("unsupported operator %q", p.Operator)
		}
	}

	return strings.Join(clauses, " and "), nil
}

func fetchError(op string, err error) error {
	return &domain.FetchError{Source: sourceName, Operation: op, Err: err}
}
