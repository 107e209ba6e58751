package handler

import (
	"fmt"
	"log/slog"
	"net/http"

	"steptree/internal/config"
	"steptree/internal/domain"
	models "steptree/internal/domain/models/querytree"
	svc "steptree/internal/domain/services/querytree"
	"steptree/internal/filterbar"
	"steptree/internal/httputil"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// TaskHandler serves direct task reads and filter-bar searches
type TaskHandler struct {
	treeService svc.TreeService
	filters     *filterbar.Registry
	logger      *slog.Logger
}

// NewTaskHandler creates a new task handler
func NewTaskHandler(treeService svc.TreeService, filters *filterbar.Registry, logger *slog.Logger) *TaskHandler {
	return &TaskHandler{
		treeService: treeService,
		filters:     filters,
		logger:      logger,
	}
}

// SearchTasksRequest is the body of a filter-bar search
type SearchTasksRequest struct {
	StepID    string              `json:"stepId"`
	SubstepID string              `json:"substepId"`
	Filters   []filterbar.Payload `json:"filters"`
}

// SearchTasksResponse carries the tasks and the filter summary label
type SearchTasksResponse struct {
	Tasks   []models.Task       `json:"tasks"`
	Filters []filterbar.Payload `json:"filters"`
	Summary string              `json:"summary"`
}

// ListTasks reads a substep's tasks from the source
// GET /api/tasks?stepId=&substepId=
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	query := &models.TaskQuery{
		StepID:    r.URL.Query().Get("stepId"),
		SubstepID: r.URL.Query().Get("substepId"),
	}

	tasks, err := h.treeService.SearchTasks(r.Context(), query)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, tasks)
}

// SearchTasks applies filter-bar values and reads the matching tasks
// POST /api/tasks/search
func (h *TaskHandler) SearchTasks(w http.ResponseWriter, r *http.Request) {
	var req SearchTasksRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := validation.ValidateStruct(&req,
		validation.Field(&req.Filters, validation.Length(0, config.MaxFilterPayloads)),
	); err != nil {
		handleError(w, h.logger, fmt.Errorf("%w: %v", domain.ErrValidation, err))
		return
	}

	bar := h.filters.NewBar()
	if err := bar.Apply(req.Filters); err != nil {
		handleError(w, h.logger, fmt.Errorf("%w: %v", domain.ErrValidation, err))
		return
	}

	tasks, err := h.treeService.SearchTasks(r.Context(), &models.TaskQuery{
		StepID:     req.StepID,
		SubstepID:  req.SubstepID,
		Predicates: bar.Predicates(),
	})
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, SearchTasksResponse{
		Tasks:   tasks,
		Filters: bar.Fetch(),
		Summary: bar.SummaryText(),
	})
}

// ListFilterFields returns the filter field definitions
// GET /api/filters
func (h *TaskHandler) ListFilterFields(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, h.filters.Groups())
}
