package handler

import (
	"log/slog"
	"net/http"

	models "steptree/internal/domain/models/querytree"
	svc "steptree/internal/domain/services/querytree"
	"steptree/internal/httputil"
)

// SelectionHandler handles the navigation selection
type SelectionHandler struct {
	treeService svc.TreeService
	logger      *slog.Logger
}

// NewSelectionHandler creates a new selection handler
func NewSelectionHandler(treeService svc.TreeService, logger *slog.Logger) *SelectionHandler {
	return &SelectionHandler{
		treeService: treeService,
		logger:      logger,
	}
}

// GetSelection returns the current selection
// GET /api/selection
func (h *SelectionHandler) GetSelection(w http.ResponseWriter, r *http.Request) {
	sel, err := h.treeService.Selection(r.Context())
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, sel)
}

// UpdateSelection selects a step or a substep
// PUT /api/selection
func (h *SelectionHandler) UpdateSelection(w http.ResponseWriter, r *http.Request) {
	var target models.SelectionTarget
	if err := httputil.ParseJSON(w, r, &target); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	sel, err := h.treeService.Select(r.Context(), &target)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	h.logger.Debug("selection changed",
		"user_id", httputil.GetUserID(r),
		"state", sel.State,
		"step_id", sel.StepID,
		"substep_id", sel.SubstepID,
	)

	httputil.RespondJSON(w, http.StatusOK, sel)
}

// GetDefaultSelection returns the first selectable step/substep pair
// GET /api/selection/default
func (h *SelectionHandler) GetDefaultSelection(w http.ResponseWriter, r *http.Request) {
	target, err := h.treeService.DefaultSelection(r.Context())
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, target)
}
