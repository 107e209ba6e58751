package handler

import (
	"log/slog"
	"net/http"

	svc "steptree/internal/domain/services/querytree"
	"steptree/internal/httputil"
)

// TreeHandler handles HTTP requests for tree operations
type TreeHandler struct {
	treeService svc.TreeService
	logger      *slog.Logger
}

// NewTreeHandler creates a new tree handler
func NewTreeHandler(treeService svc.TreeService, logger *slog.Logger) *TreeHandler {
	return &TreeHandler{
		treeService: treeService,
		logger:      logger,
	}
}

// GetTree returns the current tree snapshot
// GET /api/tree
func (h *TreeHandler) GetTree(w http.ResponseWriter, r *http.Request) {
	snap, err := h.treeService.Tree(r.Context())
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, snap)
}

// RefreshTree rebuilds the tree from the step source
// POST /api/tree/refresh
func (h *TreeHandler) RefreshTree(w http.ResponseWriter, r *http.Request) {
	snap, err := h.treeService.Refresh(r.Context())
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, snap)
}

// GetSubstep resolves a step/substep pair to its path and tasks
// GET /api/steps/{stepId}/substeps/{substepId}
func (h *TreeHandler) GetSubstep(w http.ResponseWriter, r *http.Request) {
	stepID := r.PathValue("stepId")
	substepID := r.PathValue("substepId")
	if stepID == "" || substepID == "" {
		httputil.RespondError(w, http.StatusBadRequest, "stepId and substepId are required")
		return
	}

	resolved, err := h.treeService.Resolve(r.Context(), stepID, substepID)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, resolved)
}

// HealthCheck reports liveness
// GET /health
func (h *TreeHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
