package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bryanwahyu/nutriguard/internal/domain/analysis"
	"github.com/bryanwahyu/nutriguard/internal/middleware"
)

// POST /api/history/save
func (r *Router) handleSaveHistory(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		ChildID   string           `json:"childId"`
		ChildName string           `json:"childName"`
		Analysis  *analysis.Result `json:"analysis"`
	}
	if err := decodeJSON(w, req, &body); err != nil {
		return err
	}
	if err := middleware.ValidateID("childId", body.ChildID); err != nil {
		return badRequest("%v", err)
	}
	if body.Analysis == nil {
		return badRequest("analysis is required")
	}

	rec := r.history.Save(req.Context(), body.ChildID, middleware.SanitizeString(body.ChildName), *body.Analysis)
	if rec == nil {
		return writeJSON(w, http.StatusInternalServerError, map[string]any{
			"success": false,
			"error":   "Failed to save analysis",
		})
	}
	return writeJSON(w, http.StatusCreated, map[string]any{"success": true, "data": rec})
}

// GET /api/history/{childId}?limit=
func (r *Router) handleListHistory(w http.ResponseWriter, req *http.Request) error {
	childID := chi.URLParam(req, "childId")
	if err := middleware.ValidateID("childId", childID); err != nil {
		return badRequest("%v", err)
	}
	recs := r.history.List(req.Context(), childID, middleware.ParseLimit(req.URL.Query().Get("limit")))
	return writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": recs})
}
