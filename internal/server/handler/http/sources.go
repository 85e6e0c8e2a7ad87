package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/atinyakov/JobScout/internal/models"
)

// SourceService defines the job source operations required by the
// SourceHandler.
type SourceService interface {
	List(ctx context.Context, email string) ([]models.JobSource, error)
	Create(ctx context.Context, draft models.SourceDraft) (*models.JobSource, error)
	Delete(ctx context.Context, id string) error
}

// SourceHandler handles job source routes.
type SourceHandler struct {
	SourceService SourceService
}

// List handles GET /api/users/{email}/job-sources.
func (h *SourceHandler) List(w http.ResponseWriter, r *http.Request) {
	sources, err := h.SourceService.List(r.Context(), chi.URLParam(r, "email"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sources)
}

// Create handles POST /api/job-sources and answers 201 with the stored
// source, including its server-assigned id.
func (h *SourceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var draft models.SourceDraft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	src, err := h.SourceService.Create(r.Context(), draft)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, src)
}

// Delete handles DELETE /api/job-sources/{id}.
func (h *SourceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.SourceService.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
