package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/atinyakov/JobScout/internal/models"
)

// OfferService defines the job offer operations required by the
// OfferHandler.
type OfferService interface {
	List(ctx context.Context, email string) ([]models.JobOffer, error)
	LoadNew(ctx context.Context, email string) error
	GenerateCoverLetter(ctx context.Context, req models.CoverLetterRequest) (string, error)
}

// OfferHandler handles job offer and cover letter routes.
type OfferHandler struct {
	OfferService OfferService
}

// List handles GET /api/users/{email}/job-offers.
func (h *OfferHandler) List(w http.ResponseWriter, r *http.Request) {
	offers, err := h.OfferService.List(r.Context(), chi.URLParam(r, "email"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, offers)
}

// LoadNew handles POST /api/job-offers/load-new. It answers 202 once the
// command is queued; offers show up on a later List.
func (h *OfferHandler) LoadNew(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserEmail string `json:"user_email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	if err := h.OfferService.LoadNew(r.Context(), req.UserEmail); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, statusResponse{Status: "queued"})
}

// GenerateCoverLetter handles POST /api/cover-letter/generate.
func (h *OfferHandler) GenerateCoverLetter(w http.ResponseWriter, r *http.Request) {
	var req models.CoverLetterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	letter, err := h.OfferService.GenerateCoverLetter(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, models.CoverLetterResponse{CoverLetter: letter})
}
