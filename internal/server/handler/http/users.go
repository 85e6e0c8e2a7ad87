// Package http provides the HTTP handlers of the JobScout backend.
package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/atinyakov/JobScout/internal/models"
)

// maxUploadSize bounds the resume upload held in memory.
const maxUploadSize = 10 << 20

// UserService defines the account, resume and filter operations required
// by the UserHandler.
type UserService interface {
	Register(ctx context.Context, email, fullName, password string) (*models.UserProfile, error)
	Login(ctx context.Context, email, password string) (*models.UserProfile, error)
	Profile(ctx context.Context, email string) (*models.UserProfile, error)
	Filters(ctx context.Context, email string) (models.FilterCriteria, error)
	SaveResume(ctx context.Context, email string, resume *string) error
	SaveFilters(ctx context.Context, email string, filters models.FilterCriteria) error
	AnalyzeResume(ctx context.Context, email, filename string, data []byte) (*models.ResumeAnalysis, error)
}

// UserHandler handles the /api/register, /api/login and /api/users routes.
type UserHandler struct {
	UserService UserService
}

// RegisterRequest is the JSON payload of POST /api/register.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

// LoginRequest is the JSON payload of POST /api/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates an account and answers 201 with the new profile.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" || req.Password == "" {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	p, err := h.UserService.Register(r.Context(), req.Email, req.FullName, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

// Login answers the profile for valid credentials and 401 otherwise.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	p, err := h.UserService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// Profile handles GET /api/users/{email}.
func (h *UserHandler) Profile(w http.ResponseWriter, r *http.Request) {
	p, err := h.UserService.Profile(r.Context(), chi.URLParam(r, "email"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// SaveResume handles PUT /api/users/{email}/resume. A null resume clears
// the stored one.
func (h *UserHandler) SaveResume(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Resume *string `json:"resume"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	if err := h.UserService.SaveResume(r.Context(), chi.URLParam(r, "email"), req.Resume); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, okResponse)
}

// UploadAnalyze handles POST /api/users/{email}/resume/upload-analyze. The
// resume arrives as the multipart field "file".
func (h *UserHandler) UploadAnalyze(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	file, hdr, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "file is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, "failed to read file", http.StatusBadRequest)
		return
	}

	out, err := h.UserService.AnalyzeResume(r.Context(), chi.URLParam(r, "email"), hdr.Filename, data)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// Filters handles GET /api/users/{email}/filters.
func (h *UserHandler) Filters(w http.ResponseWriter, r *http.Request) {
	f, err := h.UserService.Filters(r.Context(), chi.URLParam(r, "email"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]models.FilterCriteria{"filters": f})
}

// SaveFilters handles PUT /api/users/{email}/filters.
func (h *UserHandler) SaveFilters(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Filters *models.FilterCriteria `json:"filters"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Filters == nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	if err := h.UserService.SaveFilters(r.Context(), chi.URLParam(r, "email"), *req.Filters); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, okResponse)
}
