package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/atinyakov/JobScout/internal/models"
)

// SourceRepository defines the persistence operations needed by the
// SourceService.
type SourceRepository interface {
	ListSources(ctx context.Context, email string) ([]models.JobSource, error)
	CreateSource(ctx context.Context, email string, src models.JobSource) error
	// DeleteSource returns models.ErrNotFound for unknown ids.
	DeleteSource(ctx context.Context, id string) error
	// TouchSources stamps last_sync on the user's enabled sources.
	TouchSources(ctx context.Context, email string) error
}

// SourceService manages job sources.
type SourceService struct {
	repo SourceRepository
}

// NewSourceService constructs a SourceService.
func NewSourceService(repo SourceRepository) *SourceService {
	return &SourceService{repo: repo}
}

// List returns the sources of email.
func (s *SourceService) List(ctx context.Context, email string) ([]models.JobSource, error) {
	return s.repo.ListSources(ctx, email)
}

// Create validates draft, assigns the canonical id and stores it.
func (s *SourceService) Create(ctx context.Context, draft models.SourceDraft) (*models.JobSource, error) {
	name := strings.TrimSpace(draft.Name)
	url := strings.TrimSpace(draft.URL)
	if name == "" || url == "" || draft.UserID == "" {
		return nil, fmt.Errorf("%w: name, url and user_id are required", ErrInvalidInput)
	}
	typ := draft.Type
	if typ == "" {
		typ = models.SourceAPI
	}
	if !typ.Valid() {
		return nil, fmt.Errorf("%w: unknown source type %q", ErrInvalidInput, typ)
	}

	src := models.JobSource{
		ID:       uuid.NewString(),
		Name:     name,
		Type:     typ,
		URL:      url,
		Enabled:  draft.Enabled,
		LastSync: draft.LastSync,
	}
	if err := s.repo.CreateSource(ctx, draft.UserID, src); err != nil {
		return nil, err
	}
	return &src, nil
}

// Delete removes a source.
func (s *SourceService) Delete(ctx context.Context, id string) error {
	return s.repo.DeleteSource(ctx, id)
}
