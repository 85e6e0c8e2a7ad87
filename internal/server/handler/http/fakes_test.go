package http

import (
	"context"

	"github.com/atinyakov/JobScout/internal/models"
	"github.com/atinyakov/JobScout/internal/service"
)

// fakeUserService implements UserService for testing.
type fakeUserService struct {
	profiles map[string]*models.UserProfile
	password string
	err      error

	savedResume  *string
	savedFilters models.FilterCriteria
	analyzed     string
	analysis     *models.ResumeAnalysis
}

func (f *fakeUserService) Register(_ context.Context, email, fullName, _ string) (*models.UserProfile, error) {
	if f.err != nil {
		return nil, f.err
	}
	if _, ok := f.profiles[email]; ok {
		return nil, service.ErrUserExists
	}
	return &models.UserProfile{ID: email, Email: email, FullName: &fullName, Filters: models.EmptyFilters()}, nil
}

func (f *fakeUserService) Login(_ context.Context, email, password string) (*models.UserProfile, error) {
	p, ok := f.profiles[email]
	if !ok || password != f.password {
		return nil, service.ErrInvalidCredentials
	}
	return p, nil
}

func (f *fakeUserService) Profile(_ context.Context, email string) (*models.UserProfile, error) {
	if f.err != nil {
		return nil, f.err
	}
	p, ok := f.profiles[email]
	if !ok {
		return nil, models.ErrNotFound
	}
	return p, nil
}

func (f *fakeUserService) Filters(ctx context.Context, email string) (models.FilterCriteria, error) {
	p, err := f.Profile(ctx, email)
	if err != nil {
		return models.FilterCriteria{}, err
	}
	return p.Filters, nil
}

func (f *fakeUserService) SaveResume(_ context.Context, email string, resume *string) error {
	if _, ok := f.profiles[email]; !ok {
		return models.ErrNotFound
	}
	f.savedResume = resume
	return nil
}

func (f *fakeUserService) SaveFilters(_ context.Context, email string, filters models.FilterCriteria) error {
	if _, ok := f.profiles[email]; !ok {
		return models.ErrNotFound
	}
	f.savedFilters = filters
	return nil
}

func (f *fakeUserService) AnalyzeResume(_ context.Context, email, filename string, data []byte) (*models.ResumeAnalysis, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.analyzed = email + "/" + filename + "/" + string(data)
	return f.analysis, nil
}

// fakeSourceService implements SourceService for testing.
type fakeSourceService struct {
	sources []models.JobSource
	deleted []string
	err     error
}

func (f *fakeSourceService) List(context.Context, string) ([]models.JobSource, error) {
	return f.sources, f.err
}

func (f *fakeSourceService) Create(_ context.Context, d models.SourceDraft) (*models.JobSource, error) {
	if d.Name == "" {
		return nil, service.ErrInvalidInput
	}
	return &models.JobSource{ID: "src-1", Name: d.Name, Type: d.Type, URL: d.URL, Enabled: d.Enabled}, nil
}

func (f *fakeSourceService) Delete(_ context.Context, id string) error {
	if f.err != nil {
		return f.err
	}
	f.deleted = append(f.deleted, id)
	return nil
}

// fakeOfferService implements OfferService for testing.
type fakeOfferService struct {
	offers  []models.JobOffer
	loaded  []string
	letter  string
	lastReq models.CoverLetterRequest
	err     error
}

func (f *fakeOfferService) List(context.Context, string) ([]models.JobOffer, error) {
	return f.offers, f.err
}

func (f *fakeOfferService) LoadNew(_ context.Context, email string) error {
	if f.err != nil {
		return f.err
	}
	f.loaded = append(f.loaded, email)
	return nil
}

func (f *fakeOfferService) GenerateCoverLetter(_ context.Context, req models.CoverLetterRequest) (string, error) {
	f.lastReq = req
	return f.letter, f.err
}
