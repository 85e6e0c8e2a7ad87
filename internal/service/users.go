// Package service provides the business logic of the JobScout backend,
// delegating persistence to repository interfaces and side effects to
// publishers and webhooks.
package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/atinyakov/JobScout/internal/models"
)

var (
	// ErrUserExists is returned when registering a taken email.
	ErrUserExists = errors.New("email already registered")
	// ErrInvalidCredentials is returned for a wrong email or password.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrUnsupportedFile is returned for resume uploads that are not PDF.
	ErrUnsupportedFile = errors.New("only PDF files are accepted")
	// ErrInvalidInput is returned for requests missing required fields.
	ErrInvalidInput = errors.New("invalid input")
)

// UserRepository defines the persistence operations required by the
// user service.
type UserRepository interface {
	// UserExists returns true if a user with the given email exists.
	UserExists(ctx context.Context, email string) (bool, error)
	// RegisterUser creates a new user record.
	RegisterUser(ctx context.Context, email, fullName, pwdHash string) error
	// PasswordHash returns the stored hash or models.ErrNotFound.
	PasswordHash(ctx context.Context, email string) (string, error)
	// GetUser loads a profile or returns models.ErrNotFound.
	GetUser(ctx context.Context, email string) (*models.UserProfile, error)
	UpdateResume(ctx context.Context, email string, resume *string) error
	UpdateFilters(ctx context.Context, email string, filters models.FilterCriteria) error
}

// ResumeAnalyzer hands an uploaded resume to the external processor, which
// writes the extracted filters and resume text back to the user record.
type ResumeAnalyzer interface {
	AnalyzeResume(ctx context.Context, email, filename string, data []byte) error
}

// UserService implements account, resume and filter operations.
type UserService struct {
	repo     UserRepository
	analyzer ResumeAnalyzer
}

// NewUserService constructs a UserService.
func NewUserService(repo UserRepository, analyzer ResumeAnalyzer) *UserService {
	return &UserService{repo: repo, analyzer: analyzer}
}

// Register creates an account and returns its fresh profile.
func (s *UserService) Register(ctx context.Context, email, fullName, password string) (*models.UserProfile, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, ErrInvalidInput
	}

	exists, err := s.repo.UserExists(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrUserExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	if err := s.repo.RegisterUser(ctx, email, fullName, string(hash)); err != nil {
		return nil, err
	}

	name := fullName
	return &models.UserProfile{
		ID:       email,
		Email:    email,
		FullName: &name,
		Filters:  models.EmptyFilters(),
	}, nil
}

// Login checks the password and returns the profile.
func (s *UserService) Login(ctx context.Context, email, password string) (*models.UserProfile, error) {
	hash, err := s.repo.PasswordHash(ctx, email)
	if errors.Is(err, models.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return s.repo.GetUser(ctx, email)
}

// Profile returns the profile of email.
func (s *UserService) Profile(ctx context.Context, email string) (*models.UserProfile, error) {
	return s.repo.GetUser(ctx, email)
}

// Filters returns the persisted filters of email.
func (s *UserService) Filters(ctx context.Context, email string) (models.FilterCriteria, error) {
	p, err := s.repo.GetUser(ctx, email)
	if err != nil {
		return models.FilterCriteria{}, err
	}
	return p.Filters, nil
}

// SaveResume replaces the resume. A nil resume clears it.
func (s *UserService) SaveResume(ctx context.Context, email string, resume *string) error {
	return s.repo.UpdateResume(ctx, email, resume)
}

// SaveFilters replaces the filter criteria.
func (s *UserService) SaveFilters(ctx context.Context, email string, filters models.FilterCriteria) error {
	return s.repo.UpdateFilters(ctx, email, filters.Normalize())
}

// AnalyzeResume forwards a PDF resume to the analyzer and returns the
// filters and resume stored afterwards.
func (s *UserService) AnalyzeResume(ctx context.Context, email, filename string, data []byte) (*models.ResumeAnalysis, error) {
	if !strings.EqualFold(filepath.Ext(filename), ".pdf") {
		return nil, ErrUnsupportedFile
	}
	if _, err := s.repo.GetUser(ctx, email); err != nil {
		return nil, err
	}
	if err := s.analyzer.AnalyzeResume(ctx, email, filename, data); err != nil {
		return nil, err
	}

	p, err := s.repo.GetUser(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("reload user after analysis: %w", err)
	}
	return &models.ResumeAnalysis{Filters: p.Filters.Fragment(), Resume: p.Resume}, nil
}
