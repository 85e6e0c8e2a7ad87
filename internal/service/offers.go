package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/atinyakov/JobScout/internal/models"
)

// LoadNewOffersChannel is the pub/sub channel the ingestion workers listen
// on for load-new commands.
const LoadNewOffersChannel = "CMD_LOAD_NEW_OFFERS"

// LoadNewCommand is published on LoadNewOffersChannel.
type LoadNewCommand struct {
	Type        string    `json:"type"`
	UserEmail   string    `json:"userEmail"`
	RequestedAt time.Time `json:"requestedAt"`
}

// OfferRepository defines the persistence operations needed by the
// OfferService.
type OfferRepository interface {
	ListOffers(ctx context.Context, email string) ([]models.JobOffer, error)
	GetOffer(ctx context.Context, id string) (*models.JobOffer, error)
	SetCoverLetter(ctx context.Context, id, letter string) error
}

// SourceToucher stamps the sync time of a user's sources.
type SourceToucher interface {
	TouchSources(ctx context.Context, email string) error
}

// Publisher delivers a command to the ingestion workers.
type Publisher interface {
	Publish(ctx context.Context, channel string, payload any) error
}

// CoverLetterWriter generates a cover letter.
type CoverLetterWriter interface {
	CoverLetter(ctx context.Context, req models.CoverLetterRequest) (string, error)
}

// OfferService reads offers, triggers ingestion and generates cover
// letters.
type OfferService struct {
	repo    OfferRepository
	sources SourceToucher
	pub     Publisher
	writer  CoverLetterWriter
	log     *zap.Logger
	now     func() time.Time
}

// NewOfferService constructs an OfferService.
func NewOfferService(repo OfferRepository, sources SourceToucher, pub Publisher, writer CoverLetterWriter, log *zap.Logger) *OfferService {
	if log == nil {
		log = zap.NewNop()
	}
	return &OfferService{repo: repo, sources: sources, pub: pub, writer: writer, log: log, now: time.Now}
}

// List returns the offers of email.
func (s *OfferService) List(ctx context.Context, email string) ([]models.JobOffer, error) {
	return s.repo.ListOffers(ctx, email)
}

// LoadNew asks the ingestion workers to fetch new offers for email. The
// call returns once the command is published; ingestion runs elsewhere.
func (s *OfferService) LoadNew(ctx context.Context, email string) error {
	if strings.TrimSpace(email) == "" {
		return fmt.Errorf("%w: user_email is required", ErrInvalidInput)
	}
	cmd := LoadNewCommand{Type: LoadNewOffersChannel, UserEmail: email, RequestedAt: s.now().UTC()}
	if err := s.pub.Publish(ctx, LoadNewOffersChannel, cmd); err != nil {
		return fmt.Errorf("publish load-new: %w", err)
	}
	if err := s.sources.TouchSources(ctx, email); err != nil {
		s.log.Warn("failed to stamp source sync time", zap.String("user", email), zap.Error(err))
	}
	return nil
}

// GenerateCoverLetter produces a letter for the offer and stores it on the
// offer when the offer is known. An empty job description is filled from
// the stored offer.
func (s *OfferService) GenerateCoverLetter(ctx context.Context, req models.CoverLetterRequest) (string, error) {
	if req.ID == "" {
		return "", fmt.Errorf("%w: id is required", ErrInvalidInput)
	}

	known := true
	if offer, err := s.repo.GetOffer(ctx, req.ID); err == nil {
		if req.JobDescription == "" {
			req.JobDescription = offer.Description
		}
	} else if errors.Is(err, models.ErrNotFound) {
		known = false
	} else {
		return "", err
	}

	letter, err := s.writer.CoverLetter(ctx, req)
	if err != nil {
		return "", err
	}
	if known {
		if err := s.repo.SetCoverLetter(ctx, req.ID, letter); err != nil {
			s.log.Warn("failed to store cover letter", zap.String("offer", req.ID), zap.Error(err))
		}
	}
	return letter, nil
}
