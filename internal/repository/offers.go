package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/atinyakov/JobScout/internal/models"
)

const offerColumns = `id, title, company, location, type, salary, description, requirements, stack,
		experience, posted_date, source, url, is_match, match_score, ai_summary, cover_letter`

// PostgresOfferRepository reads job offers and stores generated cover
// letters. Offers themselves are written by the external ingestion
// pipeline.
type PostgresOfferRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresOfferRepository creates a repository on db.
func NewPostgresOfferRepository(db *sql.DB) *PostgresOfferRepository {
	return &PostgresOfferRepository{DB: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOffer(row rowScanner) (models.JobOffer, error) {
	var (
		o                            models.JobOffer
		salary, summary, coverLetter sql.NullString
	)
	err := row.Scan(&o.ID, &o.Title, &o.Company, &o.Location, &o.Type, &salary, &o.Description,
		pq.Array(&o.Requirements), pq.Array(&o.Stack), &o.Experience, &o.PostedDate, &o.Source,
		&o.URL, &o.IsMatch, &o.MatchScore, &summary, &coverLetter)
	if err != nil {
		return o, err
	}
	o.Salary = nullString(salary)
	o.AISummary = nullString(summary)
	o.CoverLetter = nullString(coverLetter)
	if o.Requirements == nil {
		o.Requirements = []string{}
	}
	if o.Stack == nil {
		o.Stack = []string{}
	}
	return o, nil
}

// ListOffers returns the offers of email, newest first.
func (r *PostgresOfferRepository) ListOffers(ctx context.Context, email string) ([]models.JobOffer, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+offerColumns+` FROM job_offers WHERE user_email = $1 ORDER BY posted_date DESC`, email)
	if err != nil {
		return nil, fmt.Errorf("ListOffers: %w", err)
	}
	defer rows.Close()

	offers := []models.JobOffer{}
	for rows.Next() {
		o, err := scanOffer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		offers = append(offers, o)
	}
	return offers, rows.Err()
}

// GetOffer loads a single offer.
func (r *PostgresOfferRepository) GetOffer(ctx context.Context, id string) (*models.JobOffer, error) {
	o, err := scanOffer(r.DB.QueryRowContext(ctx,
		`SELECT `+offerColumns+` FROM job_offers WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("GetOffer: %w", err)
	}
	return &o, nil
}

// SetCoverLetter stores a generated cover letter on the offer.
func (r *PostgresOfferRepository) SetCoverLetter(ctx context.Context, id, letter string) error {
	res, err := r.DB.ExecContext(ctx, `UPDATE job_offers SET cover_letter = $2 WHERE id = $1`, id, letter)
	if err != nil {
		return fmt.Errorf("SetCoverLetter: %w", err)
	}
	return expectRow(res)
}
