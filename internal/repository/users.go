// Package repository provides the PostgreSQL persistence of the JobScout
// backend: user accounts with their filters and resume, job sources and
// job offers.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/atinyakov/JobScout/internal/models"
)

// PostgresUserRepository stores user accounts.
type PostgresUserRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresUserRepository creates a repository on db.
func NewPostgresUserRepository(db *sql.DB) *PostgresUserRepository {
	return &PostgresUserRepository{DB: db}
}

// UserExists checks whether a user with the specified email exists.
func (r *PostgresUserRepository) UserExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.DB.QueryRowContext(
		ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`,
		email,
	).Scan(&exists)
	return exists, err
}

// RegisterUser inserts a new user with empty filters and no resume. An
// existing email is left untouched.
func (r *PostgresUserRepository) RegisterUser(ctx context.Context, email, fullName, pwdHash string) error {
	filters, err := json.Marshal(models.EmptyFilters())
	if err != nil {
		return fmt.Errorf("encode filters: %w", err)
	}
	_, err = r.DB.ExecContext(
		ctx,
		`INSERT INTO users (email, full_name, pwd_hash, filters) VALUES ($1, $2, $3, $4) ON CONFLICT DO NOTHING`,
		email, fullName, pwdHash, string(filters),
	)
	return err
}

// PasswordHash returns the stored password hash of email.
func (r *PostgresUserRepository) PasswordHash(ctx context.Context, email string) (string, error) {
	var hash string
	err := r.DB.QueryRowContext(ctx, `SELECT pwd_hash FROM users WHERE email = $1`, email).Scan(&hash)
	if errors.Is(err, sql.ErrNoRows) {
		return "", models.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("PasswordHash: %w", err)
	}
	return hash, nil
}

// GetUser loads the profile of email.
func (r *PostgresUserRepository) GetUser(ctx context.Context, email string) (*models.UserProfile, error) {
	var (
		p        models.UserProfile
		fullName sql.NullString
		resume   sql.NullString
		filters  []byte
	)
	err := r.DB.QueryRowContext(ctx, `
		SELECT email, full_name, filters, resume FROM users WHERE email = $1
	`, email).Scan(&p.Email, &fullName, &filters, &resume)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("GetUser: %w", err)
	}

	p.ID = p.Email
	p.FullName = nullString(fullName)
	p.Resume = nullString(resume)
	p.Filters = models.EmptyFilters()
	if len(filters) > 0 {
		if err := json.Unmarshal(filters, &p.Filters); err != nil {
			return nil, fmt.Errorf("decode filters: %w", err)
		}
	}
	return &p, nil
}

// UpdateResume replaces the stored resume. A nil resume clears it.
func (r *PostgresUserRepository) UpdateResume(ctx context.Context, email string, resume *string) error {
	res, err := r.DB.ExecContext(ctx, `UPDATE users SET resume = $2 WHERE email = $1`, email, resume)
	if err != nil {
		return fmt.Errorf("UpdateResume: %w", err)
	}
	return expectRow(res)
}

// UpdateFilters replaces the stored filter criteria.
func (r *PostgresUserRepository) UpdateFilters(ctx context.Context, email string, filters models.FilterCriteria) error {
	data, err := json.Marshal(filters)
	if err != nil {
		return fmt.Errorf("encode filters: %w", err)
	}
	res, err := r.DB.ExecContext(ctx, `UPDATE users SET filters = $2 WHERE email = $1`, email, string(data))
	if err != nil {
		return fmt.Errorf("UpdateFilters: %w", err)
	}
	return expectRow(res)
}

func nullString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}

// expectRow maps an update that matched nothing to models.ErrNotFound.
func expectRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return models.ErrNotFound
	}
	return nil
}
