package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/atinyakov/JobScout/internal/models"
)

// PostgresSourceRepository stores job sources.
type PostgresSourceRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresSourceRepository creates a repository on db.
func NewPostgresSourceRepository(db *sql.DB) *PostgresSourceRepository {
	return &PostgresSourceRepository{DB: db}
}

// ListSources returns the sources of email in creation order.
func (r *PostgresSourceRepository) ListSources(ctx context.Context, email string) ([]models.JobSource, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, name, type, url, enabled, last_sync FROM job_sources
		WHERE user_email = $1 ORDER BY created_at
	`, email)
	if err != nil {
		return nil, fmt.Errorf("ListSources: %w", err)
	}
	defer rows.Close()

	sources := []models.JobSource{}
	for rows.Next() {
		var (
			src      models.JobSource
			lastSync sql.NullTime
		)
		if err := rows.Scan(&src.ID, &src.Name, &src.Type, &src.URL, &src.Enabled, &lastSync); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		if lastSync.Valid {
			t := lastSync.Time
			src.LastSync = &t
		}
		sources = append(sources, src)
	}
	return sources, rows.Err()
}

// CreateSource inserts src for email.
func (r *PostgresSourceRepository) CreateSource(ctx context.Context, email string, src models.JobSource) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO job_sources (id, user_email, name, type, url, enabled, last_sync)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, src.ID, email, src.Name, string(src.Type), src.URL, src.Enabled, src.LastSync)
	if err != nil {
		return fmt.Errorf("CreateSource: %w", err)
	}
	return nil
}

// DeleteSource removes a source by id.
func (r *PostgresSourceRepository) DeleteSource(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM job_sources WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("DeleteSource: %w", err)
	}
	return expectRow(res)
}

// TouchSources stamps last_sync on all enabled sources of email.
func (r *PostgresSourceRepository) TouchSources(ctx context.Context, email string) error {
	_, err := r.DB.ExecContext(ctx, `
		UPDATE job_sources SET last_sync = now() WHERE user_email = $1 AND enabled = true
	`, email)
	if err != nil {
		return fmt.Errorf("TouchSources: %w", err)
	}
	return nil
}
