// Package db opens the backend's PostgreSQL and Redis connections and runs
// the periodic offer cleaner.
package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
    email TEXT PRIMARY KEY,
    full_name TEXT,
    pwd_hash TEXT NOT NULL DEFAULT '',
    filters JSONB NOT NULL DEFAULT '{}'::jsonb,
    resume TEXT
);

CREATE TABLE IF NOT EXISTS job_sources (
    id TEXT PRIMARY KEY,
    user_email TEXT REFERENCES users(email) ON DELETE CASCADE,
    name TEXT NOT NULL,
    type TEXT NOT NULL,
    url TEXT NOT NULL,
    enabled BOOLEAN NOT NULL DEFAULT TRUE,
    last_sync TIMESTAMPTZ,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS job_offers (
    id TEXT PRIMARY KEY,
    user_email TEXT REFERENCES users(email) ON DELETE CASCADE,
    title TEXT NOT NULL,
    company TEXT NOT NULL DEFAULT '',
    location TEXT NOT NULL DEFAULT '',
    type TEXT NOT NULL DEFAULT '',
    salary TEXT,
    description TEXT NOT NULL DEFAULT '',
    requirements TEXT[] NOT NULL DEFAULT '{}',
    stack TEXT[] NOT NULL DEFAULT '{}',
    experience TEXT NOT NULL DEFAULT '',
    posted_date TIMESTAMPTZ NOT NULL DEFAULT now(),
    source TEXT NOT NULL DEFAULT '',
    url TEXT NOT NULL DEFAULT '',
    is_match BOOLEAN NOT NULL DEFAULT FALSE,
    match_score DOUBLE PRECISION NOT NULL DEFAULT 0,
    ai_summary TEXT,
    cover_letter TEXT
);

CREATE INDEX IF NOT EXISTS job_offers_user_idx ON job_offers (user_email);
CREATE INDEX IF NOT EXISTS job_sources_user_idx ON job_sources (user_email);
`

// InitPostgres connects to dsn and creates the schema.
func InitPostgres(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return db, nil
}

// NewRedisClient parses redisURL and verifies connectivity.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}
