package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// OfferCleaner deletes job offers older than the retention window.
type OfferCleaner struct {
	db        *sql.DB
	retention time.Duration
	log       *zap.Logger
	now       func() time.Time
}

// NewOfferCleaner creates a cleaner for db.
func NewOfferCleaner(db *sql.DB, retention time.Duration, log *zap.Logger) *OfferCleaner {
	return &OfferCleaner{db: db, retention: retention, log: log, now: time.Now}
}

// Run performs one cleaning pass and returns the number of removed offers.
func (c *OfferCleaner) Run(ctx context.Context) (int64, error) {
	cutoff := c.now().Add(-c.retention)
	res, err := c.db.ExecContext(ctx, `
        DELETE FROM job_offers
         WHERE posted_date < $1
    `, cutoff)
	if err != nil {
		c.log.Error("failed to clean stale job offers", zap.Error(err))
		return 0, fmt.Errorf("clean offers: %w", err)
	}
	rows, _ := res.RowsAffected()
	if rows > 0 {
		c.log.Info("cleaned stale job offers", zap.Int64("removed", rows))
	}
	return rows, nil
}

// Start schedules Run on the cron spec (for example "@every 1h") and
// returns the running scheduler. The caller stops it on shutdown.
func (c *OfferCleaner) Start(ctx context.Context, spec string) (*cron.Cron, error) {
	sched := cron.New()
	if _, err := sched.AddFunc(spec, func() {
		_, _ = c.Run(ctx)
	}); err != nil {
		return nil, fmt.Errorf("schedule offer cleaner %q: %w", spec, err)
	}
	sched.Start()
	c.log.Info("offer cleaner started", zap.String("schedule", spec), zap.Duration("retention", c.retention))
	return sched, nil
}
