package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/atinyakov/JobScout/internal/models"
)

func TestListSources(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPostgresSourceRepository(db)

	synced := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "name", "type", "url", "enabled", "last_sync"}).
		AddRow("s1", "HH", "API", "https://hh.ru", true, synced).
		AddRow("s2", "Feed", "RSS", "https://example.com/rss", false, nil)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, name, type, url, enabled, last_sync FROM job_sources`)).
		WithArgs("a@x.com").
		WillReturnRows(rows)

	sources, err := repo.ListSources(context.Background(), "a@x.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sources) != 2 {
		t.Fatalf("expected 2 sources, got %d", len(sources))
	}
	if sources[0].LastSync == nil || !sources[0].LastSync.Equal(synced) {
		t.Errorf("unexpected lastSync: %v", sources[0].LastSync)
	}
	if sources[1].LastSync != nil || sources[1].Type != models.SourceRSS {
		t.Errorf("unexpected second source: %+v", sources[1])
	}
}

func TestListSources_Empty(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPostgresSourceRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM job_sources`)).
		WithArgs("a@x.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "type", "url", "enabled", "last_sync"}))

	sources, err := repo.ListSources(context.Background(), "a@x.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sources == nil || len(sources) != 0 {
		t.Errorf("expected empty non-nil list, got %#v", sources)
	}
}

func TestCreateSource(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPostgresSourceRepository(db)

	src := models.JobSource{ID: "s1", Name: "HH", Type: models.SourceAPI, URL: "https://hh.ru", Enabled: true}
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO job_sources`)).
		WithArgs("s1", "a@x.com", "HH", "API", "https://hh.ru", true, nil).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.CreateSource(context.Background(), "a@x.com", src); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestDeleteSource(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPostgresSourceRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM job_sources WHERE id = $1`)).
		WithArgs("s1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM job_sources WHERE id = $1`)).
		WithArgs("s2").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.DeleteSource(context.Background(), "s1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := repo.DeleteSource(context.Background(), "s2"); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestTouchSources(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPostgresSourceRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE job_sources SET last_sync = now()`)).
		WithArgs("a@x.com").
		WillReturnError(errors.New("db down"))

	if err := repo.TouchSources(context.Background(), "a@x.com"); err == nil {
		t.Error("expected error")
	}
}
