// Package filters holds the editable filter criteria next to the last
// persisted copy, and the dirty flag between them.
package filters

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/atinyakov/JobScout/internal/client/session"
	"github.com/atinyakov/JobScout/internal/models"
)

// Saver persists filter criteria for a user.
type Saver interface {
	SaveFilters(ctx context.Context, handle string, filters models.FilterCriteria) error
}

// DraftModel tracks the in-progress filter edits. Saving is user-triggered
// only; there is no autosave and no retry.
type DraftModel struct {
	mu        sync.Mutex
	saver     Saver
	log       *zap.Logger
	persisted models.FilterCriteria
	draft     models.FilterCriteria
	dirty     bool
	// rev counts draft mutations so a save can tell whether the draft it
	// sent is still the current one when the response arrives.
	rev uint64
}

// NewDraftModel creates an empty model.
func NewDraftModel(saver Saver, log *zap.Logger) *DraftModel {
	if log == nil {
		log = zap.NewNop()
	}
	return &DraftModel{
		saver:     saver,
		log:       log,
		persisted: models.EmptyFilters(),
		draft:     models.EmptyFilters(),
	}
}

// Load seeds both copies from the persisted criteria and clears dirty.
func (m *DraftModel) Load(persisted models.FilterCriteria) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.persisted = persisted.Normalize().Clone()
	m.draft = m.persisted.Clone()
	m.dirty = false
	m.rev++
}

// Update replaces the whole draft and marks it dirty, even when the new
// draft equals the old one.
func (m *DraftModel) Update(newDraft models.FilterCriteria) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.draft = newDraft.Normalize().Clone()
	m.dirty = true
	m.rev++
}

// MergePartial shallow-merges fragment into the draft. Fields present in the
// fragment replace the draft field; absent fields stay. Dirty is untouched.
func (m *DraftModel) MergePartial(fragment models.FilterFragment) models.FilterCriteria {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.draft = m.draft.Merge(fragment)
	m.rev++
	return m.draft.Clone()
}

// Save sends the full draft. On success the sent draft becomes the
// persisted baseline and dirty clears, unless the draft was edited again
// while the request was in flight. On failure the draft and dirty flag are
// kept for a retry.
func (m *DraftModel) Save(ctx context.Context, sess *session.Session) error {
	if !sess.Active() {
		return session.ErrNoSession
	}

	m.mu.Lock()
	sent := m.draft.Clone()
	rev := m.rev
	m.mu.Unlock()

	if err := m.saver.SaveFilters(ctx, sess.UserHandle, sent); err != nil {
		m.log.Error("failed to save filters",
			zap.String("session", sess.ID),
			zap.String("user", sess.UserHandle),
			zap.Error(err),
		)
		return fmt.Errorf("save filters: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if !sess.Active() {
		return session.ErrSessionEnded
	}
	m.persisted = sent
	if m.rev == rev {
		m.dirty = false
	}
	return nil
}

// Draft returns a copy of the current draft.
func (m *DraftModel) Draft() models.FilterCriteria {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.draft.Clone()
}

// Persisted returns a copy of the last persisted criteria.
func (m *DraftModel) Persisted() models.FilterCriteria {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.persisted.Clone()
}

// Dirty reports whether the draft was updated since the last save or load.
func (m *DraftModel) Dirty() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dirty
}

// Reset restores the initial empty state.
func (m *DraftModel) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.persisted = models.EmptyFilters()
	m.draft = models.EmptyFilters()
	m.dirty = false
	m.rev++
}
