// Package datasync is the single authority for fetching and optimistically
// mutating the job offers and job sources of the active session.
//
// Every completion re-checks that the session it was issued for is still
// the current, active one before touching state. Fetches are numbered per
// resource so an older response cannot overwrite a newer one.
package datasync

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/atinyakov/JobScout/internal/client/session"
	"github.com/atinyakov/JobScout/internal/models"
)

var (
	// ErrSourceNotFound is returned for unknown source ids.
	ErrSourceNotFound = errors.New("source not found")
	// ErrJobNotFound is returned for unknown job ids.
	ErrJobNotFound = errors.New("job not found")
	// ErrInvalidSource is returned when a source draft lacks a name or URL.
	ErrInvalidSource = errors.New("source name and url are required")
	// ErrSuperseded is returned when a response lost to a newer one.
	ErrSuperseded = errors.New("response superseded by a newer request")
)

// Remote is the part of the gateway the controller needs.
type Remote interface {
	FetchProfile(ctx context.Context, handle string) (*models.UserProfile, error)
	FetchJobs(ctx context.Context, handle string) ([]models.JobOffer, error)
	FetchSources(ctx context.Context, handle string) ([]models.JobSource, error)
	CreateSource(ctx context.Context, draft models.SourceDraft) (*models.JobSource, error)
	DeleteSource(ctx context.Context, id string) error
	TriggerSync(ctx context.Context, handle string) error
}

// ProfileObserver is told when the session's profile has been applied.
type ProfileObserver interface {
	ProfileLoaded(sess *session.Session, profile models.UserProfile)
}

// Controller owns the profile, job and source caches of one session.
type Controller struct {
	remote   Remote
	log      *zap.Logger
	now      func() time.Time
	observer ProfileObserver
	lastWins bool

	mu      sync.Mutex
	sess    *session.Session
	profile *models.UserProfile
	jobs    []models.JobOffer
	sources []models.JobSource
	seq     sequencer
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Controller) { c.log = l }
}

// WithClock replaces time.Now, used for lastSync stamps.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// WithProfileObserver registers the profile observer.
func WithProfileObserver(o ProfileObserver) Option {
	return func(c *Controller) { c.observer = o }
}

// WithLastResolvedWins disables the sequence guard: whichever response
// resolves last determines the state.
func WithLastResolvedWins() Option {
	return func(c *Controller) { c.lastWins = true }
}

// New creates a controller with no session bound.
func New(remote Remote, opts ...Option) *Controller {
	c := &Controller{
		remote:  remote,
		log:     zap.NewNop(),
		now:     time.Now,
		jobs:    []models.JobOffer{},
		sources: []models.JobSource{},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// SessionStarted binds the controller to a fresh session with empty state.
func (c *Controller) SessionStarted(sess *session.Session) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clear()
	c.sess = sess
}

// SessionEnded discards everything loaded for sess.
func (c *Controller) SessionEnded(sess *session.Session) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sess == sess {
		c.clear()
	}
}

// Reset discards all state regardless of the bound session.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clear()
}

func (c *Controller) clear() {
	c.sess = nil
	c.profile = nil
	c.jobs = []models.JobOffer{}
	c.sources = []models.JobSource{}
	c.seq.reset()
}

// current must be called with c.mu held.
func (c *Controller) current(sess *session.Session) bool {
	return sess != nil && c.sess == sess && sess.Active()
}

// Start issues the three session-start reads concurrently and returns once
// all of them resolved. Each read is independent: a failure is logged and
// leaves its slice unset or empty without affecting the others. Nothing is
// retried and nothing is surfaced to the user.
func (c *Controller) Start(sess *session.Session) error {
	c.mu.Lock()
	if !c.current(sess) {
		c.mu.Unlock()
		return session.ErrNoSession
	}
	profileSeq := c.seq.issue(resProfile)
	jobsSeq := c.seq.issue(resJobs)
	sourcesSeq := c.seq.issue(resSources)
	c.mu.Unlock()

	ctx := sess.Context()
	var g errgroup.Group
	g.Go(func() error {
		c.loadProfile(ctx, sess, profileSeq)
		return nil
	})
	g.Go(func() error {
		jobs, err := c.remote.FetchJobs(ctx, sess.UserHandle)
		if err != nil {
			c.logPassive(sess, resJobs, err)
			return nil
		}
		_ = c.applyJobs(sess, jobsSeq, jobs)
		return nil
	})
	g.Go(func() error {
		sources, err := c.remote.FetchSources(ctx, sess.UserHandle)
		if err != nil {
			c.logPassive(sess, resSources, err)
			return nil
		}
		_ = c.applySources(sess, sourcesSeq, sources)
		return nil
	})
	return g.Wait()
}

func (c *Controller) loadProfile(ctx context.Context, sess *session.Session, seq uint64) {
	profile, err := c.remote.FetchProfile(ctx, sess.UserHandle)
	if err != nil {
		c.logPassive(sess, resProfile, err)
		return
	}

	c.mu.Lock()
	if !c.current(sess) || !c.seq.admit(resProfile, seq, c.lastWins) {
		c.mu.Unlock()
		return
	}
	p := *profile
	p.Filters = p.Filters.Normalize()
	c.profile = &p
	c.mu.Unlock()

	c.log.Debug("profile loaded",
		zap.String("session", sess.ID),
		zap.Bool("has_resume", p.HasResume()),
	)
	if c.observer != nil {
		c.observer.ProfileLoaded(sess, p)
	}
}

func (c *Controller) logPassive(sess *session.Session, r resource, err error) {
	if errors.Is(err, context.Canceled) {
		return
	}
	c.log.Warn("session-start load failed",
		zap.String("session", sess.ID),
		zap.String("user", sess.UserHandle),
		zap.Stringer("resource", r),
		zap.Error(err),
	)
}

func (c *Controller) applyJobs(sess *session.Session, seq uint64, jobs []models.JobOffer) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.current(sess) {
		return session.ErrSessionEnded
	}
	if !c.seq.admit(resJobs, seq, c.lastWins) {
		c.log.Debug("dropping stale job list", zap.String("session", sess.ID), zap.Uint64("seq", seq))
		return ErrSuperseded
	}
	c.jobs = append([]models.JobOffer{}, jobs...)
	return nil
}

func (c *Controller) applySources(sess *session.Session, seq uint64, sources []models.JobSource) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.current(sess) {
		return session.ErrSessionEnded
	}
	if !c.seq.admit(resSources, seq, c.lastWins) {
		return ErrSuperseded
	}
	c.sources = append([]models.JobSource{}, sources...)
	return nil
}

// RefreshJobs refetches the job list and replaces the cache wholesale.
func (c *Controller) RefreshJobs(ctx context.Context, sess *session.Session) error {
	c.mu.Lock()
	if !c.current(sess) {
		c.mu.Unlock()
		return session.ErrNoSession
	}
	seq := c.seq.issue(resJobs)
	c.mu.Unlock()

	jobs, err := c.remote.FetchJobs(ctx, sess.UserHandle)
	if err != nil {
		c.log.Error("failed to refresh job offers", zap.String("session", sess.ID), zap.Error(err))
		return fmt.Errorf("refresh jobs: %w", err)
	}
	return c.applyJobs(sess, seq, jobs)
}

// AddSource creates a source on the server and appends the canonical record
// once the server confirmed it. On failure the list is unchanged.
func (c *Controller) AddSource(ctx context.Context, sess *session.Session, draft models.SourceDraft) (Result, error) {
	if strings.TrimSpace(draft.Name) == "" || strings.TrimSpace(draft.URL) == "" {
		return Result{}, ErrInvalidSource
	}
	if !c.isCurrent(sess) {
		return Result{}, session.ErrNoSession
	}
	if draft.Type == "" {
		draft.Type = models.SourceAPI
	}
	if draft.UserID == "" {
		draft.UserID = sess.UserHandle
	}

	created, err := c.remote.CreateSource(ctx, draft)
	if err != nil {
		c.log.Error("failed to create job source", zap.String("session", sess.ID), zap.Error(err))
		return Result{}, fmt.Errorf("add source: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.current(sess) {
		return Result{}, session.ErrSessionEnded
	}
	c.sources = append(c.sources, *created)
	return Result{Outcome: Confirmed, Source: *created}, nil
}

// ToggleSource flips the enabled flag locally. There is no remote call.
func (c *Controller) ToggleSource(sess *session.Session, id string) (Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.current(sess) {
		return Result{}, session.ErrNoSession
	}
	i := c.indexOfSource(id)
	if i < 0 {
		return Result{}, ErrSourceNotFound
	}
	c.sources[i].Enabled = !c.sources[i].Enabled
	return Result{Outcome: OptimisticUnconfirmed, Source: c.sources[i]}, nil
}

// DeleteSource asks the server to delete the source and then removes it from
// the local list whatever the answer was. A returned error only reports the
// remote failure; the removal has been applied.
func (c *Controller) DeleteSource(ctx context.Context, sess *session.Session, id string) (Result, error) {
	if !c.isCurrent(sess) {
		return Result{}, session.ErrNoSession
	}

	remoteErr := c.remote.DeleteSource(ctx, id)
	if remoteErr != nil {
		c.log.Warn("delete source not acknowledged", zap.String("session", sess.ID), zap.String("source", id), zap.Error(remoteErr))
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.current(sess) {
		return Result{}, session.ErrSessionEnded
	}
	if i := c.indexOfSource(id); i >= 0 {
		c.sources = append(c.sources[:i:i], c.sources[i+1:]...)
	}
	if remoteErr != nil {
		return Result{Outcome: OptimisticUnconfirmed}, fmt.Errorf("delete source: %w", remoteErr)
	}
	return Result{Outcome: OptimisticUnconfirmed}, nil
}

// SyncSource stamps the source's lastSync with the current time, then fires
// the load-new trigger for the user. The request carries only the user
// identity. The stamp is kept even when the trigger fails; the returned
// error is for notification only.
func (c *Controller) SyncSource(ctx context.Context, sess *session.Session, id string) (Result, error) {
	c.mu.Lock()
	if !c.current(sess) {
		c.mu.Unlock()
		return Result{}, session.ErrNoSession
	}
	i := c.indexOfSource(id)
	if i < 0 {
		c.mu.Unlock()
		return Result{}, ErrSourceNotFound
	}
	now := c.now()
	c.sources[i].LastSync = &now
	res := Result{Outcome: OptimisticUnconfirmed, Source: c.sources[i]}
	c.mu.Unlock()

	if err := c.remote.TriggerSync(ctx, sess.UserHandle); err != nil {
		c.log.Error("failed to trigger source sync", zap.String("session", sess.ID), zap.String("source", id), zap.Error(err))
		return res, fmt.Errorf("sync source: %w", err)
	}
	return res, nil
}

// AttachCoverLetter records a generated cover letter on the cached offer.
func (c *Controller) AttachCoverLetter(sess *session.Session, jobID, letter string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.current(sess) {
		return session.ErrSessionEnded
	}
	for i := range c.jobs {
		if c.jobs[i].ID == jobID {
			l := letter
			c.jobs[i].CoverLetter = &l
			return nil
		}
	}
	return ErrJobNotFound
}

// SetResume records a resume the server accepted on the cached profile.
func (c *Controller) SetResume(sess *session.Session, resume string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.current(sess) {
		return session.ErrSessionEnded
	}
	if c.profile == nil {
		c.profile = &models.UserProfile{ID: sess.UserHandle, Email: sess.UserHandle, Filters: models.EmptyFilters()}
	}
	r := resume
	c.profile.Resume = &r
	return nil
}

func (c *Controller) isCurrent(sess *session.Session) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current(sess)
}

// indexOfSource must be called with c.mu held.
func (c *Controller) indexOfSource(id string) int {
	for i := range c.sources {
		if c.sources[i].ID == id {
			return i
		}
	}
	return -1
}

// Profile returns a copy of the loaded profile.
func (c *Controller) Profile() (models.UserProfile, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.profile == nil {
		return models.UserProfile{}, false
	}
	return *c.profile, true
}

// Jobs returns a copy of the cached job list.
func (c *Controller) Jobs() []models.JobOffer {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.JobOffer{}, c.jobs...)
}

// Job looks up a cached job offer.
func (c *Controller) Job(id string) (models.JobOffer, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, j := range c.jobs {
		if j.ID == id {
			return j, true
		}
	}
	return models.JobOffer{}, false
}

// Sources returns a copy of the cached source list.
func (c *Controller) Sources() []models.JobSource {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.JobSource{}, c.sources...)
}
