// Package app wires the session store, the onboarding gate, the filter
// draft and the data-sync controller into the surface the interactive
// shell drives. It owns the active tab and turns results of user actions
// into notifications.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/atinyakov/JobScout/internal/client/datasync"
	"github.com/atinyakov/JobScout/internal/client/filters"
	"github.com/atinyakov/JobScout/internal/client/onboarding"
	"github.com/atinyakov/JobScout/internal/client/session"
	"github.com/atinyakov/JobScout/internal/models"
)

var (
	// ErrJobNotFound is returned for unknown job ids.
	ErrJobNotFound = datasync.ErrJobNotFound
	// ErrNothingToAnalyze is returned when neither a file nor pasted text
	// was given to AnalyzeResume.
	ErrNothingToAnalyze = errors.New("a resume file or pasted text is required")
)

// pastedResumeName is the file name pasted text is uploaded under.
const pastedResumeName = "resume.pdf"

// Gateway is the backend surface the application needs.
type Gateway interface {
	datasync.Remote
	filters.Saver
	SaveResume(ctx context.Context, handle, resume string) error
	AnalyzeResume(ctx context.Context, handle, filename string, file io.Reader) (*models.ResumeAnalysis, error)
	GenerateCoverLetter(ctx context.Context, req models.CoverLetterRequest) (string, error)
}

// App is the client application state behind the shell.
type App struct {
	gw     Gateway
	log    *zap.Logger
	notify Notifier

	store  *session.Store
	gate   *onboarding.Gate
	drafts *filters.DraftModel
	data   *datasync.Controller

	// viewMu orders session transitions against profile application, so a
	// profile is applied to the gate and draft only while its session is
	// the bound one.
	viewMu   sync.Mutex
	viewSess *session.Session

	mu  sync.Mutex
	tab onboarding.Destination
}

type settings struct {
	log      *zap.Logger
	notify   Notifier
	dataOpts []datasync.Option
}

// Option configures an App.
type Option func(*settings)

// WithLogger sets the logger shared by all components.
func WithLogger(l *zap.Logger) Option {
	return func(s *settings) { s.log = l }
}

// WithNotifier sets the sink for user-facing notifications.
func WithNotifier(n Notifier) Option {
	return func(s *settings) { s.notify = n }
}

// WithDataOptions passes options to the data-sync controller.
func WithDataOptions(opts ...datasync.Option) Option {
	return func(s *settings) { s.dataOpts = append(s.dataOpts, opts...) }
}

// New builds an anonymous application on top of gw.
func New(gw Gateway, opts ...Option) *App {
	s := settings{log: zap.NewNop()}
	for _, o := range opts {
		o(&s)
	}
	if s.notify == nil {
		s.notify = NewLogNotifier(s.log)
	}

	a := &App{
		gw:     gw,
		log:    s.log,
		notify: s.notify,
		store:  session.NewStore(s.log),
		gate:   onboarding.NewGate(),
		drafts: filters.NewDraftModel(gw, s.log),
		tab:    onboarding.Dashboard,
	}
	dataOpts := append([]datasync.Option{
		datasync.WithLogger(s.log),
		datasync.WithProfileObserver(a),
	}, s.dataOpts...)
	a.data = datasync.New(gw, dataOpts...)

	a.store.Subscribe(a)
	a.store.Subscribe(a.data)
	return a
}

// SessionStarted binds the view to sess and resets per-session UI state.
func (a *App) SessionStarted(sess *session.Session) {
	a.resetView(sess)
}

// SessionEnded resets per-session UI state.
func (a *App) SessionEnded(sess *session.Session) {
	a.viewMu.Lock()
	bound := a.viewSess == sess
	a.viewMu.Unlock()
	if bound {
		a.resetView(nil)
	}
}

func (a *App) resetView(sess *session.Session) {
	a.viewMu.Lock()
	a.viewSess = sess
	a.gate.Reset()
	a.drafts.Reset()
	a.viewMu.Unlock()

	a.mu.Lock()
	a.tab = onboarding.Dashboard
	a.mu.Unlock()
}

// ProfileLoaded evaluates the gate and seeds the filter draft. A profile of
// a session that is no longer bound is dropped.
func (a *App) ProfileLoaded(sess *session.Session, profile models.UserProfile) {
	a.viewMu.Lock()
	defer a.viewMu.Unlock()
	if sess == nil || a.viewSess != sess || !sess.Active() {
		return
	}
	if a.gate.Evaluate(profile.HasResume()) == onboarding.Gated {
		a.log.Info("resume required", zap.String("session", sess.ID))
	}
	a.drafts.Load(profile.Filters)
}

// Login starts a session and waits for the session-start loads. A load
// failure does not fail the login; a cancelled ctx only stops the wait.
func (a *App) Login(ctx context.Context, handle string) error {
	sess, err := a.store.Login(handle)
	if err != nil {
		return err
	}

	done := make(chan error, 1)
	go func() { done <- a.data.Start(sess) }()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return fmt.Errorf("initial load: %w", ctx.Err())
	}
}

// Logout ends the session. No network call is made.
func (a *App) Logout() {
	a.store.Logout()
}

func (a *App) session() (*session.Session, error) {
	sess := a.store.Current()
	if !sess.Active() {
		return nil, session.ErrNoSession
	}
	return sess, nil
}

// Navigate switches the active tab when the gate allows it.
func (a *App) Navigate(dest onboarding.Destination) onboarding.Decision {
	d := a.gate.Navigate(dest)
	if d.Allowed {
		a.mu.Lock()
		a.tab = dest
		a.mu.Unlock()
	}
	return d
}

// ShowResumePrompt opens the resume surface.
func (a *App) ShowResumePrompt() {
	a.gate.ShowResumePrompt()
}

// DismissResumePrompt closes the resume surface unless the gate is closed.
func (a *App) DismissResumePrompt() bool {
	return a.gate.DismissResumePrompt()
}

// SaveResume stores pasted resume text and opens the gate.
func (a *App) SaveResume(ctx context.Context, text string) error {
	sess, err := a.session()
	if err != nil {
		return err
	}
	if err := a.gw.SaveResume(ctx, sess.UserHandle, text); err != nil {
		a.notify.Error("Failed to save resume", err)
		return fmt.Errorf("save resume: %w", err)
	}
	if !a.store.IsCurrent(sess) {
		return session.ErrSessionEnded
	}
	_ = a.data.SetResume(sess, text)
	a.gate.Acknowledge()
	a.notify.Success("Resume saved")
	return nil
}

// AnalyzeResume uploads a resume file, or the pasted text when r is nil,
// merges the extracted filters into the draft and shows the filters view.
// Pasted text is also stored as the resume. The gate opens on success.
func (a *App) AnalyzeResume(ctx context.Context, filename string, r io.Reader, pastedText string) error {
	sess, err := a.session()
	if err != nil {
		return err
	}
	pasted := r == nil
	if pasted {
		if strings.TrimSpace(pastedText) == "" {
			return ErrNothingToAnalyze
		}
		filename = pastedResumeName
		r = strings.NewReader(pastedText)
	}

	analysis, err := a.gw.AnalyzeResume(ctx, sess.UserHandle, filename, r)
	if err != nil {
		a.notify.Error("Failed to analyze resume", err)
		return fmt.Errorf("analyze resume: %w", err)
	}
	if !a.store.IsCurrent(sess) {
		return session.ErrSessionEnded
	}

	a.drafts.MergePartial(analysis.Filters)
	// The extracted filters are shown for review even while gated.
	a.mu.Lock()
	a.tab = onboarding.Filters
	a.mu.Unlock()

	if analysis.Resume != nil {
		_ = a.data.SetResume(sess, *analysis.Resume)
	}
	if pasted {
		if err := a.SaveResume(ctx, pastedText); err != nil {
			return err
		}
	}
	a.gate.Acknowledge()
	a.notify.Success("Filters extracted from resume")
	return nil
}

// GenerateCoverLetter asks the backend for a cover letter and attaches it
// to the cached offer.
func (a *App) GenerateCoverLetter(ctx context.Context, jobID string) (string, error) {
	sess, err := a.session()
	if err != nil {
		return "", err
	}
	job, ok := a.data.Job(jobID)
	if !ok {
		return "", ErrJobNotFound
	}
	profile, _ := a.data.Profile()

	letter, err := a.gw.GenerateCoverLetter(ctx, models.CoverLetterRequest{
		ID:             job.ID,
		JobDescription: job.Description,
		Resume:         profile.ResumeText(),
	})
	if err != nil {
		a.notify.Error("Failed to generate cover letter", err)
		return "", fmt.Errorf("generate cover letter: %w", err)
	}
	if err := a.data.AttachCoverLetter(sess, jobID, letter); err != nil {
		if errors.Is(err, session.ErrSessionEnded) {
			return "", err
		}
		// The offer left the cache while the letter was generated.
		a.log.Warn("cover letter not attached", zap.String("session", sess.ID), zap.String("job", jobID), zap.Error(err))
	}
	a.notify.Success("Cover letter generated")
	return letter, nil
}

// RefreshJobs reloads the job list. A superseded response is not an error
// for the user.
func (a *App) RefreshJobs(ctx context.Context) error {
	sess, err := a.session()
	if err != nil {
		return err
	}
	err = a.data.RefreshJobs(ctx, sess)
	switch {
	case err == nil:
		a.notify.Success("Job offers refreshed")
	case errors.Is(err, datasync.ErrSuperseded), errors.Is(err, session.ErrSessionEnded):
		return nil
	default:
		a.notify.Error("Failed to refresh job offers", err)
	}
	return err
}

// AddSource creates a job source.
func (a *App) AddSource(ctx context.Context, name, url string) (datasync.Result, error) {
	sess, err := a.session()
	if err != nil {
		return datasync.Result{}, err
	}
	res, err := a.data.AddSource(ctx, sess, models.SourceDraft{
		Name:    strings.TrimSpace(name),
		Type:    models.SourceAPI,
		URL:     strings.TrimSpace(url),
		Enabled: true,
		UserID:  sess.UserHandle,
	})
	if err != nil {
		if !errors.Is(err, session.ErrSessionEnded) {
			a.notify.Error("Failed to add source", err)
		}
		return res, err
	}
	a.notify.Success(fmt.Sprintf("Source %q added", res.Source.Name))
	return res, nil
}

// ToggleSource flips a source's enabled flag locally.
func (a *App) ToggleSource(id string) (datasync.Result, error) {
	sess, err := a.session()
	if err != nil {
		return datasync.Result{}, err
	}
	return a.data.ToggleSource(sess, id)
}

// DeleteSource deletes a source. It disappears locally either way.
func (a *App) DeleteSource(ctx context.Context, id string) (datasync.Result, error) {
	sess, err := a.session()
	if err != nil {
		return datasync.Result{}, err
	}
	res, err := a.data.DeleteSource(ctx, sess, id)
	if err != nil {
		if !errors.Is(err, session.ErrSessionEnded) {
			a.notify.Error("Failed to delete source on the server", err)
		}
		return res, err
	}
	a.notify.Success("Source deleted")
	return res, nil
}

// SyncSource stamps the source and triggers loading of new offers.
func (a *App) SyncSource(ctx context.Context, id string) (datasync.Result, error) {
	sess, err := a.session()
	if err != nil {
		return datasync.Result{}, err
	}
	res, err := a.data.SyncSource(ctx, sess, id)
	switch {
	case errors.Is(err, datasync.ErrSourceNotFound):
		return res, err
	case err != nil:
		a.notify.Error("Failed to sync source", err)
		return res, err
	}
	a.notify.Success("Sync started")
	return res, nil
}

// UpdateFilters replaces the draft.
func (a *App) UpdateFilters(f models.FilterCriteria) {
	a.drafts.Update(f)
}

// MergeFilters merges a fragment into the draft and shows the filters view,
// the same way extracted resume filters are applied.
func (a *App) MergeFilters(fragment models.FilterFragment) models.FilterCriteria {
	merged := a.drafts.MergePartial(fragment)
	a.mu.Lock()
	a.tab = onboarding.Filters
	a.mu.Unlock()
	return merged
}

// SaveFilters persists the draft.
func (a *App) SaveFilters(ctx context.Context) error {
	sess, err := a.session()
	if err != nil {
		return err
	}
	if err := a.drafts.Save(ctx, sess); err != nil {
		if !errors.Is(err, session.ErrSessionEnded) {
			a.notify.Error("Failed to save filters", err)
		}
		return err
	}
	a.notify.Success("Filters saved")
	return nil
}
