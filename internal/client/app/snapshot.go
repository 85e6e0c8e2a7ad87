package app

import (
	"github.com/atinyakov/JobScout/internal/client/datasync"
	"github.com/atinyakov/JobScout/internal/client/onboarding"
	"github.com/atinyakov/JobScout/internal/client/session"
	"github.com/atinyakov/JobScout/internal/models"
)

// Snapshot is a point-in-time copy of everything the shell renders.
type Snapshot struct {
	User         string
	Tab          onboarding.Destination
	Gate         onboarding.State
	ResumePrompt bool
	Profile      *models.UserProfile
	Jobs         []models.JobOffer
	Matched      int
	Sources      []models.JobSource
	Filters      models.FilterCriteria
	FiltersDirty bool
	LoggedIn     bool
}

// Snapshot returns the current view state.
func (a *App) Snapshot() Snapshot {
	a.mu.Lock()
	tab := a.tab
	a.mu.Unlock()

	s := Snapshot{
		Tab:          tab,
		Gate:         a.gate.State(),
		ResumePrompt: a.gate.ResumePromptVisible(),
		Jobs:         a.data.Jobs(),
		Sources:      a.data.Sources(),
		Filters:      a.drafts.Draft(),
		FiltersDirty: a.drafts.Dirty(),
	}
	if sess := a.store.Current(); sess.Active() {
		s.User = sess.UserHandle
		s.LoggedIn = true
	}
	if p, ok := a.data.Profile(); ok {
		s.Profile = &p
	}
	for _, j := range s.Jobs {
		if j.IsMatch {
			s.Matched++
		}
	}
	return s
}

var (
	_ datasync.ProfileObserver = (*App)(nil)
	_ session.Listener         = (*App)(nil)
)
