// Package onboarding implements the resume-required gate.
//
// State graph for one session:
//
//	(unevaluated) ──Evaluate(no resume)──► Gated ──Acknowledge──► Open
//	      │                                                         ▲
//	      └──────────────Evaluate(resume present)───────────────────┘
//
// Open is terminal for the session. The gate is evaluated once per
// session start; an unevaluated gate lets navigation through.
package onboarding

import (
	"sync"
)

// State is the gate state.
type State string

const (
	// Open means the user may navigate freely.
	Open State = "open"
	// Gated means a resume must be supplied first.
	Gated State = "gated"
)

// Destination is a navigable surface of the application.
type Destination string

const (
	Dashboard Destination = "dashboard"
	Jobs      Destination = "jobs"
	Sources   Destination = "sources"
	Filters   Destination = "filters"
	Settings  Destination = "settings"
)

// Destinations lists every navigable tab in display order.
var Destinations = []Destination{Dashboard, Jobs, Sources, Filters, Settings}

// ParseDestination maps a raw name to a Destination.
func ParseDestination(s string) (Destination, bool) {
	for _, d := range Destinations {
		if string(d) == s {
			return d, true
		}
	}
	return "", false
}

// Decision is the result of a navigation request.
type Decision struct {
	// Allowed reports whether the requested destination may be shown.
	Allowed bool
	// ShowResumePrompt is set when the resume surface was forced instead.
	ShowResumePrompt bool
}

// Gate tracks whether the user must supply a resume before using the app.
type Gate struct {
	mu         sync.Mutex
	state      State
	evaluated  bool
	promptOpen bool
}

// NewGate returns an unevaluated gate.
func NewGate() *Gate {
	return &Gate{state: Open}
}

// Evaluate sets the initial state from the loaded profile. Only the first
// call of a session has an effect.
func (g *Gate) Evaluate(hasResume bool) State {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.evaluated {
		return g.state
	}
	g.evaluated = true
	if hasResume {
		g.state = Open
		return g.state
	}
	g.state = Gated
	g.promptOpen = true
	return g.state
}

// Acknowledge opens the gate after the resume collaborator confirmed a save
// or a submission.
func (g *Gate) Acknowledge() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.evaluated = true
	g.state = Open
	g.promptOpen = false
}

// Navigate decides whether dest may be shown. While gated only the
// settings surface is reachable; any other request forces the resume prompt.
func (g *Gate) Navigate(dest Destination) Decision {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state == Gated && dest != Settings {
		g.promptOpen = true
		return Decision{Allowed: false, ShowResumePrompt: true}
	}
	return Decision{Allowed: true}
}

// ShowResumePrompt opens the resume surface on user request.
func (g *Gate) ShowResumePrompt() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.promptOpen = true
}

// DismissResumePrompt closes the resume surface. It refuses while gated.
func (g *Gate) DismissResumePrompt() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state == Gated {
		return false
	}
	g.promptOpen = false
	return true
}

// State returns the current state.
func (g *Gate) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// ResumePromptVisible reports whether the resume surface is shown.
func (g *Gate) ResumePromptVisible() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.promptOpen
}

// Reset returns the gate to its unevaluated state.
func (g *Gate) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.state = Open
	g.evaluated = false
	g.promptOpen = false
}
