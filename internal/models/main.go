// Package models defines the core data structures shared by the JobScout
// client and the reference backend: user profiles, filter criteria,
// job offers and job sources.
package models

import (
	"strings"
	"time"
)

// UserProfile is the account record returned by the profile endpoint.
type UserProfile struct {
	// ID is the account identifier (the e-mail address).
	ID string `json:"id"`
	// Email is the user handle.
	Email string `json:"email"`
	// FullName is optional display name.
	FullName *string `json:"full_name"`
	// Filters are the persisted filter criteria.
	Filters FilterCriteria `json:"filters"`
	// Resume is the stored resume text, nil when none was supplied.
	Resume *string `json:"resume"`
}

// HasResume reports whether the profile carries a non-empty resume.
func (p UserProfile) HasResume() bool {
	return p.Resume != nil && strings.TrimSpace(*p.Resume) != ""
}

// ResumeText returns the resume or an empty string.
func (p UserProfile) ResumeText() string {
	if p.Resume == nil {
		return ""
	}
	return *p.Resume
}

// JobOffer is a scored posting. The client only reads offers, except for
// CoverLetter which is attached after a successful generation call.
type JobOffer struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Company      string    `json:"company"`
	Location     string    `json:"location"`
	Type         string    `json:"type"`
	Salary       *string   `json:"salary,omitempty"`
	Description  string    `json:"description"`
	Requirements []string  `json:"requirements"`
	Stack        []string  `json:"stack"`
	Experience   string    `json:"experience"`
	PostedDate   time.Time `json:"postedDate"`
	Source       string    `json:"source"`
	URL          string    `json:"url"`
	IsMatch      bool      `json:"isMatch"`
	MatchScore   float64   `json:"matchScore"`
	AISummary    *string   `json:"aiSummary,omitempty"`
	CoverLetter  *string   `json:"coverLetter,omitempty"`
}

// SourceType defines the set of valid job source kinds.
type SourceType string

const (
	// SourceRSS is a feed-backed source.
	SourceRSS SourceType = "RSS"
	// SourceEmail is a mailbox-backed source.
	SourceEmail SourceType = "Email"
	// SourceAPI is a remote API source.
	SourceAPI SourceType = "API"
)

// Valid reports whether t is one of the known source types.
func (t SourceType) Valid() bool {
	switch t {
	case SourceRSS, SourceEmail, SourceAPI:
		return true
	}
	return false
}

// JobSource is a user-connected origin of job offers.
type JobSource struct {
	ID       string     `json:"id"`
	Name     string     `json:"name"`
	Type     SourceType `json:"type"`
	URL      string     `json:"url"`
	Enabled  bool       `json:"enabled"`
	LastSync *time.Time `json:"lastSync"`
}

// SourceDraft is the create-source payload. The server assigns the
// canonical ID.
type SourceDraft struct {
	Name     string     `json:"name"`
	Type     SourceType `json:"type"`
	URL      string     `json:"url"`
	Enabled  bool       `json:"enabled"`
	LastSync *time.Time `json:"lastSync"`
	UserID   string     `json:"user_id"`
}

// ResumeAnalysis is the result of the upload-analyze endpoint.
type ResumeAnalysis struct {
	Filters FilterFragment `json:"filters"`
	Resume  *string        `json:"resume"`
}

// CoverLetterRequest is the payload of the cover-letter generation call.
type CoverLetterRequest struct {
	ID             string `json:"id"`
	JobDescription string `json:"jobDescription"`
	Resume         string `json:"resume"`
}

// CoverLetterResponse carries the generated letter.
type CoverLetterResponse struct {
	CoverLetter string `json:"coverLetter"`
}
