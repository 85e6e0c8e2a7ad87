// Package gateway wraps every call the client makes to the JobScout backend.
// Calls fetch and decode; there is no retry logic. Any non-2xx status is a
// failure regardless of its code, and the error body is logged, not parsed.
package gateway

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/atinyakov/JobScout/internal/models"
)

// ErrUnexpectedStatus matches every *StatusError.
var ErrUnexpectedStatus = errors.New("unexpected status")

// StatusError is returned when the backend answers with a non-2xx status.
type StatusError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: server error: %d %s", e.Op, e.StatusCode, strings.TrimSpace(e.Body))
}

// Is makes errors.Is(err, ErrUnexpectedStatus) true for status errors.
func (e *StatusError) Is(target error) bool {
	return target == ErrUnexpectedStatus
}

// Client is the HTTP RemoteGateway.
type Client struct {
	baseURL string
	http    *http.Client
	log     *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger sets the logger used for failed-response diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.log = l }
}

// New creates a gateway for the given base address.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
		log:     zap.NewNop(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// NewHTTPClient builds an http.Client with the given timeout (0 = none).
// When caFile is set, the server certificate is verified against it.
func NewHTTPClient(timeout time.Duration, caFile string) (*http.Client, error) {
	hc := &http.Client{Timeout: timeout}
	if caFile == "" {
		return hc, nil
	}
	caCert, err := os.ReadFile(caFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read CA cert: %w", err)
	}
	caPool := x509.NewCertPool()
	if !caPool.AppendCertsFromPEM(caCert) {
		return nil, errors.New("failed to parse CA cert")
	}
	hc.Transport = &http.Transport{
		TLSClientConfig: &tls.Config{RootCAs: caPool, MinVersion: tls.VersionTLS12},
	}
	return hc, nil
}

func userPath(handle string, rest ...string) string {
	p := "/api/users/" + url.PathEscape(handle)
	for _, r := range rest {
		p += "/" + r
	}
	return p
}

// FetchProfile loads the user profile.
func (c *Client) FetchProfile(ctx context.Context, handle string) (*models.UserProfile, error) {
	var p models.UserProfile
	if err := c.doJSON(ctx, "fetch profile", http.MethodGet, userPath(handle), nil, &p); err != nil {
		return nil, err
	}
	p.Filters = p.Filters.Normalize()
	return &p, nil
}

// FetchJobs loads the user's job offers.
func (c *Client) FetchJobs(ctx context.Context, handle string) ([]models.JobOffer, error) {
	jobs := []models.JobOffer{}
	if err := c.doJSON(ctx, "fetch jobs", http.MethodGet, userPath(handle, "job-offers"), nil, &jobs); err != nil {
		return nil, err
	}
	if jobs == nil {
		jobs = []models.JobOffer{}
	}
	return jobs, nil
}

// FetchSources loads the user's job sources.
func (c *Client) FetchSources(ctx context.Context, handle string) ([]models.JobSource, error) {
	sources := []models.JobSource{}
	if err := c.doJSON(ctx, "fetch sources", http.MethodGet, userPath(handle, "job-sources"), nil, &sources); err != nil {
		return nil, err
	}
	if sources == nil {
		sources = []models.JobSource{}
	}
	return sources, nil
}

// SaveResume stores the resume text.
func (c *Client) SaveResume(ctx context.Context, handle, resume string) error {
	body := map[string]string{"resume": resume}
	return c.doJSON(ctx, "save resume", http.MethodPut, userPath(handle, "resume"), body, nil)
}

// SaveFilters persists the full filter criteria.
func (c *Client) SaveFilters(ctx context.Context, handle string, filters models.FilterCriteria) error {
	body := map[string]models.FilterCriteria{"filters": filters}
	return c.doJSON(ctx, "save filters", http.MethodPut, userPath(handle, "filters"), body, nil)
}

// CreateSource creates a source and returns the canonical record.
func (c *Client) CreateSource(ctx context.Context, draft models.SourceDraft) (*models.JobSource, error) {
	var created models.JobSource
	if err := c.doJSON(ctx, "create source", http.MethodPost, "/api/job-sources", draft, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// DeleteSource deletes a source by id.
func (c *Client) DeleteSource(ctx context.Context, id string) error {
	return c.doJSON(ctx, "delete source", http.MethodDelete, "/api/job-sources/"+url.PathEscape(id), nil, nil)
}

// TriggerSync asks the backend to load new offers for the user. The
// request carries only the user identity.
func (c *Client) TriggerSync(ctx context.Context, handle string) error {
	body := map[string]string{"user_email": handle}
	return c.doJSON(ctx, "trigger sync", http.MethodPost, "/api/job-offers/load-new", body, nil)
}

// GenerateCoverLetter requests a cover letter for a job.
func (c *Client) GenerateCoverLetter(ctx context.Context, req models.CoverLetterRequest) (string, error) {
	var resp models.CoverLetterResponse
	if err := c.doJSON(ctx, "generate cover letter", http.MethodPost, "/api/cover-letter/generate", req, &resp); err != nil {
		return "", err
	}
	return resp.CoverLetter, nil
}

// AnalyzeResume uploads a resume file as multipart form data.
func (c *Client) AnalyzeResume(ctx context.Context, handle, filename string, file io.Reader) (*models.ResumeAnalysis, error) {
	const op = "analyze resume"

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("%s: create form file: %w", op, err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("%s: copy file: %w", op, err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("%s: close multipart: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+userPath(handle, "resume", "upload-analyze"), &buf)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var out models.ResumeAnalysis
	if err := c.send(req, op, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) doJSON(ctx context.Context, op, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", op, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	return c.send(req, op, out)
}

func (c *Client) send(req *http.Request, op string, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s failed: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(resp.Body)
		c.log.Warn("backend returned non-success status",
			zap.String("op", op),
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", data),
		)
		return &StatusError{Op: op, StatusCode: resp.StatusCode, Body: string(data)}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: invalid response: %w", op, err)
	}
	return nil
}
