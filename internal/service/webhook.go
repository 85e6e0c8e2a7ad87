package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/atinyakov/JobScout/internal/models"
)

// ErrWebhookNotConfigured is returned when the processing webhook URL is empty.
var ErrWebhookNotConfigured = errors.New("webhook is not configured")

// ErrWebhookFailed wraps non-2xx answers of a processing webhook.
var ErrWebhookFailed = errors.New("webhook error")

// Webhooks talks to the external resume and cover-letter processors.
type Webhooks struct {
	AnalyzeURL     string
	CoverLetterURL string
	Client         *http.Client
}

// NewWebhooks creates webhook clients with a 30 second timeout.
func NewWebhooks(analyzeURL, coverLetterURL string) *Webhooks {
	return &Webhooks{
		AnalyzeURL:     analyzeURL,
		CoverLetterURL: coverLetterURL,
		Client:         &http.Client{Timeout: 30 * time.Second},
	}
}

// AnalyzeResume posts the file with the user's email as multipart form data.
func (w *Webhooks) AnalyzeResume(ctx context.Context, email, filename string, data []byte) error {
	if w.AnalyzeURL == "" {
		return ErrWebhookNotConfigured
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	_ = mw.WriteField("email", email)
	_ = mw.WriteField("filename", filename)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return fmt.Errorf("write form file: %w", err)
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("close multipart: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.AnalyzeURL, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return w.do(req, nil)
}

// CoverLetter posts the request as JSON and decodes {coverLetter}.
func (w *Webhooks) CoverLetter(ctx context.Context, in models.CoverLetterRequest) (string, error) {
	if w.CoverLetterURL == "" {
		return "", ErrWebhookNotConfigured
	}
	body, err := json.Marshal(in)
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.CoverLetterURL, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	var out models.CoverLetterResponse
	if err := w.do(req, &out); err != nil {
		return "", err
	}
	return out.CoverLetter, nil
}

func (w *Webhooks) do(req *http.Request, out any) error {
	resp, err := w.Client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: %d %s", ErrWebhookFailed, resp.StatusCode, string(body))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode webhook response: %w", err)
	}
	return nil
}
