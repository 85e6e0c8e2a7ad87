package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atinyakov/JobScout/internal/models"
)

// roundTripperFunc lets tests stub the http.Client transport.
type roundTripperFunc func(req *http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func newStubClient(fn roundTripperFunc) *Client {
	return New("http://example.com", WithHTTPClient(&http.Client{Transport: fn, Timeout: time.Second}))
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func TestFetchProfile_Success(t *testing.T) {
	c := newStubClient(func(req *http.Request) (*http.Response, error) {
		assert.Equal(t, http.MethodGet, req.Method)
		assert.Equal(t, "/api/users/a@x.com", req.URL.Path)
		return jsonResponse(http.StatusOK, `{"id":"a@x.com","email":"a@x.com","filters":{"stack":["Go"]},"resume":null}`), nil
	})

	p, err := c.FetchProfile(context.Background(), "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", p.Email)
	assert.False(t, p.HasResume())
	assert.Equal(t, []string{"Go"}, p.Filters.Stack)
	assert.NotNil(t, p.Filters.Location)
}

func TestFetchProfile_EscapesHandle(t *testing.T) {
	c := newStubClient(func(req *http.Request) (*http.Response, error) {
		assert.Equal(t, "/api/users/a%2Fb", req.URL.EscapedPath())
		return jsonResponse(http.StatusOK, `{}`), nil
	})
	_, err := c.FetchProfile(context.Background(), "a/b")
	require.NoError(t, err)
}

func TestSend_NetworkError(t *testing.T) {
	c := newStubClient(func(req *http.Request) (*http.Response, error) {
		return nil, errors.New("network down")
	})
	_, err := c.FetchJobs(context.Background(), "a@x.com")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetch jobs failed")
	assert.False(t, errors.Is(err, ErrUnexpectedStatus))
}

func TestSend_NonSuccessStatus(t *testing.T) {
	for _, code := range []int{http.StatusBadRequest, http.StatusNotFound, http.StatusInternalServerError} {
		c := newStubClient(func(req *http.Request) (*http.Response, error) {
			return jsonResponse(code, "boom\n"), nil
		})
		err := c.DeleteSource(context.Background(), "s1")
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrUnexpectedStatus))

		var se *StatusError
		require.True(t, errors.As(err, &se))
		assert.Equal(t, code, se.StatusCode)
		assert.Equal(t, "boom\n", se.Body)
	}
}

func TestSend_InvalidJSON(t *testing.T) {
	c := newStubClient(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, "not-json"), nil
	})
	_, err := c.FetchSources(context.Background(), "a@x.com")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid response")
}

func TestFetchJobs_NullBody(t *testing.T) {
	c := newStubClient(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, "null"), nil
	})
	jobs, err := c.FetchJobs(context.Background(), "a@x.com")
	require.NoError(t, err)
	assert.NotNil(t, jobs)
	assert.Empty(t, jobs)
}

func TestRequestBodies(t *testing.T) {
	tests := []struct {
		name       string
		call       func(c *Client) error
		wantMethod string
		wantPath   string
		wantBody   string
	}{
		{
			name:       "save resume",
			call:       func(c *Client) error { return c.SaveResume(context.Background(), "a@x.com", "cv") },
			wantMethod: http.MethodPut,
			wantPath:   "/api/users/a@x.com/resume",
			wantBody:   `{"resume":"cv"}`,
		},
		{
			name: "save filters",
			call: func(c *Client) error {
				return c.SaveFilters(context.Background(), "a@x.com", models.FilterCriteria{Stack: []string{"Go"}})
			},
			wantMethod: http.MethodPut,
			wantPath:   "/api/users/a@x.com/filters",
			wantBody:   `{"filters":{"stack":["Go"],"experience":[],"keywords":[],"excludeKeywords":[],"location":[],"jobType":[]}}`,
		},
		{
			name:       "trigger sync",
			call:       func(c *Client) error { return c.TriggerSync(context.Background(), "a@x.com") },
			wantMethod: http.MethodPost,
			wantPath:   "/api/job-offers/load-new",
			wantBody:   `{"user_email":"a@x.com"}`,
		},
		{
			name:       "delete source",
			call:       func(c *Client) error { return c.DeleteSource(context.Background(), "s 1") },
			wantMethod: http.MethodDelete,
			wantPath:   "/api/job-sources/s 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newStubClient(func(req *http.Request) (*http.Response, error) {
				assert.Equal(t, tt.wantMethod, req.Method)
				assert.Equal(t, tt.wantPath, req.URL.Path)
				if tt.wantBody != "" {
					assert.Equal(t, "application/json", req.Header.Get("Content-Type"))
					b, err := io.ReadAll(req.Body)
					require.NoError(t, err)
					assert.JSONEq(t, tt.wantBody, string(b))
				}
				return jsonResponse(http.StatusOK, `{"status":"ok"}`), nil
			})
			require.NoError(t, tt.call(c))
		})
	}
}

func TestCreateSource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/job-sources", r.URL.Path)
		var payload map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "Remote Jobs", payload["name"])
		assert.Equal(t, "a@x.com", payload["user_id"])
		assert.Contains(t, payload, "lastSync")
		assert.Nil(t, payload["lastSync"])

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"srv-1","name":"Remote Jobs","type":"API","url":"https://r.example","enabled":true,"lastSync":null}`))
	}))
	defer srv.Close()

	c := New(srv.URL + "/")
	created, err := c.CreateSource(context.Background(), models.SourceDraft{
		Name: "Remote Jobs", Type: models.SourceAPI, URL: "https://r.example", Enabled: true, UserID: "a@x.com",
	})
	require.NoError(t, err)
	assert.Equal(t, "srv-1", created.ID)
	assert.Nil(t, created.LastSync)
}

func TestGenerateCoverLetter(t *testing.T) {
	c := newStubClient(func(req *http.Request) (*http.Response, error) {
		var body models.CoverLetterRequest
		require.NoError(t, json.NewDecoder(req.Body).Decode(&body))
		assert.Equal(t, models.CoverLetterRequest{ID: "j1", JobDescription: "desc", Resume: "cv"}, body)
		return jsonResponse(http.StatusOK, `{"coverLetter":"Dear team"}`), nil
	})
	letter, err := c.GenerateCoverLetter(context.Background(), models.CoverLetterRequest{ID: "j1", JobDescription: "desc", Resume: "cv"})
	require.NoError(t, err)
	assert.Equal(t, "Dear team", letter)
}

func TestAnalyzeResume_Multipart(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/users/a@x.com/resume/upload-analyze", r.URL.Path)
		f, hdr, err := r.FormFile("file")
		if !assert.NoError(t, err) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		defer f.Close()
		data, _ := io.ReadAll(f)
		assert.Equal(t, "cv.pdf", hdr.Filename)
		assert.Equal(t, "pdf-bytes", string(data))

		_, _ = w.Write([]byte(`{"filters":{"stack":["Go","SQL"],"location":["Remote"]},"resume":"parsed"}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	res, err := c.AnalyzeResume(context.Background(), "a@x.com", "cv.pdf", strings.NewReader("pdf-bytes"))
	require.NoError(t, err)
	assert.Equal(t, []string{"Go", "SQL"}, res.Filters.Stack)
	assert.Nil(t, res.Filters.Keywords)
	require.NotNil(t, res.Resume)
	assert.Equal(t, "parsed", *res.Resume)
}

func TestContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(srv.URL).FetchJobs(ctx, "a@x.com")
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestNewHTTPClient(t *testing.T) {
	hc, err := NewHTTPClient(3*time.Second, "")
	require.NoError(t, err)
	assert.Equal(t, 3*time.Second, hc.Timeout)

	_, err = NewHTTPClient(0, filepath.Join(t.TempDir(), "missing.pem"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))

	bad := filepath.Join(t.TempDir(), "bad.pem")
	require.NoError(t, os.WriteFile(bad, []byte("invalid pem"), 0600))
	_, err = NewHTTPClient(0, bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse CA cert")
}
