package llm_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/codegenius-ai/codegenius/shared/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newUpstream returns a server that replies with status and body, and records
// the last request path, headers and decoded JSON body.
func newUpstream(t *testing.T, status int, body string) (*httptest.Server, *capture) {
	t.Helper()
	c := &capture{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c.calls++
		c.path = r.URL.Path
		c.header = r.Header.Clone()
		_ = json.NewDecoder(r.Body).Decode(&c.body)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, c
}

type capture struct {
	calls  int
	path   string
	header http.Header
	body   map[string]any
}

func TestGemini_Success(t *testing.T) {
	srv, c := newUpstream(t, http.StatusOK, `{
		"candidates": [{"content": {"role": "model", "parts": [{"text": "def add(a, b):"}, {"text": "\n    return a + b"}]}}]
	}`)

	p := llm.NewGeminiProvider("gm-key", "gemini-1.5-flash", llm.WithBaseURL(srv.URL))
	out, err := p.Generate(context.Background(), "write add")
	require.NoError(t, err)

	assert.Equal(t, "def add(a, b):\n    return a + b", out)
	assert.Equal(t, "/models/gemini-1.5-flash:generateContent", c.path)
	assert.Equal(t, "gm-key", c.header.Get("x-goog-api-key"))

	contents := c.body["contents"].([]any)
	require.Len(t, contents, 1)
	parts := contents[0].(map[string]any)["parts"].([]any)
	assert.Equal(t, "write add", parts[0].(map[string]any)["text"])
}

func TestGemini_NameAndModel(t *testing.T) {
	p := llm.NewGeminiProvider("k", "gemini-2.0-flash")
	assert.Equal(t, "gemini", p.Name())
	assert.Equal(t, "gemini-2.0-flash", p.Model())
}

func TestGemini_Failures(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantKind llm.Kind
		wantMsg  string
	}{
		{
			name:     "quota exceeded",
			status:   http.StatusTooManyRequests,
			body:     `{"error": {"code": 429, "message": "Resource has been exhausted", "status": "RESOURCE_EXHAUSTED"}}`,
			wantKind: llm.KindStatus,
			wantMsg:  "Resource has been exhausted",
		},
		{
			name:     "bad gateway without json",
			status:   http.StatusBadGateway,
			body:     `<html>upstream down</html>`,
			wantKind: llm.KindStatus,
			wantMsg:  "HTTP 502",
		},
		{
			name:     "malformed body",
			status:   http.StatusOK,
			body:     `{"candidates": [`,
			wantKind: llm.KindMalformed,
			wantMsg:  "decode",
		},
		{
			name:     "no candidates",
			status:   http.StatusOK,
			body:     `{"candidates": []}`,
			wantKind: llm.KindEmpty,
			wantMsg:  "empty response",
		},
		{
			name:     "blocked prompt",
			status:   http.StatusOK,
			body:     `{"promptFeedback": {"blockReason": "SAFETY"}}`,
			wantKind: llm.KindEmpty,
			wantMsg:  "SAFETY",
		},
		{
			name:     "candidate without text",
			status:   http.StatusOK,
			body:     `{"candidates": [{"content": {"parts": []}, "finishReason": "MAX_TOKENS"}]}`,
			wantKind: llm.KindEmpty,
			wantMsg:  "MAX_TOKENS",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv, _ := newUpstream(t, tc.status, tc.body)
			p := llm.NewGeminiProvider("k", "gemini-1.5-flash", llm.WithBaseURL(srv.URL))

			out, err := p.Generate(context.Background(), "x")
			require.Error(t, err)
			assert.Empty(t, out)

			var le *llm.Error
			require.True(t, errors.As(err, &le))
			assert.Equal(t, tc.wantKind, le.Kind)
			assert.Equal(t, "gemini", le.Provider)
			assert.Contains(t, err.Error(), tc.wantMsg)
		})
	}
}

func TestGemini_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	p := llm.NewGeminiProvider("k", "gemini-1.5-flash", llm.WithBaseURL(url))
	_, err := p.Generate(context.Background(), "x")
	require.Error(t, err)
	assert.Equal(t, llm.KindNetwork, llm.KindOf(err))
}

func TestGemini_CancelledContext(t *testing.T) {
	srv, _ := newUpstream(t, http.StatusOK, `{}`)
	p := llm.NewGeminiProvider("k", "gemini-1.5-flash", llm.WithBaseURL(srv.URL))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Generate(ctx, "x")
	require.Error(t, err)
	assert.Equal(t, llm.KindNetwork, llm.KindOf(err))
	assert.ErrorIs(t, err, context.Canceled)
}
