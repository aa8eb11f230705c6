package llm_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/codegenius-ai/codegenius/shared/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnthropic_Success(t *testing.T) {
	srv, c := newUpstream(t, http.StatusOK, `{
		"id": "msg_test",
		"type": "message",
		"role": "assistant",
		"model": "claude-sonnet-4-5-20250929",
		"content": [{"type": "text", "text": "fn main() {}"}],
		"stop_reason": "end_turn",
		"usage": {"input_tokens": 10, "output_tokens": 5}
	}`)

	p := llm.NewAnthropicProvider("test-key", "claude-sonnet-4-5-20250929", llm.WithBaseURL(srv.URL))
	out, err := p.Generate(context.Background(), "hello")
	require.NoError(t, err)

	assert.Equal(t, "fn main() {}", out)
	assert.Equal(t, "/v1/messages", c.path)
	assert.Equal(t, "test-key", c.header.Get("X-Api-Key"))
	assert.Equal(t, "claude-sonnet-4-5-20250929", c.body["model"])
	assert.Equal(t, float64(8192), c.body["max_tokens"])
}

func TestAnthropic_StatusErrorIsNotRetried(t *testing.T) {
	srv, c := newUpstream(t, http.StatusTooManyRequests, `{"type": "error", "error": {"type": "rate_limit_error", "message": "slow down"}}`)

	p := llm.NewAnthropicProvider("test-key", "claude-sonnet-4-5-20250929", llm.WithBaseURL(srv.URL))
	_, err := p.Generate(context.Background(), "hello")
	require.Error(t, err)

	assert.Equal(t, llm.KindStatus, llm.KindOf(err))
	assert.Equal(t, 1, c.calls)
}

func TestAnthropic_EmptyContent(t *testing.T) {
	srv, _ := newUpstream(t, http.StatusOK, `{
		"id": "msg_test",
		"type": "message",
		"role": "assistant",
		"model": "claude-sonnet-4-5-20250929",
		"content": [],
		"usage": {"input_tokens": 1, "output_tokens": 0}
	}`)

	p := llm.NewAnthropicProvider("test-key", "claude-sonnet-4-5-20250929", llm.WithBaseURL(srv.URL))
	_, err := p.Generate(context.Background(), "hello")
	require.Error(t, err)
	assert.Equal(t, llm.KindEmpty, llm.KindOf(err))
}
