// Package llm wraps the upstream text-generation services the relay can talk to.
// Every provider turns one prompt into one completion, with no retries, and
// reports failures as *Error so callers can tell what went wrong upstream.
package llm

import (
	"context"
	"net/http"
)

// Provider is an abstraction for different LLM API providers.
// Implementations hold no per-call state and are safe for concurrent use.
type Provider interface {
	// Generate sends prompt upstream and returns the generated text.
	// A non-nil error is always an *Error.
	Generate(ctx context.Context, prompt string) (string, error)

	// Name is the short provider identifier, e.g. "gemini".
	Name() string

	// Model is the upstream model identifier requests are sent to.
	Model() string
}

// Option configures the HTTP-based providers.
type Option func(*options)

type options struct {
	baseURL string
	client  *http.Client
}

// WithBaseURL points the provider at a different API root.
func WithBaseURL(u string) Option {
	return func(o *options) {
		o.baseURL = u
	}
}

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		o.client = c
	}
}

func buildOptions(defaultBaseURL string, opts []Option) options {
	o := options{baseURL: defaultBaseURL, client: &http.Client{}}
	for _, fn := range opts {
		fn(&o)
	}
	if o.client == nil {
		o.client = &http.Client{}
	}
	return o
}
