package llm

import (
	"context"
	"fmt"
	"net/url"

	"github.com/JexSrs/go-ollama"
)

// OllamaProvider implements Provider against a local Ollama server.
type OllamaProvider struct {
	client *ollama.Ollama
	host   string
	model  string
}

// NewOllamaProvider creates a client for the Ollama server at host.
func NewOllamaProvider(host, model string) (*OllamaProvider, error) {
	u, err := url.Parse(host)
	if err != nil {
		return nil, fmt.Errorf("invalid ollama host %q: %w", host, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid ollama host %q: scheme and host are required", host)
	}
	return &OllamaProvider{
		client: ollama.New(*u),
		host:   host,
		model:  model,
	}, nil
}

func (op *OllamaProvider) Name() string  { return "ollama" }
func (op *OllamaProvider) Model() string { return op.model }

// Generate runs a single non-streaming generate call. The client library
// takes no context, so cancellation is only honoured before the call starts.
func (op *OllamaProvider) Generate(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", newError(op.Name(), KindNetwork, "request", err)
	}

	res, err := op.client.Generate(
		op.client.Generate.WithModel(op.model),
		op.client.Generate.WithPrompt(prompt),
	)
	if err != nil {
		return "", newError(op.Name(), KindNetwork, "generate", err)
	}
	if !res.Done {
		return "", newError(op.Name(), KindMalformed, "response not marked done", nil)
	}
	if res.Response == "" {
		return "", newError(op.Name(), KindEmpty, "empty response", nil)
	}
	return res.Response, nil
}
