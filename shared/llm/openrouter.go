package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
)

const openrouterURL = "https://openrouter.ai/api/v1"

// OpenRouterProvider implements the Provider interface for OpenRouter's API.
// OpenRouter uses the OpenAI chat completions format.
type OpenRouterProvider struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

// NewOpenRouterProvider creates a new OpenRouter provider instance.
func NewOpenRouterProvider(apiKey, model string, opts ...Option) *OpenRouterProvider {
	o := buildOptions(openrouterURL, opts)
	return &OpenRouterProvider{
		apiKey:  apiKey,
		model:   model,
		baseURL: strings.TrimRight(o.baseURL, "/"),
		client:  o.client,
	}
}

func (or *OpenRouterProvider) Name() string  { return "openrouter" }
func (or *OpenRouterProvider) Model() string { return or.model }

// Generate sends prompt as a single user message.
func (or *OpenRouterProvider) Generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(map[string]any{
		"model": or.model,
		"messages": []map[string]string{
			{"role": "user", "content": prompt},
		},
	})
	if err != nil {
		return "", newError(or.Name(), KindMalformed, "encode request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, or.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", newError(or.Name(), KindNetwork, "build request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+or.apiKey)

	resp, err := or.client.Do(req)
	if err != nil {
		return "", newError(or.Name(), KindNetwork, "request", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", newError(or.Name(), KindNetwork, "read response", err)
	}

	var response struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	decodeErr := json.Unmarshal(raw, &response)

	if resp.StatusCode >= 300 {
		if decodeErr == nil && response.Error != nil {
			return "", statusError(or.Name(), resp.StatusCode, response.Error.Message)
		}
		return "", statusError(or.Name(), resp.StatusCode, snippet(raw))
	}
	if decodeErr != nil {
		return "", newError(or.Name(), KindMalformed, "decode", decodeErr)
	}
	if response.Error != nil {
		return "", newError(or.Name(), KindUpstream, response.Error.Message, nil)
	}
	if len(response.Choices) == 0 || response.Choices[0].Message.Content == "" {
		return "", newError(or.Name(), KindEmpty, "empty response", nil)
	}

	return response.Choices[0].Message.Content, nil
}
