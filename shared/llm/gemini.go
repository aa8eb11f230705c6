package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

const geminiURL = "https://generativelanguage.googleapis.com/v1beta"

// GeminiProvider implements the Provider interface for Google's Gemini API.
type GeminiProvider struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

// NewGeminiProvider creates a new Gemini provider instance.
func NewGeminiProvider(apiKey, model string, opts ...Option) *GeminiProvider {
	o := buildOptions(geminiURL, opts)
	return &GeminiProvider{
		apiKey:  apiKey,
		model:   model,
		baseURL: strings.TrimRight(o.baseURL, "/"),
		client:  o.client,
	}
}

func (gp *GeminiProvider) Name() string  { return "gemini" }
func (gp *GeminiProvider) Model() string { return gp.model }

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

// Generate calls models/{model}:generateContent and joins the text parts of
// the first candidate.
func (gp *GeminiProvider) Generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(map[string]any{
		"contents": []geminiContent{{Role: "user", Parts: []geminiPart{{Text: prompt}}}},
	})
	if err != nil {
		return "", newError(gp.Name(), KindMalformed, "encode request", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent", gp.baseURL, url.PathEscape(gp.model))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", newError(gp.Name(), KindNetwork, "build request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", gp.apiKey)

	resp, err := gp.client.Do(req)
	if err != nil {
		return "", newError(gp.Name(), KindNetwork, "request", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", newError(gp.Name(), KindNetwork, "read response", err)
	}

	var gr struct {
		Candidates []struct {
			Content      geminiContent `json:"content"`
			FinishReason string        `json:"finishReason"`
		} `json:"candidates"`
		PromptFeedback *struct {
			BlockReason string `json:"blockReason"`
		} `json:"promptFeedback"`
		Error *struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
			Status  string `json:"status"`
		} `json:"error"`
	}
	decodeErr := json.Unmarshal(raw, &gr)

	if resp.StatusCode >= 300 {
		if decodeErr == nil && gr.Error != nil {
			return "", statusError(gp.Name(), resp.StatusCode, gr.Error.Message)
		}
		return "", statusError(gp.Name(), resp.StatusCode, snippet(raw))
	}
	if decodeErr != nil {
		return "", newError(gp.Name(), KindMalformed, "decode", decodeErr)
	}
	if gr.Error != nil {
		return "", newError(gp.Name(), KindUpstream, gr.Error.Message, nil)
	}
	if len(gr.Candidates) == 0 {
		if gr.PromptFeedback != nil && gr.PromptFeedback.BlockReason != "" {
			return "", newError(gp.Name(), KindEmpty, "prompt blocked: "+gr.PromptFeedback.BlockReason, nil)
		}
		return "", newError(gp.Name(), KindEmpty, "empty response", nil)
	}

	var sb strings.Builder
	for _, p := range gr.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	if sb.Len() == 0 {
		msg := "empty response"
		if fr := gr.Candidates[0].FinishReason; fr != "" {
			msg += " (finish reason " + fr + ")"
		}
		return "", newError(gp.Name(), KindEmpty, msg, nil)
	}
	return sb.String(), nil
}
