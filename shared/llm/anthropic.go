package llm

import (
	"context"
	"errors"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// defaultMaxTokens is the output budget for a single completion.
const defaultMaxTokens = 8192

// AnthropicProvider implements Provider using the official Anthropic SDK.
type AnthropicProvider struct {
	client anthropic.Client
	model  string
}

var _ Provider = (*AnthropicProvider)(nil)

// NewAnthropicProvider creates a new Anthropic provider instance. The SDK's
// automatic retries are disabled so one call is one upstream request.
func NewAnthropicProvider(apiKey, model string, opts ...Option) *AnthropicProvider {
	o := buildOptions("", opts)

	clientOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
		option.WithHTTPClient(o.client),
	}
	if o.baseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(o.baseURL))
	}

	return &AnthropicProvider{
		client: anthropic.NewClient(clientOpts...),
		model:  model,
	}
}

func (ap *AnthropicProvider) Name() string  { return "anthropic" }
func (ap *AnthropicProvider) Model() string { return ap.model }

// Generate calls the Messages API and concatenates the returned text blocks.
func (ap *AnthropicProvider) Generate(ctx context.Context, prompt string) (string, error) {
	msg, err := ap.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(ap.model),
		MaxTokens: defaultMaxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			return "", &Error{
				Provider:   ap.Name(),
				Kind:       KindStatus,
				StatusCode: apiErr.StatusCode,
				Message:    "messages request failed",
				Err:        err,
			}
		}
		return "", newError(ap.Name(), KindNetwork, "request", err)
	}

	var sb strings.Builder
	for _, block := range msg.Content {
		if variant, ok := block.AsAny().(anthropic.TextBlock); ok {
			sb.WriteString(variant.Text)
		}
	}
	if sb.Len() == 0 {
		return "", newError(ap.Name(), KindEmpty, "empty response", nil)
	}
	return sb.String(), nil
}
