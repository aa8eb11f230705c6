package internal

import (
	"context"
	"fmt"

	"github.com/codegenius-ai/codegenius/shared/events"
	"github.com/codegenius-ai/codegenius/shared/llm"
	"github.com/codegenius-ai/codegenius/shared/mq"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// eventSink receives wrapped activity envelopes.
type eventSink interface {
	Publish(ctx context.Context, routingKey string, body []byte) error
}

// Relay serves the API. Everything it holds is built once at startup and only
// read afterwards, so handlers share it across goroutines without locking.
type Relay struct {
	cfg      Config
	provider llm.Provider
	hub      *Hub       // WebSocket activity feed
	broker   *mq.Broker // nil unless AMQP_URL is set
	sinks    []eventSink
}

func NewRelay(cfg Config, provider llm.Provider) (*Relay, error) {
	rl := &Relay{
		cfg:      cfg,
		provider: provider,
		hub:      NewHub(),
	}
	rl.sinks = append(rl.sinks, rl.hub)

	if cfg.AMQPURL != "" {
		broker, err := mq.New(cfg.AMQPURL)
		if err != nil {
			return nil, fmt.Errorf("mq connect: %w", err)
		}
		rl.broker = broker
		rl.sinks = append(rl.sinks, broker)
	}
	return rl, nil
}

// NewProvider builds the upstream client selected by cfg.Provider.
func NewProvider(cfg Config) (llm.Provider, error) {
	var opts []llm.Option
	if cfg.UpstreamURL != "" {
		opts = append(opts, llm.WithBaseURL(cfg.UpstreamURL))
	}

	switch cfg.Provider {
	case ProviderGemini:
		return llm.NewGeminiProvider(cfg.APIKey, cfg.Model, opts...), nil
	case ProviderAnthropic:
		return llm.NewAnthropicProvider(cfg.APIKey, cfg.Model, opts...), nil
	case ProviderOpenRouter:
		return llm.NewOpenRouterProvider(cfg.APIKey, cfg.Model, opts...), nil
	case ProviderOllama:
		p, err := llm.NewOllamaProvider(cfg.OllamaHost, cfg.Model)
		if err != nil {
			return nil, err
		}
		return p, nil
	}
	return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
}

func (rl *Relay) Close() {
	if rl.broker != nil {
		rl.broker.Close()
	}
}

// Run serves HTTP and the activity hub until ctx is cancelled.
func (rl *Relay) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error { return rl.hub.Run(ctx) })
	g.Go(func() error { return rl.serveAPI(ctx) })

	return g.Wait()
}

// emit sends one activity envelope to every sink. Sink failures are logged
// and never reach the HTTP response.
func (rl *Relay) emit(ctx context.Context, routingKey string, p events.ActivityPayload) {
	b, err := events.Wrap(routingKey, p)
	if err != nil {
		log.Error().Err(err).Str("key", routingKey).Msg("wrap activity")
		return
	}
	ctx = context.WithoutCancel(ctx)
	for _, s := range rl.sinks {
		if err := s.Publish(ctx, routingKey, b); err != nil {
			log.Warn().Err(err).Str("key", routingKey).Msg("activity publish failed")
		}
	}
}
