package internal

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
)

const (
	ProviderGemini     = "gemini"
	ProviderAnthropic  = "anthropic"
	ProviderOpenRouter = "openrouter"
	ProviderOllama     = "ollama"
)

// providerEnv names the credential and model variables for each provider.
var providerEnv = map[string]struct {
	keyVar       string
	modelVar     string
	defaultModel string
}{
	ProviderGemini:     {"GEMINI_API_KEY", "GEMINI_MODEL", "gemini-1.5-flash"},
	ProviderAnthropic:  {"ANTHROPIC_API_KEY", "ANTHROPIC_MODEL", "claude-sonnet-4-5-20250929"},
	ProviderOpenRouter: {"OPENROUTER_API_KEY", "OPENROUTER_MODEL", "anthropic/claude-sonnet-4.5"},
	ProviderOllama:     {"", "OLLAMA_MODEL", "llama3"},
}

type Config struct {
	Provider        string
	APIKey          string
	Model           string
	UpstreamURL     string
	OllamaHost      string
	Host            string
	Port            string
	MaxBodyBytes    int64
	StripCodeFences bool
	AMQPURL         string
	LogFormat       string
	Debug           bool
	Version         string
}

func ConfigFromEnv() Config {
	provider := strings.ToLower(strings.TrimSpace(env("LLM_PROVIDER", ProviderGemini)))
	cfg := Config{
		Provider:        provider,
		UpstreamURL:     env("LLM_BASE_URL", ""),
		OllamaHost:      env("OLLAMA_HOST", "http://localhost:11434"),
		Host:            env("HOST", "0.0.0.0"),
		Port:            env("PORT", env("FLASK_RUN_PORT", "5001")),
		MaxBodyBytes:    int64(envInt("MAX_BODY_BYTES", 1<<20)),
		StripCodeFences: envBool("STRIP_CODE_FENCES"),
		AMQPURL:         env("AMQP_URL", ""),
		LogFormat:       env("LOG_FORMAT", "console"),
		Debug:           envBool("DEBUG"),
		Version:         "dev",
	}
	if pe, ok := providerEnv[provider]; ok {
		if pe.keyVar != "" {
			cfg.APIKey = strings.TrimSpace(os.Getenv(pe.keyVar))
		}
		cfg.Model = env("LLM_MODEL", env(pe.modelVar, pe.defaultModel))
	}
	return cfg
}

// Validate reports configuration the relay cannot start with.
func (c Config) Validate() error {
	pe, ok := providerEnv[c.Provider]
	if !ok {
		return fmt.Errorf("unknown LLM_PROVIDER %q (want gemini, anthropic, openrouter or ollama)", c.Provider)
	}
	if pe.keyVar != "" && c.APIKey == "" {
		return fmt.Errorf("%s is not set: export it or add %s=\"YOUR_API_KEY\" to .env", pe.keyVar, pe.keyVar)
	}
	if c.Model == "" {
		return fmt.Errorf("no model configured for provider %s", c.Provider)
	}
	if n, err := strconv.Atoi(c.Port); err != nil || n < 1 || n > 65535 {
		return fmt.Errorf("invalid port %q", c.Port)
	}
	if c.MaxBodyBytes <= 0 {
		return fmt.Errorf("MAX_BODY_BYTES must be positive")
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func envInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		n, _ := strconv.Atoi(v)
		if n > 0 {
			return n
		}
	}
	return def
}

func envBool(k string) bool {
	b, _ := strconv.ParseBool(os.Getenv(k))
	return b
}
