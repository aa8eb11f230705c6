// relay is the public-facing HTTP service of CodeGenius.
// It accepts code-generation and code-review requests from the frontend,
// renders the instruction prompt, makes exactly one upstream LLM call,
// and returns the generated text as JSON.
// Each finished request is also announced on the /ws activity feed and,
// when AMQP_URL is set, on the codegenius.events RabbitMQ exchange.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/codegenius-ai/codegenius/services/relay/internal"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Version is set via -ldflags at build time.
var Version = "dev"

var (
	envFile string
	host    string
	port    string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "codegenius",
	Short: "HTTP relay for LLM code generation and code review",
	Long: `codegenius serves POST /api/generate and POST /api/review. Each request
is turned into a single prompt for the configured upstream model (Gemini by
default) and the generated text is returned as JSON.

The upstream credential is read from the environment or from a .env file.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runServe,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintln(cmd.OutOrStdout(), "codegenius", Version)
	},
}

func init() {
	rootCmd.Flags().StringVar(&envFile, "env-file", ".env", "dotenv file to load before reading the environment")
	rootCmd.Flags().StringVar(&host, "host", "", "bind address (overrides HOST)")
	rootCmd.Flags().StringVarP(&port, "port", "p", "", "listen port (overrides PORT)")
	rootCmd.Flags().BoolVar(&debug, "debug", false, "enable debug logging (overrides DEBUG)")

	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	if err := godotenv.Load(envFile); err != nil && cmd.Flags().Changed("env-file") {
		return fmt.Errorf("load %s: %w", envFile, err)
	}

	cfg := internal.ConfigFromEnv()
	cfg.Version = Version
	applyFlags(cmd.Flags(), &cfg)
	setupLogger(os.Stderr, cfg)

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("configuration error: refusing to start")
	}

	provider, err := internal.NewProvider(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create LLM provider")
	}

	rl, err := internal.NewRelay(cfg, provider)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to start relay")
	}
	defer rl.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigs
		log.Info().Msg("shutdown signal: stopping relay")
		cancel()
	}()

	log.Info().
		Str("provider", provider.Name()).
		Str("model", provider.Model()).
		Str("addr", cfg.Addr()).
		Bool("amqp", cfg.AMQPURL != "").
		Str("version", Version).
		Msg("codegenius relay online")

	if err := rl.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("relay exited: %w", err)
	}
	return nil
}

// applyFlags lets explicitly set command-line flags override the environment.
func applyFlags(fs *pflag.FlagSet, cfg *internal.Config) {
	if fs.Changed("host") {
		cfg.Host = host
	}
	if fs.Changed("port") {
		cfg.Port = port
	}
	if fs.Changed("debug") {
		cfg.Debug = debug
	}
}

func setupLogger(w io.Writer, cfg internal.Config) {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if cfg.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	if cfg.LogFormat == "json" {
		log.Logger = zerolog.New(w).With().Timestamp().Logger()
		return
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly})
}
