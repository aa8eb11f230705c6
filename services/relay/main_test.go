package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/codegenius-ai/codegenius/services/relay/internal"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.StringVar(&host, "host", "", "")
	fs.StringVarP(&port, "port", "p", "", "")
	fs.BoolVar(&debug, "debug", false, "")
	require.NoError(t, fs.Parse(args))
	return fs
}

func TestApplyFlags_OverridesEnv(t *testing.T) {
	cfg := internal.Config{Host: "0.0.0.0", Port: "5001"}
	applyFlags(testFlags(t, "--host", "127.0.0.1", "-p", "9000", "--debug"), &cfg)

	assert.Equal(t, "127.0.0.1", cfg.Host)
	assert.Equal(t, "9000", cfg.Port)
	assert.True(t, cfg.Debug)
}

func TestApplyFlags_UnsetFlagsKeepEnv(t *testing.T) {
	cfg := internal.Config{Host: "0.0.0.0", Port: "5001", Debug: true}
	applyFlags(testFlags(t), &cfg)

	assert.Equal(t, "0.0.0.0", cfg.Host)
	assert.Equal(t, "5001", cfg.Port)
	assert.True(t, cfg.Debug)
}

func TestSetupLogger_JSON(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)

	var buf bytes.Buffer
	setupLogger(&buf, internal.Config{LogFormat: "json"})
	log.Info().Str("k", "v").Msg("hello")
	log.Debug().Msg("hidden")

	var line map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line))
	assert.Equal(t, "info", line["level"])
	assert.Equal(t, "hello", line["message"])
	assert.Equal(t, "v", line["k"])
}

func TestSetupLogger_Debug(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)

	var buf bytes.Buffer
	setupLogger(&buf, internal.Config{LogFormat: "console", Debug: true})
	log.Debug().Msg("visible")

	assert.Contains(t, buf.String(), "visible")
}

func TestVersionCommand(t *testing.T) {
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetArgs([]string{"version"})
	defer rootCmd.SetArgs(nil)

	require.NoError(t, rootCmd.Execute())
	assert.Equal(t, "codegenius dev\n", buf.String())
}
