// Package config provides configuration management for overlap-go.
package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"go.opentelemetry.io/otel/sdk/trace"

	"github.com/braintrustdata/overlap-go/logger"
)

// Config holds immutable configuration for an evaluation run.
type Config struct {
	// Scoring policy
	Parallelism   int
	ROUGEStem     bool
	BLEUStem      bool
	BLEUSmoothing string

	// Output
	DBPath string
	Quiet  bool

	// Tracing configuration
	TraceConsole bool
	OTLPEndpoint string
	Exporter     trace.SpanExporter

	// Logger
	Logger logger.Logger
}

// FromEnv loads configuration from environment variables with defaults.
//
// Supported environment variables:
//   - OVERLAP_PARALLELISM: number of scoring workers (default: 1)
//   - OVERLAP_ROUGE_STEM: Porter-stem tokens for ROUGE (default: true)
//   - OVERLAP_BLEU_STEM: Porter-stem tokens for BLEU (default: false)
//   - OVERLAP_BLEU_SMOOTHING: none, epsilon or add-one (default: "none")
//   - OVERLAP_DB_PATH: SQLite file to archive runs in (default: "", disabled)
//   - OVERLAP_QUIET: suppress the printed summary (default: false)
//   - OVERLAP_TRACE_CONSOLE: pretty-print spans to stdout (default: false)
//   - OVERLAP_OTLP_ENDPOINT: OTLP/HTTP collector host:port (default: "", disabled)
func FromEnv() *Config {
	return &Config{
		Parallelism:   getEnvInt("OVERLAP_PARALLELISM", 1),
		ROUGEStem:     getEnvBool("OVERLAP_ROUGE_STEM", true),
		BLEUStem:      getEnvBool("OVERLAP_BLEU_STEM", false),
		BLEUSmoothing: getEnvString("OVERLAP_BLEU_SMOOTHING", "none"),
		DBPath:        getEnvString("OVERLAP_DB_PATH", ""),
		Quiet:         getEnvBool("OVERLAP_QUIET", false),
		TraceConsole:  getEnvBool("OVERLAP_TRACE_CONSOLE", false),
		OTLPEndpoint:  getEnvString("OVERLAP_OTLP_ENDPOINT", ""),
	}
}

// LoadDotEnv loads variables from .env files into the process environment
// without overriding variables that are already set. With no paths it reads
// ".env" in the working directory. Missing files are ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return nil
}

// getEnvString returns the trimmed environment variable value or the default
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return strings.TrimSpace(value)
	}
	return defaultValue
}

// getEnvBool returns the environment variable as a bool or the default
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return strings.ToLower(strings.TrimSpace(value)) == "true"
	}
	return defaultValue
}

// getEnvInt returns the environment variable as an int or the default when
// unset or unparseable
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			return n
		}
	}
	return defaultValue
}
