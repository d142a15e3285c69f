package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allVars = []string{
	"OVERLAP_PARALLELISM",
	"OVERLAP_ROUGE_STEM",
	"OVERLAP_BLEU_STEM",
	"OVERLAP_BLEU_SMOOTHING",
	"OVERLAP_DB_PATH",
	"OVERLAP_QUIET",
	"OVERLAP_TRACE_CONSOLE",
	"OVERLAP_OTLP_ENDPOINT",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range allVars {
		t.Setenv(k, "")
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	clearEnv(t)

	cfg := FromEnv()

	assert.Equal(t, 1, cfg.Parallelism)
	assert.True(t, cfg.ROUGEStem)
	assert.False(t, cfg.BLEUStem)
	assert.Equal(t, "none", cfg.BLEUSmoothing)
	assert.Equal(t, "", cfg.DBPath)
	assert.False(t, cfg.Quiet)
	assert.False(t, cfg.TraceConsole)
	assert.Equal(t, "", cfg.OTLPEndpoint)
	assert.Nil(t, cfg.Logger)
}

func TestFromEnv_LoadsEnvironmentVariables(t *testing.T) {
	t.Setenv("OVERLAP_PARALLELISM", "8")
	t.Setenv("OVERLAP_ROUGE_STEM", "false")
	t.Setenv("OVERLAP_BLEU_STEM", "true")
	t.Setenv("OVERLAP_BLEU_SMOOTHING", "epsilon")
	t.Setenv("OVERLAP_DB_PATH", "/tmp/runs.db")
	t.Setenv("OVERLAP_QUIET", "true")
	t.Setenv("OVERLAP_TRACE_CONSOLE", "true")
	t.Setenv("OVERLAP_OTLP_ENDPOINT", "localhost:4318")

	cfg := FromEnv()

	assert.Equal(t, 8, cfg.Parallelism)
	assert.False(t, cfg.ROUGEStem)
	assert.True(t, cfg.BLEUStem)
	assert.Equal(t, "epsilon", cfg.BLEUSmoothing)
	assert.Equal(t, "/tmp/runs.db", cfg.DBPath)
	assert.True(t, cfg.Quiet)
	assert.True(t, cfg.TraceConsole)
	assert.Equal(t, "localhost:4318", cfg.OTLPEndpoint)
}

func TestFromEnv_TrimsWhitespace(t *testing.T) {
	clearEnv(t)
	t.Setenv("OVERLAP_BLEU_SMOOTHING", "  add-one ")
	t.Setenv("OVERLAP_PARALLELISM", " 4\t")

	cfg := FromEnv()

	assert.Equal(t, "add-one", cfg.BLEUSmoothing)
	assert.Equal(t, 4, cfg.Parallelism)
}

func TestFromEnv_BooleanParsing(t *testing.T) {
	tests := []struct {
		name     string
		envValue string
		expected bool
	}{
		{"true lowercase", "true", true},
		{"TRUE uppercase", "TRUE", true},
		{"True mixed case", "True", true},
		{"false lowercase", "false", false},
		{"empty string", "", false},
		{"random string", "yes", false},
		{"1", "1", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("OVERLAP_QUIET", tt.envValue)
			cfg := FromEnv()
			assert.Equal(t, tt.expected, cfg.Quiet)
		})
	}
}

func TestFromEnv_BadIntFallsBackToDefault(t *testing.T) {
	t.Setenv("OVERLAP_PARALLELISM", "lots")

	cfg := FromEnv()

	assert.Equal(t, 1, cfg.Parallelism)
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("OVERLAP_QUIET", "false")
	// godotenv treats set-but-empty as present, so unset it; t.Setenv restores it
	require.NoError(t, os.Unsetenv("OVERLAP_PARALLELISM"))

	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	err := os.WriteFile(path, []byte("OVERLAP_PARALLELISM=6\nOVERLAP_QUIET=true\n"), 0o600)
	require.NoError(t, err)

	require.NoError(t, LoadDotEnv(path, filepath.Join(dir, "missing.env")))

	cfg := FromEnv()
	assert.Equal(t, 6, cfg.Parallelism)
	// already set variables are not overridden
	assert.False(t, cfg.Quiet)
}
