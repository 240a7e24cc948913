package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{
		"BATCH_SIZE", "RETRY_ATTEMPTS", "RETRY_DELAY_MS",
		"RATE_LIMIT_DELAY_MS", "MIN_REQUEST_INTERVAL_MS", "BATCH_PAUSE_MS",
	} {
		t.Setenv(k, "")
	}
	cfg := Load()
	require.Equal(t, 5, cfg.BatchSize)
	require.Equal(t, 3, cfg.RetryAttempts)
	require.Equal(t, 2*time.Second, cfg.RetryDelay)
	require.Equal(t, 5*time.Second, cfg.RateLimitDelay)
	require.Equal(t, time.Second, cfg.MinRequestSpacing)
	require.Equal(t, 3*time.Second, cfg.BatchPause)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("RETRY_ATTEMPTS", "5")
	t.Setenv("RATE_LIMIT_DELAY_MS", "1500")
	cfg := Load()
	require.Equal(t, 5, cfg.RetryAttempts)
	require.Equal(t, 1500*time.Millisecond, cfg.RateLimitDelay)
}

func TestLoadInstruments(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	body := `{"stocks": ["petr4", " VALE3 ", ""], "fiis": ["hglg11"]}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	ins, err := LoadInstruments(path)
	require.NoError(t, err)
	require.Equal(t, []string{"PETR4", "VALE3"}, ins.Stocks)
	require.Equal(t, []string{"HGLG11"}, ins.FIIs)
}

func TestLoadInstruments_MissingFile(t *testing.T) {
	_, err := LoadInstruments(filepath.Join(t.TempDir(), "absent.json"))
	require.Error(t, err)
}
