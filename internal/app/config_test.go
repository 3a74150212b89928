package app

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "github.com/ledgerbook/ledgerbook/internal/testing/guard"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.AppAddr)
	assert.Equal(t, 10*time.Minute, cfg.ReportCacheTTL)
	assert.Equal(t, 4, cfg.ReportFetchConcurrency)
	assert.Equal(t, "0 * * * *", cfg.ReportWarmupCron)
	assert.Empty(t, cfg.ReportWarmupBooks)
	assert.False(t, cfg.IsProduction())
	assert.True(t, cfg.ReportCacheEnabled())
}

func TestLoadConfigFromEnvironment(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("REPORT_CACHE_TTL", "0s")
	t.Setenv("REPORT_FETCH_CONCURRENCY", "8")
	t.Setenv("REPORT_WARMUP_BOOKS", "acme,globex")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
	assert.False(t, cfg.ReportCacheEnabled())
	assert.Equal(t, 8, cfg.ReportFetchConcurrency)
	assert.Equal(t, []string{"acme", "globex"}, cfg.ReportWarmupBooks)
}

func TestLoadConfigRejectsBadValues(t *testing.T) {
	t.Setenv("REPORT_FETCH_CONCURRENCY", "0")
	_, err := LoadConfig()
	assert.Error(t, err)

	t.Setenv("REPORT_FETCH_CONCURRENCY", "4")
	t.Setenv("REPORT_CACHE_TTL", "soon")
	_, err = LoadConfig()
	assert.Error(t, err)
}

func TestNewLoggerHonoursFormatAndLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, &Config{LogFormat: "json", LogLevel: "warn"})
	logger.Info("hidden")
	logger.Warn("shown", slog.String("book", "acme"))

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"msg":"shown"`)
	assert.Contains(t, out, `"book":"acme"`)

	buf.Reset()
	newLogger(&buf, nil).Info("plain")
	assert.Contains(t, buf.String(), "msg=plain")
}
