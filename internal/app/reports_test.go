package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerbook/ledgerbook/internal/accounting/reports"
)

func TestLoadStatementsFallsBackToEmbeddedCatalogue(t *testing.T) {
	statements, err := LoadStatements(&Config{}, nil)
	require.NoError(t, err)
	for _, rt := range reports.ReportTypes {
		_, err := statements.Variant(rt)
		assert.NoError(t, err, rt)
	}
}

func TestLoadStatementsReadsConfiguredPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "statements.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"fiscalYearStartMonth": 4}`), 0o600))

	_, err := LoadStatements(&Config{ReportConfigPath: path}, nil)
	assert.ErrorIs(t, err, reports.ErrInvalidConfig)

	_, err = LoadStatements(&Config{ReportConfigPath: filepath.Join(t.TempDir(), "missing.json")}, nil)
	assert.Error(t, err)
}

func TestNewReportServiceWiresCache(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	statements, err := LoadStatements(nil, nil)
	require.NoError(t, err)

	cached := NewReportService(ReportServiceParams{
		Config:     &Config{ReportCacheTTL: time.Minute, RedisAddr: mr.Addr(), ReportFetchConcurrency: 2},
		Statements: statements,
		Redis:      client,
		Registerer: prometheus.NewRegistry(),
	})
	ver, err := cached.Invalidate(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 1, ver)

	uncached := NewReportService(ReportServiceParams{
		Config:     &Config{},
		Statements: statements,
		Redis:      client,
		Registerer: prometheus.NewRegistry(),
	})
	ver, err = uncached.Invalidate(context.Background())
	require.NoError(t, err)
	assert.Zero(t, ver)
}
