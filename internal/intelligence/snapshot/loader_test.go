package snapshot

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"mlengine/internal/intelligence/memorystore"
	"mlengine/pkg/storage/parquet"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func ptr[T any](v T) *T { return &v }

type stubSource struct {
	universe    []memorystore.Entity
	history     []memorystore.HistoryPoint
	universeErr error
	historyErr  error
}

func (s *stubSource) Universe(context.Context) ([]memorystore.Entity, error) {
	return s.universe, s.universeErr
}

func (s *stubSource) History(context.Context) ([]memorystore.HistoryPoint, error) {
	return s.history, s.historyErr
}

func (s *stubSource) Describe(table string) string { return "stub:" + table }

func writeFixtures(t *testing.T, dir string) *ParquetSource {
	t.Helper()

	src := &ParquetSource{
		UniversePath: filepath.Join(dir, "companies_universe.parquet"),
		HistoryPath:  filepath.Join(dir, "market_history.parquet"),
	}

	require.NoError(t, parquet.WriteUniverse(src.UniversePath, []parquet.UniverseRow{
		{
			ID: ptr("a1"), Ticker: ptr("QWER"), Name: ptr("Qwer Holdings"), Sector: ptr("Technology"),
			MarketCapBn: ptr(12.5), BaseESGScore: ptr(int64(70)), AIPredictedDrift: ptr(int64(68)),
			CarbonIntensity: ptr(101.2), LastAuditDate: ptr(int32(19737)), AnomalyFlag: ptr(true),
		},
		{Ticker: ptr("ZXCV"), Sector: ptr("Utilities"), AnomalyFlag: ptr(false)},
	}))

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, parquet.WriteHistory(src.HistoryPath, []parquet.HistoryRow{
		{Ticker: ptr("QWER"), Date: ptr(base.AddDate(0, 0, 1).UnixNano()), HistoricalESGScore: ptr(int64(61)), DailyReturn: ptr(0.01)},
		{Ticker: ptr("QWER"), Date: ptr(base.UnixNano()), HistoricalESGScore: ptr(int64(60)), DailyReturn: ptr(-0.02)},
	}))

	return src
}

// go test -v --run TestHydrateFromParquet
func TestHydrateFromParquet(t *testing.T) {
	src := writeFixtures(t, t.TempDir())
	loader := &Loader{Source: src, Logger: zap.NewNop()}

	snap, report, err := loader.Hydrate(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, report.UniverseRows)
	assert.Equal(t, 2, report.HistoryRows)
	assert.False(t, report.UniverseMissing)
	assert.False(t, report.HistoryMissing)

	e, ok := snap.Universe.Lookup("qwer")
	require.True(t, ok)
	assert.Equal(t, "a1", e.ID)
	assert.Equal(t, 68, e.AIAdjustedScore)
	assert.True(t, e.AnomalyFlag)
	assert.Equal(t, "2024-01-15", e.LastAuditDate.Format("2006-01-02"))

	// blank ids are derived from the ticker
	z, ok := snap.Universe.Lookup("ZXCV")
	require.True(t, ok)
	assert.NotEmpty(t, z.ID)
	assert.Equal(t, entityID("", "zxcv"), z.ID)

	series := snap.History.Series("QWER")
	require.Len(t, series, 2)
	assert.Equal(t, 60, series[0].RollingScore)
	assert.Equal(t, 61, series[1].RollingScore)
}

// go test -v --run TestHydrateMissingFiles
func TestHydrateMissingFiles(t *testing.T) {
	dir := t.TempDir()
	loader := &Loader{
		Source: &ParquetSource{
			UniversePath: filepath.Join(dir, "nope.parquet"),
			HistoryPath:  filepath.Join(dir, "also-nope.parquet"),
		},
		Logger: zap.NewNop(),
	}

	snap, report, err := loader.Hydrate(context.Background())
	require.NoError(t, err)
	assert.Nil(t, snap.Universe)
	assert.Nil(t, snap.History)
	assert.True(t, report.UniverseMissing)
	assert.True(t, report.HistoryMissing)
}

// go test -v --run TestLoadSourceFailure
func TestLoadSourceFailure(t *testing.T) {
	boom := errors.New("disk on fire")
	loader := &Loader{Source: &stubSource{historyErr: boom}, Logger: zap.NewNop()}

	_, _, err := loader.Hydrate(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}

// go test -v --run TestValidateRows
func TestValidateRows(t *testing.T) {
	tests := []struct {
		name     string
		universe []memorystore.Entity
		history  []memorystore.HistoryPoint
		wantErr  bool
	}{
		{
			name:     "valid",
			universe: []memorystore.Entity{{Ticker: "AAA", BaseScore: 10}, {Ticker: "BBB", AIAdjustedScore: 100}},
			history:  []memorystore.HistoryPoint{{Ticker: "AAA", RollingScore: 55}},
		},
		{
			name:     "blank ticker",
			universe: []memorystore.Entity{{Ticker: "  "}},
			wantErr:  true,
		},
		{
			name:     "duplicate ticker",
			universe: []memorystore.Entity{{Ticker: "AAA"}, {Ticker: "aaa"}},
			wantErr:  true,
		},
		{
			name:     "score out of range",
			universe: []memorystore.Entity{{Ticker: "AAA", BaseScore: 101}},
			wantErr:  true,
		},
		{
			name:    "history score out of range",
			history: []memorystore.HistoryPoint{{Ticker: "AAA", RollingScore: -1}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loader := &Loader{
				Source:   &stubSource{universe: tt.universe, history: tt.history},
				Validate: true,
				Logger:   zap.NewNop(),
			}
			_, _, err := loader.Hydrate(context.Background())
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrMalformedRow)
				return
			}
			assert.NoError(t, err)
		})
	}
}

// go test -v --run TestValidationOffAcceptsAnything
func TestValidationOffAcceptsAnything(t *testing.T) {
	loader := &Loader{
		Source: &stubSource{universe: []memorystore.Entity{{Ticker: ""}, {Ticker: "X", BaseScore: 400}}},
		Logger: zap.NewNop(),
	}

	snap, report, err := loader.Hydrate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, report.UniverseRows)
	assert.Equal(t, 2, snap.Universe.Len())
}
