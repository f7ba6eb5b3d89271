package snapshot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"mlengine/config"
	"mlengine/internal/intelligence/memorystore"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ErrMalformedRow is returned when validation is enabled and a universe or
// history row breaks the row contract.
var ErrMalformedRow = errors.New("malformed row")

// Report summarises one hydration.
type Report struct {
	UniverseRows    int
	HistoryRows     int
	UniverseMissing bool
	HistoryMissing  bool
	Elapsed         time.Duration
}

type Loader struct {
	Source   Source
	Validate bool
	Logger   *zap.Logger
}

// NewLoader picks the source named by cfg.Data.Source.
func NewLoader(cfg *config.Config, logger *zap.Logger) (*Loader, error) {
	var src Source
	switch cfg.Data.Source {
	case "", "parquet":
		src = &ParquetSource{UniversePath: cfg.Data.UniversePath, HistoryPath: cfg.Data.HistoryPath}
	case "postgres":
		src = &PostgresSource{Cfg: cfg.Postgres, Env: cfg.Log.Environment}
	default:
		return nil, fmt.Errorf("unknown data source %q", cfg.Data.Source)
	}

	return &Loader{Source: src, Validate: cfg.Data.Validate, Logger: logger}, nil
}

// LoadUniverse reads the universe snapshot. Absent storage yields a nil
// table and a nil error.
func (l *Loader) LoadUniverse(ctx context.Context) (*memorystore.UniverseTable, error) {
	rows, err := l.Source.Universe(ctx)
	if err != nil {
		if errors.Is(err, ErrSourceMissing) {
			l.Logger.Info("dataset missing", zap.String("table", TableUniverse), zap.String("location", l.Source.Describe(TableUniverse)))
			return nil, nil
		}
		return nil, fmt.Errorf("load universe: %w", err)
	}

	if l.Validate {
		if err := validateUniverse(rows); err != nil {
			return nil, err
		}
	}

	return memorystore.NewUniverseTable(rows), nil
}

// LoadHistory reads the history ledger with the same absence policy as
// LoadUniverse.
func (l *Loader) LoadHistory(ctx context.Context) (*memorystore.HistoryTable, error) {
	rows, err := l.Source.History(ctx)
	if err != nil {
		if errors.Is(err, ErrSourceMissing) {
			l.Logger.Info("dataset missing", zap.String("table", TableHistory), zap.String("location", l.Source.Describe(TableHistory)))
			return nil, nil
		}
		return nil, fmt.Errorf("load history: %w", err)
	}

	if l.Validate {
		if err := validateHistory(rows); err != nil {
			return nil, err
		}
	}

	return memorystore.NewHistoryTable(rows), nil
}

// Hydrate loads both tables concurrently and assembles a new snapshot. The
// caller decides whether to publish it.
func (l *Loader) Hydrate(ctx context.Context) (*memorystore.Snapshot, Report, error) {
	start := time.Now()

	var (
		universe *memorystore.UniverseTable
		history  *memorystore.HistoryTable
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		universe, err = l.LoadUniverse(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		history, err = l.LoadHistory(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, Report{}, err
	}

	report := Report{
		UniverseRows:    universe.Len(),
		HistoryRows:     history.Len(),
		UniverseMissing: universe == nil,
		HistoryMissing:  history == nil,
		Elapsed:         time.Since(start),
	}

	l.Logger.Info("snapshot hydrated",
		zap.Int("universe_rows", report.UniverseRows),
		zap.Int("history_rows", report.HistoryRows),
		zap.Bool("universe_missing", report.UniverseMissing),
		zap.Bool("history_missing", report.HistoryMissing),
		zap.Duration("elapsed", report.Elapsed),
	)

	return &memorystore.Snapshot{
		Universe: universe,
		History:  history,
		LoadedAt: time.Now().UTC(),
	}, report, nil
}

func validateUniverse(rows []memorystore.Entity) error {
	seen := make(map[string]int, len(rows))
	for i, e := range rows {
		ticker := memorystore.NormalizeTicker(e.Ticker)
		if ticker == "" {
			return fmt.Errorf("%w: universe row %d: blank ticker", ErrMalformedRow, i)
		}
		if first, ok := seen[ticker]; ok {
			return fmt.Errorf("%w: universe row %d: ticker %s already at row %d", ErrMalformedRow, i, ticker, first)
		}
		seen[ticker] = i

		if !inScoreRange(e.BaseScore) || !inScoreRange(e.AIAdjustedScore) {
			return fmt.Errorf("%w: universe row %d (%s): score out of range", ErrMalformedRow, i, ticker)
		}
	}
	return nil
}

func validateHistory(rows []memorystore.HistoryPoint) error {
	for i, p := range rows {
		if memorystore.NormalizeTicker(p.Ticker) == "" {
			return fmt.Errorf("%w: history row %d: blank ticker", ErrMalformedRow, i)
		}
		if !inScoreRange(p.RollingScore) {
			return fmt.Errorf("%w: history row %d (%s): score out of range", ErrMalformedRow, i, p.Ticker)
		}
	}
	return nil
}

func inScoreRange(v int) bool {
	return v >= 0 && v <= 100
}
