package snapshot

import (
	"context"
	"errors"
	"io/fs"
	"time"

	"mlengine/internal/intelligence/memorystore"
	"mlengine/pkg/storage/parquet"
)

// ParquetSource reads the universe snapshot and history ledger from local
// parquet files.
type ParquetSource struct {
	UniversePath string
	HistoryPath  string
}

func (s *ParquetSource) Describe(table string) string {
	if table == TableHistory {
		return s.HistoryPath
	}
	return s.UniversePath
}

func (s *ParquetSource) Universe(ctx context.Context) ([]memorystore.Entity, error) {
	rows, err := parquet.ReadUniverse(s.UniversePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, missing(s.UniversePath, err)
		}
		return nil, err
	}

	out := make([]memorystore.Entity, len(rows))
	for i, r := range rows {
		out[i] = entityFromParquet(r)
	}
	return out, ctx.Err()
}

func (s *ParquetSource) History(ctx context.Context) ([]memorystore.HistoryPoint, error) {
	rows, err := parquet.ReadHistory(s.HistoryPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, missing(s.HistoryPath, err)
		}
		return nil, err
	}

	out := make([]memorystore.HistoryPoint, len(rows))
	for i, r := range rows {
		out[i] = memorystore.HistoryPoint{
			Ticker:       deref(r.Ticker),
			Date:         time.Unix(0, deref(r.Date)).UTC(),
			RollingScore: int(deref(r.HistoricalESGScore)),
			DailyReturn:  deref(r.DailyReturn),
		}
	}
	return out, ctx.Err()
}

func entityFromParquet(r parquet.UniverseRow) memorystore.Entity {
	e := memorystore.Entity{
		Ticker:          deref(r.Ticker),
		Name:            deref(r.Name),
		Sector:          deref(r.Sector),
		Region:          deref(r.Region),
		MarketCapBn:     deref(r.MarketCapBn),
		BaseScore:       int(deref(r.BaseESGScore)),
		AIAdjustedScore: int(deref(r.AIPredictedDrift)),
		CarbonIntensity: deref(r.CarbonIntensity),
		EfficiencyIndex: deref(r.EnergyEfficiencyIndex),
		TurnoverRate:    deref(r.EmployeeTurnoverRate),
		AnomalyFlag:     deref(r.AnomalyFlag),
	}
	e.ID = entityID(deref(r.ID), e.Ticker)
	if r.LastAuditDate != nil {
		e.LastAuditDate = time.Unix(0, 0).UTC().AddDate(0, 0, int(*r.LastAuditDate))
	}
	return e
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
