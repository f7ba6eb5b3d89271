package postgres

import (
	"context"
	"fmt"
)

// ListUniverse reads the whole universe table in snapshot order.
func (p *PostgresClient) ListUniverse(ctx context.Context) ([]UniverseRecord, error) {
	if !p.DB.WithContext(ctx).Migrator().HasTable(&UniverseRecord{}) {
		return nil, fmt.Errorf("%w: %s", ErrTableMissing, UniverseRecord{}.TableName())
	}

	var records []UniverseRecord
	if err := p.DB.WithContext(ctx).Order("ordinal").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("list universe: %w", err)
	}
	return records, nil
}

// ListHistory reads the whole history ledger ordered by ticker and date.
func (p *PostgresClient) ListHistory(ctx context.Context) ([]HistoryRecord, error) {
	if !p.DB.WithContext(ctx).Migrator().HasTable(&HistoryRecord{}) {
		return nil, fmt.Errorf("%w: %s", ErrTableMissing, HistoryRecord{}.TableName())
	}

	var records []HistoryRecord
	if err := p.DB.WithContext(ctx).Order("ticker").Order("date").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	return records, nil
}
