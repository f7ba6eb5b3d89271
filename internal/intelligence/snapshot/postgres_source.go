package snapshot

import (
	"context"
	"errors"
	"sync"

	"mlengine/config"
	"mlengine/internal/intelligence/memorystore"
	"mlengine/pkg/storage/postgres"
)

// PostgresSource reads the snapshot tables from a Postgres database. The
// connection is opened lazily so a missing database degrades like a missing
// file instead of failing startup.
type PostgresSource struct {
	Cfg config.PostgresConfig
	Env string

	mu     sync.Mutex
	client *postgres.PostgresClient
}

func (s *PostgresSource) Describe(table string) string {
	name := postgres.UniverseRecord{}.TableName()
	if table == TableHistory {
		name = postgres.HistoryRecord{}.TableName()
	}
	return s.Cfg.DBName + "." + name
}

func (s *PostgresSource) connect() (*postgres.PostgresClient, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.client != nil {
		return s.client, nil
	}

	client, err := postgres.Connect(s.Cfg, s.Env)
	if err != nil {
		return nil, err
	}
	s.client = client
	return client, nil
}

func (s *PostgresSource) Universe(ctx context.Context) ([]memorystore.Entity, error) {
	client, err := s.connect()
	if err != nil {
		return nil, s.classify(TableUniverse, err)
	}

	records, err := client.ListUniverse(ctx)
	if err != nil {
		return nil, s.classify(TableUniverse, err)
	}

	out := make([]memorystore.Entity, len(records))
	for i, r := range records {
		out[i] = memorystore.Entity{
			ID:              entityID(r.ID, r.Ticker),
			Ticker:          r.Ticker,
			Name:            r.Name,
			Sector:          r.Sector,
			Region:          r.Region,
			MarketCapBn:     r.MarketCapBn,
			BaseScore:       r.BaseESGScore,
			AIAdjustedScore: r.AIPredictedDrift,
			CarbonIntensity: r.CarbonIntensity,
			EfficiencyIndex: r.EnergyEfficiencyIndex,
			TurnoverRate:    r.EmployeeTurnoverRate,
			AnomalyFlag:     r.AnomalyFlag,
			LastAuditDate:   r.LastAuditDate,
		}
	}
	return out, nil
}

func (s *PostgresSource) History(ctx context.Context) ([]memorystore.HistoryPoint, error) {
	client, err := s.connect()
	if err != nil {
		return nil, s.classify(TableHistory, err)
	}

	records, err := client.ListHistory(ctx)
	if err != nil {
		return nil, s.classify(TableHistory, err)
	}

	out := make([]memorystore.HistoryPoint, len(records))
	for i, r := range records {
		out[i] = memorystore.HistoryPoint{
			Ticker:       r.Ticker,
			Date:         r.Date,
			RollingScore: r.HistoricalESGScore,
			DailyReturn:  r.DailyReturn,
		}
	}
	return out, nil
}

// Close releases the pooled connection, if one was opened.
func (s *PostgresSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.client == nil {
		return nil
	}
	err := s.client.Close()
	s.client = nil
	return err
}

func (s *PostgresSource) classify(table string, err error) error {
	if errors.Is(err, postgres.ErrDatabaseMissing) || errors.Is(err, postgres.ErrTableMissing) {
		return missing(s.Describe(table), err)
	}
	return err
}
