// Package intelligence assembles the loader, the analytical engines and the
// search proxy behind one read-only service.
package intelligence

import (
	"context"
	"time"

	"mlengine/internal/intelligence/memorystore"
	"mlengine/internal/intelligence/metrics"
	"mlengine/internal/intelligence/research"
	"mlengine/internal/intelligence/schema"
	"mlengine/internal/intelligence/searchsync"
	"mlengine/internal/intelligence/snapshot"
	"mlengine/pkg/search"

	"go.uber.org/zap"
)

const (
	ServiceName = "ml-engine"
	EngineName  = "modular-go-v1"
)

// Hydrator builds a fresh snapshot from storage.
type Hydrator interface {
	Hydrate(ctx context.Context) (*memorystore.Snapshot, snapshot.Report, error)
}

type Service struct {
	loader   Hydrator
	store    *memorystore.Store
	syncer   *searchsync.Syncer
	research *research.Engine
	logger   *zap.Logger

	now func() time.Time
}

// New wires the service. syncer may be nil, in which case search always
// answers with an empty result.
func New(loader Hydrator, store *memorystore.Store, syncer *searchsync.Syncer, logger *zap.Logger) *Service {
	return &Service{
		loader:   loader,
		store:    store,
		syncer:   syncer,
		research: research.NewEngine(),
		logger:   logger,
		now:      time.Now,
	}
}

// Hydrate loads a new snapshot, publishes it and starts a background search
// sync. ctx bounds the sync as well as the load. On error the previous
// snapshot stays published.
func (s *Service) Hydrate(ctx context.Context) (snapshot.Report, error) {
	snap, report, err := s.loader.Hydrate(ctx)
	if err != nil {
		return report, err
	}

	s.store.Publish(snap)
	if snap.Universe != nil {
		s.logger.Info("intelligence engine hydrated", zap.Int("tickers", snap.Universe.Len()))
	}

	if s.syncer != nil {
		s.syncer.Start(ctx, snap.Universe)
	}
	return report, nil
}

func (s *Service) GlobalStats() schema.GlobalStats {
	return metrics.CalculateGlobalStats(s.store.Current().Universe, s.now())
}

func (s *Service) SectorAnalysis() []schema.SectorAnalysis {
	return metrics.AnalyzeSectors(s.store.Current().Universe)
}

func (s *Service) MarketMatrix(n int) []schema.MarketMatrixPoint {
	return s.research.SampleMarketMatrix(s.store.Current().Universe, n)
}

func (s *Service) TickerDetails(ticker string) (*schema.ResearchResult, bool) {
	snap := s.store.Current()
	return s.research.FetchTickerDetails(snap.Universe, snap.History, ticker)
}

// Anomalies lists flagged entities, optionally restricted to one sector.
func (s *Service) Anomalies(sector string, limit int) schema.AnomalySummary {
	return metrics.ListAnomalies(s.store.Current().Universe, sector, limit)
}

// SearchTickers never fails: any unavailability yields an empty result.
func (s *Service) SearchTickers(ctx context.Context, req schema.SearchRequest) *schema.SearchResponse {
	if s.syncer == nil {
		return schema.EmptySearchResponse()
	}

	q := search.Query{Text: req.Query, Page: req.Page, Limit: req.Limit}
	if req.Sector != nil {
		q.Sector = *req.Sector
	}
	return s.syncer.Search(ctx, q.Normalize())
}

func (s *Service) Health() schema.Health {
	snap := s.store.Current()

	h := schema.Health{
		Status:         "operational",
		Service:        ServiceName,
		Engine:         EngineName,
		SearchSync:     searchsync.StatePending.String(),
		UniverseRows:   snap.Universe.Len(),
		HistoryTickers: snap.History.Tickers(),
	}
	if s.syncer != nil {
		h.SearchSync = s.syncer.State().String()
	}
	if !snap.LoadedAt.IsZero() {
		loadedAt := snap.LoadedAt
		h.LoadedAt = &loadedAt
	}
	return h
}

// Wait joins any background search sync.
func (s *Service) Wait() {
	if s.syncer != nil {
		s.syncer.Wait()
	}
}
