package searchsync

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"mlengine/config"
	"mlengine/internal/intelligence/memorystore"
	"mlengine/internal/intelligence/schema"
	"mlengine/pkg/search"

	"go.uber.org/zap"
)

type State int32

const (
	StatePending State = iota
	StateSynchronized
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateSynchronized:
		return schema.SyncStateSynchronized
	case StateFailed:
		return "FAILED"
	default:
		return "PENDING"
	}
}

// Index is the part of the search client the syncer drives.
type Index interface {
	EnsureIndex(ctx context.Context, recreate bool) error
	BulkIndex(ctx context.Context, docs []search.Document) (search.BulkResult, error)
	Search(ctx context.Context, q search.Query) (*search.Result, error)
}

// Syncer pushes universe snapshots into the search index with bounded
// retries and tracks whether the index can serve queries.
type Syncer struct {
	index    Index
	attempts int
	backoff  time.Duration
	recreate bool
	logger   *zap.Logger

	// recreated is guarded by runMu; the index is only dropped on the first
	// successful run of the process.
	recreated bool

	state atomic.Int32
	runMu sync.Mutex
	wg    sync.WaitGroup
}

func New(index Index, cfg config.SearchConfig, logger *zap.Logger) *Syncer {
	attempts := cfg.SyncAttempts
	if attempts <= 0 {
		attempts = 1
	}
	return &Syncer{
		index:    index,
		attempts: attempts,
		backoff:  cfg.SyncBackoff,
		recreate: cfg.RecreateIndex,
		logger:   logger,
	}
}

func (s *Syncer) State() State {
	return State(s.state.Load())
}

// Start runs Sync on its own goroutine. Use Wait to join it.
func (s *Syncer) Start(ctx context.Context, u *memorystore.UniverseTable) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.Sync(ctx, u); err != nil {
			s.logger.Warn("search sync failed", zap.Error(err))
		}
	}()
}

// Wait blocks until every sync started with Start has returned.
func (s *Syncer) Wait() {
	s.wg.Wait()
}

// Sync ensures the index exists and bulk-uploads every universe row. An
// absent or empty table is skipped. Runs are serialised; an index that
// already synchronised stays queryable while a later run is in flight.
func (s *Syncer) Sync(ctx context.Context, u *memorystore.UniverseTable) error {
	if u.Len() == 0 {
		s.logger.Info("skipping search sync, no universe data in memory")
		return nil
	}

	s.runMu.Lock()
	defer s.runMu.Unlock()

	docs := make([]search.Document, 0, u.Len())
	u.Each(func(e memorystore.Entity) {
		docs = append(docs, NewDocument(e))
	})

	var lastErr error
	for attempt := 1; attempt <= s.attempts; attempt++ {
		res, err := s.syncOnce(ctx, docs, attempt == 1 && s.recreate && !s.recreated)
		if err == nil {
			s.recreated = true
			s.state.Store(int32(StateSynchronized))
			s.logger.Info("search index synchronized",
				zap.Int("indexed", res.Indexed),
				zap.Int("failed", res.Failed),
				zap.Int("attempt", attempt),
			)
			return nil
		}
		lastErr = err
		s.logger.Warn("search sync attempt failed",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", s.attempts),
			zap.Error(err),
		)

		if attempt == s.attempts {
			break
		}
		timer := time.NewTimer(s.backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			s.fail()
			return ctx.Err()
		case <-timer.C:
		}
	}

	s.fail()
	return fmt.Errorf("search sync gave up after %d attempts: %w", s.attempts, lastErr)
}

func (s *Syncer) syncOnce(ctx context.Context, docs []search.Document, recreate bool) (search.BulkResult, error) {
	if err := s.index.EnsureIndex(ctx, recreate); err != nil {
		return search.BulkResult{}, err
	}
	return s.index.BulkIndex(ctx, docs)
}

// fail marks the index unusable unless a previous run already populated it.
func (s *Syncer) fail() {
	s.state.CompareAndSwap(int32(StatePending), int32(StateFailed))
}

// Search proxies to the index once it has synchronised. Before that, and on
// any index error, it answers with an empty result.
func (s *Syncer) Search(ctx context.Context, q search.Query) *schema.SearchResponse {
	if s.State() != StateSynchronized {
		return schema.EmptySearchResponse()
	}

	res, err := s.index.Search(ctx, q)
	if err != nil {
		s.logger.Warn("search request failed", zap.Error(err))
		return schema.EmptySearchResponse()
	}
	return searchResponse(res)
}
