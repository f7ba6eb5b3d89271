package snapshot

import (
	"context"
	"errors"
	"fmt"

	"mlengine/internal/intelligence/memorystore"

	"github.com/google/uuid"
)

// ErrSourceMissing is returned by a Source when the requested table does not
// exist in storage. The loader turns it into an absent table.
var ErrSourceMissing = errors.New("dataset missing")

// Source reads the two snapshot tables from durable storage.
type Source interface {
	// Universe returns the universe rows in storage order.
	Universe(ctx context.Context) ([]memorystore.Entity, error)
	// History returns the history ledger rows.
	History(ctx context.Context) ([]memorystore.HistoryPoint, error)
	// Describe names the storage location of a table for log lines.
	Describe(table string) string
}

const (
	TableUniverse = "universe"
	TableHistory  = "history"
)

func missing(location string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrSourceMissing, location, err)
}

// entityID keeps the stored id, or derives a stable one from the ticker so
// every entity can be addressed in the search index.
func entityID(id, ticker string) string {
	if id != "" {
		return id
	}
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(memorystore.NormalizeTicker(ticker))).String()
}
