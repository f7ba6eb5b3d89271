package memorystore

import (
	"sort"
	"strings"
	"time"
)

// NormalizeTicker returns the lookup key for a ticker.
func NormalizeTicker(ticker string) string {
	return strings.ToUpper(strings.TrimSpace(ticker))
}

// UniverseTable is an immutable, storage-ordered view of the ticker universe.
// A nil *UniverseTable means the snapshot file was absent.
type UniverseTable struct {
	rows     []Entity
	byTicker map[string]int
}

// NewUniverseTable copies rows into a table. When a ticker appears more than
// once, lookups resolve to its first occurrence.
func NewUniverseTable(rows []Entity) *UniverseTable {
	t := &UniverseTable{
		rows:     make([]Entity, len(rows)),
		byTicker: make(map[string]int, len(rows)),
	}
	copy(t.rows, rows)

	for i, e := range t.rows {
		key := NormalizeTicker(e.Ticker)
		if _, ok := t.byTicker[key]; !ok {
			t.byTicker[key] = i
		}
	}
	return t
}

func (t *UniverseTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.rows)
}

// Row returns the i-th row in storage order.
func (t *UniverseTable) Row(i int) Entity {
	return t.rows[i]
}

// Each calls fn for every row in storage order.
func (t *UniverseTable) Each(fn func(Entity)) {
	if t == nil {
		return
	}
	for _, e := range t.rows {
		fn(e)
	}
}

// Lookup finds a row by ticker, case-insensitively.
func (t *UniverseTable) Lookup(ticker string) (Entity, bool) {
	if t == nil {
		return Entity{}, false
	}
	i, ok := t.byTicker[NormalizeTicker(ticker)]
	if !ok {
		return Entity{}, false
	}
	return t.rows[i], true
}

// HistoryTable groups history rows per ticker, each group sorted by date.
// A nil *HistoryTable means the ledger file was absent.
type HistoryTable struct {
	series map[string][]HistoryPoint
	total  int
}

func NewHistoryTable(rows []HistoryPoint) *HistoryTable {
	t := &HistoryTable{
		series: make(map[string][]HistoryPoint),
		total:  len(rows),
	}

	for _, p := range rows {
		key := NormalizeTicker(p.Ticker)
		t.series[key] = append(t.series[key], p)
	}

	// Stable so same-day rows keep ledger order.
	for _, s := range t.series {
		sort.SliceStable(s, func(i, j int) bool {
			return s[i].Date.Before(s[j].Date)
		})
	}
	return t
}

func (t *HistoryTable) Len() int {
	if t == nil {
		return 0
	}
	return t.total
}

// Tickers returns the number of distinct tickers with history.
func (t *HistoryTable) Tickers() int {
	if t == nil {
		return 0
	}
	return len(t.series)
}

// Series returns the date-ordered history of a ticker. The returned slice is
// shared with the table and must not be modified.
func (t *HistoryTable) Series(ticker string) []HistoryPoint {
	if t == nil {
		return nil
	}
	return t.series[NormalizeTicker(ticker)]
}

// Snapshot is one hydration generation. Its tables are never mutated after
// construction; re-hydration builds a new Snapshot.
type Snapshot struct {
	Universe *UniverseTable
	History  *HistoryTable
	LoadedAt time.Time
}
