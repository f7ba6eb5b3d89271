package research

import (
	"fmt"
	"testing"
	"time"

	"mlengine/internal/intelligence/memorystore"
	"mlengine/internal/intelligence/schema"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testUniverse(n int) *memorystore.UniverseTable {
	rows := make([]memorystore.Entity, n)
	for i := range rows {
		rows[i] = memorystore.Entity{
			ID:              fmt.Sprintf("id-%d", i),
			Ticker:          fmt.Sprintf("T%03d", i),
			MarketCapBn:     float64(i) + 0.5,
			AIAdjustedScore: i % 101,
			CarbonIntensity: float64(i) * 2,
			AnomalyFlag:     i%3 == 0,
		}
	}
	return memorystore.NewUniverseTable(rows)
}

// history builds a date-ordered series for ticker from the given scores.
func history(ticker string, scores ...int) []memorystore.HistoryPoint {
	start := time.Date(2021, 1, 4, 0, 0, 0, 0, time.UTC)
	out := make([]memorystore.HistoryPoint, len(scores))
	for i, s := range scores {
		out[i] = memorystore.HistoryPoint{Ticker: ticker, Date: start.AddDate(0, 0, i), RollingScore: s}
	}
	return out
}

func repeat(v, n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = v
	}
	return out
}

// go test -v --run TestSampleMarketMatrixSize
func TestSampleMarketMatrixSize(t *testing.T) {
	eng := NewEngine()
	table := testUniverse(40)

	for _, n := range []int{-3, 0, 1, 39, 40, 41, 500} {
		t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
			got := eng.SampleMarketMatrix(table, n)
			assert.Len(t, got, min(max(n, 0), 40))

			seen := map[string]bool{}
			for _, p := range got {
				assert.False(t, seen[p.Ticker], "duplicate %s", p.Ticker)
				seen[p.Ticker] = true

				src, ok := table.Lookup(p.Ticker)
				require.True(t, ok)
				assert.Equal(t, src.MarketCapBn, p.X)
				assert.Equal(t, src.AIAdjustedScore, p.Y)
				assert.Equal(t, src.CarbonIntensity, p.Z)
				assert.Equal(t, src.AnomalyFlag, p.Anomaly)
			}
		})
	}
}

// go test -v --run TestSampleMarketMatrixPinnedDraw
func TestSampleMarketMatrixPinnedDraw(t *testing.T) {
	// always pick the first remaining index -> rows in table order
	eng := &Engine{IntN: func(int) int { return 0 }}

	got := eng.SampleMarketMatrix(testUniverse(5), 3)
	require.Len(t, got, 3)
	assert.Equal(t, "T000", got[0].Ticker)
	assert.Equal(t, "T001", got[1].Ticker)
	assert.Equal(t, "T002", got[2].Ticker)
}

// go test -v --run TestSampleMarketMatrixAbsent
func TestSampleMarketMatrixAbsent(t *testing.T) {
	got := NewEngine().SampleMarketMatrix(nil, 150)
	require.NotNil(t, got)
	assert.Empty(t, got)
}

// go test -v --run TestFetchTickerDetailsLowercaseRow
func TestFetchTickerDetailsLowercaseRow(t *testing.T) {
	audit := time.Date(2022, 3, 9, 0, 0, 0, 0, time.UTC)
	u := memorystore.NewUniverseTable([]memorystore.Entity{{
		ID: "9d3c", Ticker: "aaa", Name: "Alpha Corp", Sector: "Utilities",
		MarketCapBn: 12.5, BaseScore: 61, AIAdjustedScore: 58, AnomalyFlag: true, LastAuditDate: audit,
	}})
	h := memorystore.NewHistoryTable(history("AAA", repeat(50, 30)...))

	got, ok := NewEngine().FetchTickerDetails(u, h, "AAA")
	require.True(t, ok)
	assert.Equal(t, &schema.ResearchResult{
		ID:              "9d3c",
		Ticker:          "aaa",
		Name:            "Alpha Corp",
		Sector:          "Utilities",
		MarketCap:       12.5,
		RawScore:        61,
		AIAdjustedScore: 58,
		AnomalyDetected: true,
		LastAudit:       "2022-03-09",
		ESGTrend:        schema.TrendStable,
	}, got)
}

// go test -v --run TestFetchTickerDetailsNotFound
func TestFetchTickerDetailsNotFound(t *testing.T) {
	eng := NewEngine()

	got, ok := eng.FetchTickerDetails(testUniverse(3), nil, "NOPE")
	assert.False(t, ok)
	assert.Nil(t, got)

	got, ok = eng.FetchTickerDetails(nil, nil, "T000")
	assert.False(t, ok)
	assert.Nil(t, got)
}

// go test -v --run TestFetchTickerDetailsTrend
func TestFetchTickerDetailsTrend(t *testing.T) {
	u := memorystore.NewUniverseTable([]memorystore.Entity{{Ticker: "BBB"}})

	testCases := []struct {
		desc     string
		scores   []int
		expected string
	}{
		{"upward: 31 at 70 then 30 at 90", append(repeat(70, 31), repeat(90, 30)...), schema.TrendUpward},
		{"equal means resolve downward", repeat(80, 61), schema.TrendDownward},
		{"lower recent mean", append(repeat(90, 30), repeat(60, 30)...), schema.TrendDownward},
		{"exactly 30 rows stays stable", append(repeat(10, 15), repeat(99, 15)...), schema.TrendStable},
		{"31 rows compares against one prior row", append([]int{40}, repeat(41, 30)...), schema.TrendUpward},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			h := memorystore.NewHistoryTable(history("BBB", tc.scores...))
			got, ok := NewEngine().FetchTickerDetails(u, h, "bbb")
			require.True(t, ok)
			assert.Equal(t, tc.expected, got.ESGTrend)
		})
	}
}

// go test -v --run TestFetchTickerDetailsUnsortedHistory
func TestFetchTickerDetailsUnsortedHistory(t *testing.T) {
	u := memorystore.NewUniverseTable([]memorystore.Entity{{Ticker: "CCC"}})

	rows := history("CCC", append(repeat(20, 30), repeat(90, 30)...)...)
	// reverse the ledger; the table must restore date order before windowing
	for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
		rows[i], rows[j] = rows[j], rows[i]
	}

	got, ok := NewEngine().FetchTickerDetails(u, memorystore.NewHistoryTable(rows), "CCC")
	require.True(t, ok)
	assert.Equal(t, schema.TrendUpward, got.ESGTrend)
}

// go test -v --run TestFetchTickerDetailsNoHistory
func TestFetchTickerDetailsNoHistory(t *testing.T) {
	u := memorystore.NewUniverseTable([]memorystore.Entity{{Ticker: "DDD"}})
	h := memorystore.NewHistoryTable(history("OTHER", repeat(1, 90)...))

	got, ok := NewEngine().FetchTickerDetails(u, h, "DDD")
	require.True(t, ok)
	assert.Equal(t, schema.TrendStable, got.ESGTrend)
}
