package research

import (
	"math/rand/v2"

	"mlengine/internal/intelligence/memorystore"
	"mlengine/internal/intelligence/metrics"
	"mlengine/internal/intelligence/schema"
)

// trendWindow is the number of trading days in each trend comparison window.
const trendWindow = 30

// Engine answers visualization and single-ticker research queries.
type Engine struct {
	// IntN returns a uniform int in [0, n). It must be safe for concurrent use.
	IntN func(n int) int
}

// NewEngine returns an engine drawing from the global, unseeded source.
func NewEngine() *Engine {
	return &Engine{IntN: rand.IntN}
}

// SampleMarketMatrix draws min(n, rows) distinct rows uniformly at random and
// projects them onto the scatter-plot axes.
func (eng *Engine) SampleMarketMatrix(u *memorystore.UniverseTable, n int) []schema.MarketMatrixPoint {
	size := min(max(n, 0), u.Len())
	out := make([]schema.MarketMatrixPoint, 0, size)
	if size == 0 {
		return out
	}

	// partial Fisher-Yates over row indexes
	idx := make([]int, u.Len())
	for i := range idx {
		idx[i] = i
	}
	for i := 0; i < size; i++ {
		j := i + eng.IntN(len(idx)-i)
		idx[i], idx[j] = idx[j], idx[i]

		e := u.Row(idx[i])
		out = append(out, schema.MarketMatrixPoint{
			Ticker:  e.Ticker,
			X:       e.MarketCapBn,
			Y:       e.AIAdjustedScore,
			Z:       e.CarbonIntensity,
			Anomaly: e.AnomalyFlag,
		})
	}
	return out
}

// FetchTickerDetails looks up one ticker and classifies its recent ESG trend
// from the history ledger. The bool is false when the ticker is unknown.
func (eng *Engine) FetchTickerDetails(u *memorystore.UniverseTable, h *memorystore.HistoryTable, ticker string) (*schema.ResearchResult, bool) {
	e, ok := u.Lookup(ticker)
	if !ok {
		return nil, false
	}

	result := metrics.EntityResult(e)
	result.ESGTrend = ClassifyTrend(h.Series(ticker))
	return &result, true
}

// ClassifyTrend compares the mean rolling score of the last 30 rows against
// the up-to-30 rows before them. Series of 30 rows or fewer are STABLE.
// An unchanged mean counts as DOWNWARD.
func ClassifyTrend(series []memorystore.HistoryPoint) string {
	n := len(series)
	if n <= trendWindow {
		return schema.TrendStable
	}

	recent := meanScore(series[n-trendWindow:])
	prior := meanScore(series[max(0, n-2*trendWindow) : n-trendWindow])
	if recent > prior {
		return schema.TrendUpward
	}
	return schema.TrendDownward
}

func meanScore(points []memorystore.HistoryPoint) float64 {
	sum := 0
	for _, p := range points {
		sum += p.RollingScore
	}
	return float64(sum) / float64(len(points))
}
