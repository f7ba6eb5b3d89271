// Package schema holds the response shapes served by the intelligence engine.
package schema

import "time"

const (
	TrendUpward   = "UPWARD"
	TrendDownward = "DOWNWARD"
	TrendStable   = "STABLE"

	SyncStateSynchronized = "SYNCHRONIZED"
)

// GlobalStats omits SyncState and LastUpdated while no universe is loaded.
type GlobalStats struct {
	TotalIndexed int        `json:"total_indexed"`
	Anomalies    int        `json:"anomalies"`
	Drift24h     int        `json:"drift_24h"`
	SyncState    string     `json:"sync_state,omitempty"`
	LastUpdated  *time.Time `json:"last_updated,omitempty"`
}

type SectorAnalysis struct {
	Name  string  `json:"name" csv:"name"`
	Count int     `json:"count" csv:"count"`
	Risk  float64 `json:"risk" csv:"risk"` // percentage 0-100, one decimal
}

// MarketMatrixPoint is one bubble of the market-cap vs. score scatter plot.
type MarketMatrixPoint struct {
	Ticker  string  `json:"ticker"`
	X       float64 `json:"x"` // market cap ($B)
	Y       int     `json:"y"` // AI adjusted score
	Z       float64 `json:"z"` // carbon intensity
	Anomaly bool    `json:"anomaly"`
}

type ResearchResult struct {
	ID              string  `json:"id"`
	Ticker          string  `json:"ticker"`
	Name            string  `json:"name"`
	Sector          string  `json:"sector"`
	MarketCap       float64 `json:"market_cap"`
	RawScore        int     `json:"raw_score"`
	AIAdjustedScore int     `json:"ai_adjusted_score"`
	AnomalyDetected bool    `json:"anomaly_detected"`
	LastAudit       string  `json:"last_audit"`
	ESGTrend        string  `json:"esg_trend,omitempty"`
}

type AnomalySummary struct {
	TotalFound int              `json:"total_found"`
	Anomalies  []ResearchResult `json:"anomalies"`
}

type SearchRequest struct {
	Query  string  `json:"query"`
	Sector *string `json:"sector"`
	Page   int     `json:"page"`
	Limit  int     `json:"limit"`
}

type SearchResponse struct {
	Total int              `json:"total"`
	Hits  []ResearchResult `json:"hits"`
}

// EmptySearchResponse is what callers see when the search index is unavailable.
func EmptySearchResponse() *SearchResponse {
	return &SearchResponse{Total: 0, Hits: []ResearchResult{}}
}

// AuditDateLayout is the calendar-date layout used for last_audit fields.
const AuditDateLayout = "2006-01-02"

// Health is the liveness payload of the engine.
type Health struct {
	Status         string     `json:"status"`
	Service        string     `json:"service"`
	Engine         string     `json:"engine"`
	SearchSync     string     `json:"search_sync"`
	UniverseRows   int        `json:"universe_rows"`
	HistoryTickers int        `json:"history_tickers"`
	LoadedAt       *time.Time `json:"loaded_at,omitempty"`
}
