package search

import "github.com/goccy/go-json"

// Document is the _source body of one indexed ticker.
type Document struct {
	ID                string  `json:"id"`
	Ticker            string  `json:"ticker"`
	Name              string  `json:"name"`
	Sector            string  `json:"sector"`
	MarketCap         float64 `json:"market_cap"`
	BaseScore         int     `json:"base_score"`
	AIScore           int     `json:"ai_score"`
	CarbonIntensity   float64 `json:"carbon_intensity"`
	GovernanceAnomaly bool    `json:"governance_anomaly"`
	LastAuditDate     string  `json:"last_audit_date,omitempty"`
}

// Hit is one matching document and its index id.
type Hit struct {
	ID     string
	Source Document
}

// Result is one page of search hits. Total counts every match.
type Result struct {
	Total int
	Hits  []Hit
}

// Query is a normalised search request.
type Query struct {
	Text   string
	Sector string
	Page   int
	Limit  int
}

// BulkResult counts the per-item outcome of a bulk upload.
type BulkResult struct {
	Indexed int
	Failed  int
}

type bulkResponse struct {
	Errors bool                                `json:"errors"`
	Items  []map[string]bulkItemResponseStatus `json:"items"`
}

type bulkItemResponseStatus struct {
	ID     string          `json:"_id"`
	Status int             `json:"status"`
	Error  json.RawMessage `json:"error,omitempty"`
}

type searchResponse struct {
	Hits struct {
		Total struct {
			Value int `json:"value"`
		} `json:"total"`
		Hits []searchHit `json:"hits"`
	} `json:"hits"`
}

type searchHit struct {
	ID     string   `json:"_id"`
	Source Document `json:"_source"`
}

type errorResponse struct {
	Error  json.RawMessage `json:"error"`
	Status int             `json:"status"`
}
