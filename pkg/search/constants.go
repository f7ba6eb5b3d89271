package search

import "time"

const (
	DefaultBaseURL  = "http://127.0.0.1:9200"
	DefaultIndex    = "gs_company_universe"
	DefaultBulkSize = 1000
	defaultTimeout  = 10 * time.Second

	DefaultLimit = 10
	MaxLimit     = 100

	// SectorAll selects every sector. The match is exact and case-sensitive.
	SectorAll = "ALL"
)

// indexMapping is the fixed mapping applied when the index is created.
var indexMapping = map[string]any{
	"mappings": map[string]any{
		"properties": map[string]any{
			"id":                 map[string]any{"type": "keyword"},
			"ticker":             keywordText(),
			"name":               keywordText(),
			"sector":             map[string]any{"type": "keyword"},
			"market_cap":         map[string]any{"type": "float"},
			"base_score":         map[string]any{"type": "integer"},
			"ai_score":           map[string]any{"type": "integer"},
			"carbon_intensity":   map[string]any{"type": "float"},
			"governance_anomaly": map[string]any{"type": "boolean"},
			"last_audit_date":    map[string]any{"type": "date"},
		},
	},
}

func keywordText() map[string]any {
	return map[string]any{
		"type":   "text",
		"fields": map[string]any{"keyword": map[string]any{"type": "keyword"}},
	}
}
