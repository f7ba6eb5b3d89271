package searchsync

import (
	"mlengine/internal/intelligence/memorystore"
	"mlengine/internal/intelligence/schema"
	"mlengine/pkg/search"
)

// NewDocument projects a universe entity onto the index document shape.
func NewDocument(e memorystore.Entity) search.Document {
	d := search.Document{
		ID:                e.ID,
		Ticker:            e.Ticker,
		Name:              e.Name,
		Sector:            e.Sector,
		MarketCap:         e.MarketCapBn,
		BaseScore:         e.BaseScore,
		AIScore:           e.AIAdjustedScore,
		CarbonIntensity:   e.CarbonIntensity,
		GovernanceAnomaly: e.AnomalyFlag,
	}
	if !e.LastAuditDate.IsZero() {
		d.LastAuditDate = e.LastAuditDate.Format(schema.AuditDateLayout)
	}
	return d
}

// hitResult maps an indexed document back onto the research result shape.
// The trend is not indexed and stays empty.
func hitResult(hit search.Hit) schema.ResearchResult {
	d := hit.Source
	id := d.ID
	if id == "" {
		id = hit.ID
	}
	return schema.ResearchResult{
		ID:              id,
		Ticker:          d.Ticker,
		Name:            d.Name,
		Sector:          d.Sector,
		MarketCap:       d.MarketCap,
		RawScore:        d.BaseScore,
		AIAdjustedScore: d.AIScore,
		AnomalyDetected: d.GovernanceAnomaly,
		LastAudit:       d.LastAuditDate,
	}
}

func searchResponse(res *search.Result) *schema.SearchResponse {
	out := &schema.SearchResponse{
		Total: res.Total,
		Hits:  make([]schema.ResearchResult, 0, len(res.Hits)),
	}
	for _, hit := range res.Hits {
		out.Hits = append(out.Hits, hitResult(hit))
	}
	return out
}
