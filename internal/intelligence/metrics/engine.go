package metrics

import (
	"math"
	"sort"
	"strconv"
	"time"

	"mlengine/internal/intelligence/memorystore"
	"mlengine/internal/intelligence/schema"
)

// driftRatio is the fixed daily drift estimate applied to the universe size.
const driftRatio = 0.0018

// DefaultAnomalyLimit caps ListAnomalies when no limit is given.
const DefaultAnomalyLimit = 20

// CalculateGlobalStats summarizes the universe. now is stamped into
// LastUpdated as-is; it is not derived from the data. An absent table yields
// only the zeroed counters, with no sync state or timestamp.
func CalculateGlobalStats(u *memorystore.UniverseTable, now time.Time) schema.GlobalStats {
	if u == nil {
		return schema.GlobalStats{}
	}

	total := u.Len()
	anomalies := 0
	u.Each(func(e memorystore.Entity) {
		if e.AnomalyFlag {
			anomalies++
		}
	})

	return schema.GlobalStats{
		TotalIndexed: total,
		Anomalies:    anomalies,
		Drift24h:     int(math.Floor(float64(total) * driftRatio)),
		SyncState:    schema.SyncStateSynchronized,
		LastUpdated:  &now,
	}
}

type sectorTally struct {
	name      string
	count     int
	anomalies int
}

// AnalyzeSectors groups the universe by sector and reports the anomaly
// density of each group, highest risk first. Equal risks keep the order in
// which their sectors first appear in the table.
func AnalyzeSectors(u *memorystore.UniverseTable) []schema.SectorAnalysis {
	if u == nil {
		return []schema.SectorAnalysis{}
	}

	var tallies []*sectorTally
	index := make(map[string]*sectorTally)
	u.Each(func(e memorystore.Entity) {
		tally, ok := index[e.Sector]
		if !ok {
			tally = &sectorTally{name: e.Sector}
			index[e.Sector] = tally
			tallies = append(tallies, tally)
		}
		tally.count++
		if e.AnomalyFlag {
			tally.anomalies++
		}
	})

	out := make([]schema.SectorAnalysis, 0, len(tallies))
	for _, tally := range tallies {
		// a tally is only created for a row, so count >= 1
		out = append(out, schema.SectorAnalysis{
			Name:  tally.name,
			Count: tally.count,
			Risk:  roundTo(float64(tally.anomalies)/float64(tally.count)*100, 1),
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Risk > out[j].Risk
	})
	return out
}

// ListAnomalies returns flagged entities in table order, optionally limited to
// one sector. TotalFound counts every match; Anomalies holds at most limit.
func ListAnomalies(u *memorystore.UniverseTable, sector string, limit int) schema.AnomalySummary {
	if limit <= 0 {
		limit = DefaultAnomalyLimit
	}

	summary := schema.AnomalySummary{Anomalies: []schema.ResearchResult{}}
	u.Each(func(e memorystore.Entity) {
		if !e.AnomalyFlag || (sector != "" && e.Sector != sector) {
			return
		}
		summary.TotalFound++
		if len(summary.Anomalies) < limit {
			summary.Anomalies = append(summary.Anomalies, EntityResult(e))
		}
	})
	return summary
}

// EntityResult maps a universe row to its public shape, without a trend.
func EntityResult(e memorystore.Entity) schema.ResearchResult {
	return schema.ResearchResult{
		ID:              e.ID,
		Ticker:          e.Ticker,
		Name:            e.Name,
		Sector:          e.Sector,
		MarketCap:       e.MarketCapBn,
		RawScore:        e.BaseScore,
		AIAdjustedScore: e.AIAdjustedScore,
		AnomalyDetected: e.AnomalyFlag,
		LastAudit:       formatAuditDate(e.LastAuditDate),
	}
}

func formatAuditDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(schema.AuditDateLayout)
}

// roundTo rounds the exact binary value of v to places decimals, ties to even.
func roundTo(v float64, places int) float64 {
	r, err := strconv.ParseFloat(strconv.FormatFloat(v, 'f', places, 64), 64)
	if err != nil {
		return v
	}
	return r
}
