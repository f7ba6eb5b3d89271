package search

import "strings"

// Normalize clamps paging and drops the sector filter when it selects
// every sector.
func (q Query) Normalize() Query {
	q.Text = strings.TrimSpace(q.Text)
	q.Sector = strings.TrimSpace(q.Sector)
	if q.Sector == SectorAll {
		q.Sector = ""
	}
	if q.Page < 1 {
		q.Page = 1
	}
	switch {
	case q.Limit <= 0:
		q.Limit = DefaultLimit
	case q.Limit > MaxLimit:
		q.Limit = MaxLimit
	}
	return q
}

// buildQuery renders the _search body for a normalised query.
func buildQuery(q Query) map[string]any {
	var must map[string]any
	if q.Text == "" {
		must = map[string]any{"match_all": map[string]any{}}
	} else {
		must = map[string]any{
			"multi_match": map[string]any{
				"query":     q.Text,
				"fields":    []string{"ticker^3", "name"},
				"fuzziness": "AUTO",
			},
		}
	}

	filter := []any{}
	if q.Sector != "" {
		filter = append(filter, map[string]any{
			"bool": map[string]any{
				"should": []any{
					map[string]any{"term": map[string]any{"sector": q.Sector}},
					map[string]any{"term": map[string]any{"sector.keyword": q.Sector}},
					map[string]any{"term": map[string]any{
						"sector": map[string]any{"value": q.Sector, "case_insensitive": true},
					}},
				},
				"minimum_should_match": 1,
			},
		})
	}

	return map[string]any{
		"query": map[string]any{
			"bool": map[string]any{
				"must":   []any{must},
				"filter": filter,
			},
		},
		"from": (q.Page - 1) * q.Limit,
		"size": q.Limit,
		"sort": []any{map[string]any{"_score": "desc"}},
	}
}
