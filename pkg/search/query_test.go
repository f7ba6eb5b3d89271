package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// go test -v --run TestQueryNormalize
func TestQueryNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   Query
		want Query
	}{
		{"defaults", Query{}, Query{Page: 1, Limit: DefaultLimit}},
		{"negative limit", Query{Page: 2, Limit: -4}, Query{Page: 2, Limit: DefaultLimit}},
		{"clamped limit", Query{Page: 1, Limit: 500}, Query{Page: 1, Limit: MaxLimit}},
		{"all sectors", Query{Sector: SectorAll, Page: 1, Limit: 5}, Query{Page: 1, Limit: 5}},
		{"lowercase all is a sector name", Query{Sector: "all", Page: 1, Limit: 5}, Query{Sector: "all", Page: 1, Limit: 5}},
		{"mixed case all is a sector name", Query{Sector: "All", Page: 1, Limit: 5}, Query{Sector: "All", Page: 1, Limit: 5}},
		{"trimmed", Query{Text: "  tsla ", Sector: " Energy ", Page: 1, Limit: 5}, Query{Text: "tsla", Sector: "Energy", Page: 1, Limit: 5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.in.Normalize())
		})
	}
}

// go test -v --run TestBuildQueryMatchAll
func TestBuildQueryMatchAll(t *testing.T) {
	body := buildQuery(Query{Page: 2, Limit: 10})

	boolQuery := body["query"].(map[string]any)["bool"].(map[string]any)
	must := boolQuery["must"].([]any)
	assert.Contains(t, must[0].(map[string]any), "match_all")
	assert.Empty(t, boolQuery["filter"])
	assert.Equal(t, 10, body["from"])
	assert.Equal(t, 10, body["size"])
}

// go test -v --run TestBuildQuerySectorFilter
func TestBuildQuerySectorFilter(t *testing.T) {
	body := buildQuery(Query{Text: "green", Sector: "Energy", Page: 1, Limit: 10})

	boolQuery := body["query"].(map[string]any)["bool"].(map[string]any)
	mm := boolQuery["must"].([]any)[0].(map[string]any)["multi_match"].(map[string]any)
	assert.Equal(t, "green", mm["query"])
	assert.Equal(t, []string{"ticker^3", "name"}, mm["fields"])
	assert.Equal(t, "AUTO", mm["fuzziness"])

	filter := boolQuery["filter"].([]any)
	assert.Len(t, filter, 1)
	sectorBool := filter[0].(map[string]any)["bool"].(map[string]any)
	assert.Len(t, sectorBool["should"], 3)
	assert.Equal(t, 1, sectorBool["minimum_should_match"])
	assert.Equal(t, 0, body["from"])
}
