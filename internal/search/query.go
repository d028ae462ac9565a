package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
)

// Params configures a catalog search.
type Params struct {
	Query     string
	GenreSlug string // exact genre filter
	MinYear   int
	MaxYear   int
	Limit     int
	Offset    int
}

// DefaultParams returns sensible defaults.
func DefaultParams() Params {
	return Params{Limit: 20}
}

// Result is one page of catalog search results.
type Result struct {
	Query  string `json:"query"`
	Total  uint64 `json:"total"`
	TookMs int64  `json:"took_ms"`
	Hits   []Hit  `json:"hits"`
}

// Hit is a single matching catalog entry.
type Hit struct {
	ID             string  `json:"id"`
	Score          float64 `json:"score"`
	Title          string  `json:"title"`
	Year           int     `json:"year,omitempty"`
	RuntimeMinutes int     `json:"runtime_minutes,omitempty"`
}

// Search executes a catalog search.
func (s *Index) Search(ctx context.Context, params Params) (*Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if params.Limit <= 0 {
		params.Limit = 20
	}

	searchRequest := bleve.NewSearchRequestOptions(buildQuery(params), params.Limit, params.Offset, false)
	searchRequest.Fields = []string{"id", "title", "year", "runtime_minutes"}

	searchResult, err := s.index.SearchInContext(ctx, searchRequest)
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}

	result := &Result{
		Query:  params.Query,
		Total:  searchResult.Total,
		TookMs: searchResult.Took.Milliseconds(),
		Hits:   make([]Hit, 0, len(searchResult.Hits)),
	}

	for _, hit := range searchResult.Hits {
		h := Hit{
			ID:    hit.ID,
			Score: hit.Score,
		}
		if t, ok := hit.Fields["title"].(string); ok {
			h.Title = t
		}
		if y, ok := hit.Fields["year"].(float64); ok {
			h.Year = int(y)
		}
		if r, ok := hit.Fields["runtime_minutes"].(float64); ok {
			h.RuntimeMinutes = int(r)
		}
		result.Hits = append(result.Hits, h)
	}

	return result, nil
}

// buildQuery combines the text query with year and genre filters.
func buildQuery(params Params) query.Query {
	conjuncts := []query.Query{}

	text := strings.TrimSpace(params.Query)
	if text == "" {
		conjuncts = append(conjuncts, bleve.NewMatchAllQuery())
	} else {
		// Match with stemming plus a fuzzy fallback for typos. The fuzzy
		// arm is weighted down so exact hits rank first.
		matchQuery := bleve.NewMatchQuery(text)
		matchQuery.SetField("title")
		matchQuery.SetBoost(2.0)

		fuzzyQuery := bleve.NewMatchQuery(text)
		fuzzyQuery.SetField("title")
		fuzzyQuery.SetFuzziness(1)

		overviewQuery := bleve.NewMatchQuery(text)
		overviewQuery.SetField("overview")
		overviewQuery.SetBoost(0.5)

		conjuncts = append(conjuncts, bleve.NewDisjunctionQuery(matchQuery, fuzzyQuery, overviewQuery))
	}

	if params.GenreSlug != "" {
		genreQuery := bleve.NewTermQuery(params.GenreSlug)
		genreQuery.SetField("genre_slugs")
		conjuncts = append(conjuncts, genreQuery)
	}

	if params.MinYear > 0 || params.MaxYear > 0 {
		var minYear, maxYear *float64
		if params.MinYear > 0 {
			v := float64(params.MinYear)
			minYear = &v
		}
		if params.MaxYear > 0 {
			v := float64(params.MaxYear) + 0.5 // inclusive upper bound
			maxYear = &v
		}
		yearQuery := bleve.NewNumericRangeQuery(minYear, maxYear)
		yearQuery.SetField("year")
		conjuncts = append(conjuncts, yearQuery)
	}

	if len(conjuncts) == 1 {
		return conjuncts[0]
	}
	return bleve.NewConjunctionQuery(conjuncts...)
}
