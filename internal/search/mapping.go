package search

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
	"github.com/blevesearch/bleve/v2/mapping"
)

// buildIndexMapping creates the Bleve index mapping for movie documents.
// Titles get English stemming and term vectors for highlighting; genre slugs
// use exact keyword matching; year and runtime support range queries.
func buildIndexMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultAnalyzer = en.AnalyzerName

	docMapping := bleve.NewDocumentMapping()

	titleFieldMapping := bleve.NewTextFieldMapping()
	titleFieldMapping.Analyzer = en.AnalyzerName
	titleFieldMapping.Store = true
	titleFieldMapping.IncludeTermVectors = true
	docMapping.AddFieldMappingsAt("title", titleFieldMapping)

	// Searchable but not stored - full text can be large.
	overviewFieldMapping := bleve.NewTextFieldMapping()
	overviewFieldMapping.Analyzer = en.AnalyzerName
	overviewFieldMapping.Store = false
	docMapping.AddFieldMappingsAt("overview", overviewFieldMapping)

	idFieldMapping := bleve.NewTextFieldMapping()
	idFieldMapping.Analyzer = keyword.Name
	docMapping.AddFieldMappingsAt("id", idFieldMapping)

	genreSlugsFieldMapping := bleve.NewTextFieldMapping()
	genreSlugsFieldMapping.Analyzer = keyword.Name
	genreSlugsFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("genre_slugs", genreSlugsFieldMapping)

	yearFieldMapping := bleve.NewNumericFieldMapping()
	yearFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("year", yearFieldMapping)

	runtimeFieldMapping := bleve.NewNumericFieldMapping()
	runtimeFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("runtime_minutes", runtimeFieldMapping)

	indexMapping.AddDocumentMapping("_default", docMapping)

	return indexMapping
}
