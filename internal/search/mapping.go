package search

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
	"github.com/blevesearch/bleve/v2/mapping"
)

// buildIndexMapping creates the Bleve index mapping for search
// documents: full-text fields with English stemming for names and
// descriptive text, keyword fields for ids and the type discriminator,
// numeric fields for date sorting.
func buildIndexMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultAnalyzer = en.AnalyzerName

	docMapping := bleve.NewDocumentMapping()

	// --- Text fields (full-text searchable) ---

	// Name is the primary search target: pseudonym or title.
	nameFieldMapping := bleve.NewTextFieldMapping()
	nameFieldMapping.Analyzer = en.AnalyzerName
	nameFieldMapping.Store = true
	nameFieldMapping.IncludeTermVectors = true // For highlighting
	docMapping.AddFieldMappingsAt("name", nameFieldMapping)

	firstNameFieldMapping := bleve.NewTextFieldMapping()
	firstNameFieldMapping.Analyzer = en.AnalyzerName
	firstNameFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("first_name", firstNameFieldMapping)

	lastNameFieldMapping := bleve.NewTextFieldMapping()
	lastNameFieldMapping.Analyzer = en.AnalyzerName
	lastNameFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("last_name", lastNameFieldMapping)

	placeFieldMapping := bleve.NewTextFieldMapping()
	placeFieldMapping.Analyzer = en.AnalyzerName
	placeFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("place", placeFieldMapping)

	// Description is searchable but not stored (can be large).
	descFieldMapping := bleve.NewTextFieldMapping()
	descFieldMapping.Analyzer = en.AnalyzerName
	descFieldMapping.Store = false
	docMapping.AddFieldMappingsAt("description", descFieldMapping)

	// --- Keyword fields (exact match) ---

	typeFieldMapping := bleve.NewTextFieldMapping()
	typeFieldMapping.Analyzer = keyword.Name
	docMapping.AddFieldMappingsAt("type", typeFieldMapping)

	idFieldMapping := bleve.NewTextFieldMapping()
	idFieldMapping.Analyzer = keyword.Name
	docMapping.AddFieldMappingsAt("id", idFieldMapping)

	// Owner id, for visibility filtering of book results.
	authorFieldMapping := bleve.NewTextFieldMapping()
	authorFieldMapping.Analyzer = keyword.Name
	authorFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("author", authorFieldMapping)

	// --- Boolean / numeric fields ---

	isPublicFieldMapping := bleve.NewBooleanFieldMapping()
	isPublicFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("is_public", isPublicFieldMapping)

	beginDateFieldMapping := bleve.NewNumericFieldMapping()
	beginDateFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("begin_date", beginDateFieldMapping)

	createdAtFieldMapping := bleve.NewNumericFieldMapping()
	createdAtFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("created_at", createdAtFieldMapping)

	updatedAtFieldMapping := bleve.NewNumericFieldMapping()
	updatedAtFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("updated_at", updatedAtFieldMapping)

	indexMapping.AddDocumentMapping("_default", docMapping)

	return indexMapping
}
