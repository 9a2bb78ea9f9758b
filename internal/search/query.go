package search

import (
	"context"
	"fmt"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
)

// DefaultLimit caps search results when the caller doesn't say
// otherwise.
const DefaultLimit = 10

// BookHit is a book search result with the fields needed for
// visibility filtering, so callers don't have to load each book.
type BookHit struct {
	ID        string
	Author    string
	IsPublic  bool
	BeginDate int64
}

// SearchAuthors returns author ids matching the query on pseudonym,
// first name, or last name, by relevance.
func (s *SearchIndex) SearchAuthors(ctx context.Context, queryString string, limit int) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = DefaultLimit
	}

	name := bleve.NewMatchQuery(queryString)
	name.SetField("name")
	name.SetBoost(2.0)
	name.SetFuzziness(1)

	firstName := bleve.NewMatchQuery(queryString)
	firstName.SetField("first_name")
	firstName.SetFuzziness(1)

	lastName := bleve.NewMatchQuery(queryString)
	lastName.SetField("last_name")
	lastName.SetFuzziness(1)

	searchQuery := bleve.NewConjunctionQuery(
		typeFilter(DocTypeAuthor),
		bleve.NewDisjunctionQuery(name, firstName, lastName),
	)

	req := bleve.NewSearchRequestOptions(searchQuery, limit, 0, false)

	result, err := s.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("author search: %w", err)
	}

	ids := make([]string, 0, len(result.Hits))
	for _, hit := range result.Hits {
		ids = append(ids, hit.ID)
	}
	return ids, nil
}

// SearchBooks returns book hits matching the query on title, place, or
// description, by relevance.
func (s *SearchIndex) SearchBooks(ctx context.Context, queryString string, limit int) ([]BookHit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = DefaultLimit
	}

	title := bleve.NewMatchQuery(queryString)
	title.SetField("name")
	title.SetBoost(2.0)
	title.SetFuzziness(1)

	place := bleve.NewMatchQuery(queryString)
	place.SetField("place")
	place.SetFuzziness(1)

	description := bleve.NewMatchQuery(queryString)
	description.SetField("description")

	searchQuery := bleve.NewConjunctionQuery(
		typeFilter(DocTypeBook),
		bleve.NewDisjunctionQuery(title, place, description),
	)

	req := bleve.NewSearchRequestOptions(searchQuery, limit, 0, false)
	req.Fields = []string{"author", "is_public", "begin_date"}

	result, err := s.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("book search: %w", err)
	}

	hits := make([]BookHit, 0, len(result.Hits))
	for _, hit := range result.Hits {
		bookHit := BookHit{ID: hit.ID}
		if author, ok := hit.Fields["author"].(string); ok {
			bookHit.Author = author
		}
		if isPublic, ok := hit.Fields["is_public"].(bool); ok {
			bookHit.IsPublic = isPublic
		}
		if beginDate, ok := hit.Fields["begin_date"].(float64); ok {
			bookHit.BeginDate = int64(beginDate)
		}
		hits = append(hits, bookHit)
	}
	return hits, nil
}

func typeFilter(t DocType) query.Query {
	q := bleve.NewTermQuery(string(t))
	q.SetField("type")
	return q
}
