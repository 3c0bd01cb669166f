package repository

import (
	"context"
	"time"

	"docsearch/internal/model"
)

// SearchParams holds the structured filter set for document queries.
// Every field is independently optional; blank/nil fields contribute no
// predicate. Active predicates combine with AND.
type SearchParams struct {
	Query         string
	Category      string
	Status        string
	Author        string
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
	UpdatedAfter  *time.Time
	UpdatedBefore *time.Time
}

// PageRequest holds offset pagination plus sorting. SortBy must be one of the
// whitelisted document columns; implementations fall back to created_at DESC
// for anything else.
type PageRequest struct {
	Offset   int
	Limit    int
	SortBy   string
	SortDesc bool
}

// PageResult is a generic pagination result wrapper.
// T is typically a model type.
type PageResult[T any] struct {
	Items []T
	Total int64
}

// FacetRow is one raw (value, count) row of a GROUP BY facet query.
type FacetRow struct {
	Value string
	Count int64
}

// DocumentRepository defines data access for documents using SQL queries only.
// No business logic here — strictly persistence operations.
type DocumentRepository interface {
	// Create inserts a new document row. ID and both timestamps are assigned
	// by the database; the stored record is returned.
	Create(ctx context.Context, doc *model.Document) (*model.Document, error)

	// FindByID returns a document by its ID.
	FindByID(ctx context.Context, id string) (*model.Document, error)

	// FindAll returns every document, newest first. Used by full reindex.
	FindAll(ctx context.Context) ([]model.Document, error)

	// Update overwrites the mutable fields of an existing row and refreshes
	// updated_at. Returns the stored record.
	Update(ctx context.Context, doc *model.Document) (*model.Document, error)

	// Delete removes a document by ID. The bool reports whether a row was
	// actually deleted; deleting an absent ID is not an error.
	Delete(ctx context.Context, id string) (bool, error)

	// ExistsByID reports whether a document with the given ID exists.
	ExistsByID(ctx context.Context, id string) (bool, error)

	// Search returns one page of documents matching the filter set, plus the
	// total match count computed with the same predicates.
	Search(ctx context.Context, p SearchParams, page PageRequest) (*PageResult[model.Document], error)

	// Facet counts per dimension. Each applies every filter in p except the
	// one for its own dimension, excludes NULL/empty grouping values, and
	// orders rows by value ascending.
	CategoryFacets(ctx context.Context, p SearchParams) ([]FacetRow, error)
	StatusFacets(ctx context.Context, p SearchParams) ([]FacetRow, error)
	AuthorFacets(ctx context.Context, p SearchParams) ([]FacetRow, error)

	// Prefix autocomplete per field: case-insensitive prefix match, distinct,
	// ordered ascending, limited.
	AutocompleteTitles(ctx context.Context, prefix string, limit int) ([]string, error)
	AutocompleteAuthors(ctx context.Context, prefix string, limit int) ([]string, error)
	AutocompleteCategories(ctx context.Context, prefix string, limit int) ([]string, error)
}
