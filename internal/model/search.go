package model

import (
	"strings"
	"time"
)

// Sortable fields accepted by SearchQuery. Anything else silently falls back
// to created_at DESC.
const (
	SortByTitle     = "title"
	SortByAuthor    = "author"
	SortByCategory  = "category"
	SortByStatus    = "status"
	SortByCreatedAt = "created_at"
	SortByUpdatedAt = "updated_at"
)

// Pagination bounds.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// SearchQuery is the full set of search inputs. Every filter is independently
// optional; active filters combine with AND.
type SearchQuery struct {
	Query         string     `json:"query"`
	Category      string     `json:"category"`
	Status        string     `json:"status"`
	Author        string     `json:"author"`
	CreatedAfter  *time.Time `json:"created_after"`
	CreatedBefore *time.Time `json:"created_before"`
	UpdatedAfter  *time.Time `json:"updated_after"`
	UpdatedBefore *time.Time `json:"updated_before"`
	SortBy        string     `json:"sort_by"`
	SortOrder     string     `json:"sort_order"`
	Page          int        `json:"page"`
	Size          int        `json:"size"`
	IncludeFacets bool       `json:"include_facets"`
}

// HasText reports whether the query carries a free-text term.
func (q SearchQuery) HasText() bool {
	return strings.TrimSpace(q.Query) != ""
}

// HasFilters reports whether any structured filter (everything except the
// free-text term) is active.
func (q SearchQuery) HasFilters() bool {
	return strings.TrimSpace(q.Category) != "" ||
		strings.TrimSpace(q.Status) != "" ||
		strings.TrimSpace(q.Author) != "" ||
		q.CreatedAfter != nil ||
		q.CreatedBefore != nil ||
		q.UpdatedAfter != nil ||
		q.UpdatedBefore != nil
}

// ResultPage is a single page of search results with pagination metadata.
// TotalElements reflects permission filtering when a principal was supplied.
type ResultPage struct {
	Content       []Document `json:"content"`
	TotalElements int64      `json:"total_elements"`
	TotalPages    int        `json:"total_pages"`
	CurrentPage   int        `json:"current_page"`
	PageSize      int        `json:"page_size"`
	HasNext       bool       `json:"has_next"`
	HasPrevious   bool       `json:"has_previous"`
	Facets        *Facets    `json:"facets,omitempty"`
}

// Facet is one (value, count) row of a facet breakdown.
type Facet struct {
	Value string `json:"value"`
	Count int64  `json:"count"`
	Label string `json:"label"`
}

// Facets groups facet rows per dimension. Each dimension is computed under
// all active filters except its own.
type Facets struct {
	Categories []Facet `json:"categories"`
	Statuses   []Facet `json:"statuses"`
	Authors    []Facet `json:"authors"`
}

// EngineHit is a single ranked hit from one full-text backend. Score is on
// the engine's own scale and not comparable across engines.
type EngineHit struct {
	ID      string  `json:"id"`
	Title   string  `json:"title"`
	Content string  `json:"content"`
	Author  string  `json:"author"`
	Score   float64 `json:"score"`
	Engine  string  `json:"engine"`
}

// ComparisonReport is the side-by-side result of querying all engines with
// the same term. Times are wall-clock milliseconds measured per engine in
// isolation; a failed engine contributes an empty hit list.
type ComparisonReport struct {
	Query             string      `json:"query"`
	SolrResults       []EngineHit `json:"solr_results"`
	OpenSearchResults []EngineHit `json:"open_search_results"`
	TypeSenseResults  []EngineHit `json:"type_sense_results"`
	SolrTimeMs        int64       `json:"solr_time_ms"`
	OpenSearchTimeMs  int64       `json:"open_search_time_ms"`
	TypeSenseTimeMs   int64       `json:"type_sense_time_ms"`
}

// Autocomplete source fields.
const (
	AutocompleteFieldAll      = "ALL"
	AutocompleteFieldTitle    = "TITLE"
	AutocompleteFieldAuthor   = "AUTHOR"
	AutocompleteFieldCategory = "CATEGORY"
)

// AutocompleteCandidate is one suggestion with the field it came from.
type AutocompleteCandidate struct {
	Text       string `json:"text"`
	Field      string `json:"field"`
	DocumentID string `json:"document_id,omitempty"`
}

// IndexingResult reports per-engine indexing success for one document.
type IndexingResult struct {
	DocumentID        string `json:"document_id"`
	SolrSuccess       bool   `json:"solr_success"`
	OpenSearchSuccess bool   `json:"open_search_success"`
	TypeSenseSuccess  bool   `json:"type_sense_success"`
	Message           string `json:"message"`
}

// ReindexResult reports the outcome of a full reindex across all engines.
type ReindexResult struct {
	TotalDocuments int    `json:"total_documents"`
	SuccessCount   int    `json:"success_count"`
	FailureCount   int    `json:"failure_count"`
	Message        string `json:"message"`
}
