package service

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"docsearch/internal/metrics"
	"docsearch/internal/model"
	"docsearch/internal/permission"
	"docsearch/internal/repository"
	"docsearch/internal/searchengine"
)

// Autocomplete prefixes shorter than this are rejected.
const minAutocompletePrefix = 2

const defaultAutocompleteLimit = 10

// SearchService is the unified search orchestrator. It picks a strategy per
// query: structured filters go straight to the relational store, free text
// fans out to the full-text engines in priority order with the relational
// store as last resort. Backend failures degrade, they never surface.
type SearchService interface {
	// SearchDocuments runs one search and returns a permission-filtered page.
	SearchDocuments(ctx context.Context, q model.SearchQuery, principal string) (*model.ResultPage, error)

	// Autocomplete suggests completions for a prefix from one field or,
	// with model.AutocompleteFieldAll, merged across title/author/category.
	Autocomplete(ctx context.Context, prefix, field string, limit int, principal string) ([]model.AutocompleteCandidate, error)

	// GetFacets computes the category/status/author breakdowns for a filter
	// set. Each dimension excludes its own filter.
	GetFacets(ctx context.Context, q model.SearchQuery, principal string) (*model.Facets, error)

	// SearchWithEngine queries a single named engine directly, bypassing the
	// fallback chain. Backend errors are surfaced; this is a diagnostics path.
	SearchWithEngine(ctx context.Context, engine, term string) ([]model.EngineHit, error)

	// EngineHealth pings every engine and reports reachability by name.
	EngineHealth(ctx context.Context) map[string]bool
}

type searchService struct {
	repo repository.DocumentRepository
	// Fallback priority order. The first engine that answers wins.
	engines []searchengine.Client
	perm    permission.Filter
	sink    metrics.Sink
	logger  *zap.Logger
}

// NewSearchService constructs the orchestrator. engines must be listed in
// fallback priority order.
func NewSearchService(
	repo repository.DocumentRepository,
	engines []searchengine.Client,
	perm permission.Filter,
	sink metrics.Sink,
	logger *zap.Logger,
) SearchService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &searchService{repo: repo, engines: engines, perm: perm, sink: sink, logger: logger}
}

func (s *searchService) SearchDocuments(ctx context.Context, q model.SearchQuery, principal string) (*model.ResultPage, error) {
	start := time.Now()
	page, err := s.searchDocuments(ctx, q, principal)
	if err != nil {
		s.sink.RecordOperation("search_error", time.Since(start))
		return nil, err
	}
	s.sink.RecordOperation("search", time.Since(start))
	return page, nil
}

func (s *searchService) searchDocuments(ctx context.Context, q model.SearchQuery, principal string) (*model.ResultPage, error) {
	page, size := normalizePaging(q.Page, q.Size)

	if q.HasText() {
		term := strings.TrimSpace(q.Query)
		for _, eng := range s.engines {
			hits, err := eng.Search(ctx, term)
			if err != nil {
				s.logger.Warn("full-text engine failed, trying next",
					zap.String("engine", eng.Name()),
					zap.Error(err),
				)
				continue
			}
			return s.pageFromHits(ctx, q, hits, page, size, principal)
		}
		s.logger.Warn("all full-text engines unavailable, using relational search",
			zap.String("query", term),
		)
	}

	return s.searchRelational(ctx, q, page, size, principal)
}

// pageFromHits builds a result page from one engine's ranked hits. Engines
// return projections, so content documents carry only the indexed fields.
func (s *searchService) pageFromHits(ctx context.Context, q model.SearchQuery, hits []model.EngineHit, page, size int, principal string) (*model.ResultPage, error) {
	docs := make([]model.Document, 0, len(hits))
	for _, h := range hits {
		docs = append(docs, model.Document{
			ID:      h.ID,
			Title:   h.Title,
			Content: h.Content,
			Author:  h.Author,
		})
	}

	allowed, err := s.filterAllowed(ctx, docs, principal)
	if err != nil {
		return nil, err
	}

	total := int64(len(allowed))
	totalPages := pageCount(total, size)
	lo := page * size
	if lo > len(allowed) {
		lo = len(allowed)
	}
	hi := lo + size
	if hi > len(allowed) {
		hi = len(allowed)
	}

	rp := &model.ResultPage{
		Content:       allowed[lo:hi],
		TotalElements: total,
		TotalPages:    totalPages,
		CurrentPage:   page,
		PageSize:      size,
		HasNext:       page < totalPages-1,
		HasPrevious:   page > 0,
	}
	if q.IncludeFacets {
		rp.Facets, err = s.buildFacets(ctx, paramsFromQuery(q))
		if err != nil {
			return nil, err
		}
	}
	return rp, nil
}

func (s *searchService) searchRelational(ctx context.Context, q model.SearchQuery, page, size int, principal string) (*model.ResultPage, error) {
	params := paramsFromQuery(q)
	res, err := s.repo.Search(ctx, params, repository.PageRequest{
		Offset:   page * size,
		Limit:    size,
		SortBy:   q.SortBy,
		SortDesc: strings.EqualFold(q.SortOrder, "desc"),
	})
	if err != nil {
		return nil, fmt.Errorf("relational search: %w", err)
	}

	allowed, err := s.filterAllowed(ctx, res.Items, principal)
	if err != nil {
		return nil, err
	}

	total := res.Total
	if len(allowed) != len(res.Items) {
		// Permission filtering happens after retrieval, so the authoritative
		// count would include rows the caller cannot see. Reporting the
		// filtered size under-counts when filtering crosses page boundaries;
		// that trade-off is accepted over a second filtered count query.
		total = int64(len(allowed))
	}
	totalPages := pageCount(total, size)

	rp := &model.ResultPage{
		Content:       allowed,
		TotalElements: total,
		TotalPages:    totalPages,
		CurrentPage:   page,
		PageSize:      size,
		HasNext:       page < totalPages-1,
		HasPrevious:   page > 0,
	}
	if q.IncludeFacets {
		rp.Facets, err = s.buildFacets(ctx, params)
		if err != nil {
			return nil, err
		}
	}
	return rp, nil
}

func (s *searchService) Autocomplete(ctx context.Context, prefix, field string, limit int, principal string) ([]model.AutocompleteCandidate, error) {
	start := time.Now()
	out, err := s.autocomplete(ctx, prefix, field, limit)
	if err != nil {
		s.sink.RecordOperation("autocomplete_error", time.Since(start))
		return nil, err
	}
	s.sink.RecordOperation("autocomplete", time.Since(start))
	return out, nil
}

func (s *searchService) autocomplete(ctx context.Context, prefix, field string, limit int) ([]model.AutocompleteCandidate, error) {
	prefix = strings.TrimSpace(prefix)
	if utf8.RuneCountInString(prefix) < minAutocompletePrefix {
		return nil, fmt.Errorf("%w: prefix must be at least %d characters", ErrInvalidArgument, minAutocompletePrefix)
	}
	if limit <= 0 {
		limit = defaultAutocompleteLimit
	}

	field = strings.ToUpper(strings.TrimSpace(field))
	if field == "" {
		field = model.AutocompleteFieldAll
	}

	switch field {
	case model.AutocompleteFieldTitle:
		return s.fieldCandidates(ctx, s.repo.AutocompleteTitles, model.AutocompleteFieldTitle, prefix, limit, limit)
	case model.AutocompleteFieldAuthor:
		return s.fieldCandidates(ctx, s.repo.AutocompleteAuthors, model.AutocompleteFieldAuthor, prefix, limit, limit)
	case model.AutocompleteFieldCategory:
		return s.fieldCandidates(ctx, s.repo.AutocompleteCategories, model.AutocompleteFieldCategory, prefix, limit, limit)
	case model.AutocompleteFieldAll:
		return s.mergedCandidates(ctx, prefix, limit)
	default:
		return nil, fmt.Errorf("%w: %s", ErrInvalidField, field)
	}
}

type autocompleteQuery func(ctx context.Context, prefix string, limit int) ([]string, error)

func (s *searchService) fieldCandidates(ctx context.Context, query autocompleteQuery, field, prefix string, fetch, limit int) ([]model.AutocompleteCandidate, error) {
	values, err := query(ctx, prefix, fetch)
	if err != nil {
		return nil, fmt.Errorf("autocomplete %s: %w", strings.ToLower(field), err)
	}
	out := rankCandidates(toCandidates(values, field), prefix)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// mergedCandidates queries each field independently, ranks each sub-list on
// its own, then concatenates title, author, category and truncates. Titles
// are fetched at double the limit since they dominate useful suggestions.
// There is deliberately no global re-sort across fields.
func (s *searchService) mergedCandidates(ctx context.Context, prefix string, limit int) ([]model.AutocompleteCandidate, error) {
	titles, err := s.fieldCandidates(ctx, s.repo.AutocompleteTitles, model.AutocompleteFieldTitle, prefix, 2*limit, 2*limit)
	if err != nil {
		return nil, err
	}
	authors, err := s.fieldCandidates(ctx, s.repo.AutocompleteAuthors, model.AutocompleteFieldAuthor, prefix, limit, limit)
	if err != nil {
		return nil, err
	}
	categories, err := s.fieldCandidates(ctx, s.repo.AutocompleteCategories, model.AutocompleteFieldCategory, prefix, limit, limit)
	if err != nil {
		return nil, err
	}

	merged := make([]model.AutocompleteCandidate, 0, len(titles)+len(authors)+len(categories))
	merged = append(merged, titles...)
	merged = append(merged, authors...)
	merged = append(merged, categories...)
	if len(merged) > limit {
		merged = merged[:limit]
	}
	return merged, nil
}

func (s *searchService) GetFacets(ctx context.Context, q model.SearchQuery, principal string) (*model.Facets, error) {
	start := time.Now()
	facets, err := s.buildFacets(ctx, paramsFromQuery(q))
	if err != nil {
		s.sink.RecordOperation("facets_error", time.Since(start))
		return nil, err
	}
	s.sink.RecordOperation("facets", time.Since(start))
	return facets, nil
}

func (s *searchService) buildFacets(ctx context.Context, params repository.SearchParams) (*model.Facets, error) {
	categories, err := s.repo.CategoryFacets(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("category facets: %w", err)
	}
	statuses, err := s.repo.StatusFacets(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("status facets: %w", err)
	}
	authors, err := s.repo.AuthorFacets(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("author facets: %w", err)
	}
	return &model.Facets{
		Categories: toFacets(categories),
		Statuses:   toFacets(statuses),
		Authors:    toFacets(authors),
	}, nil
}

func (s *searchService) SearchWithEngine(ctx context.Context, engine, term string) ([]model.EngineHit, error) {
	for _, eng := range s.engines {
		if eng.Name() == engine {
			return eng.Search(ctx, term)
		}
	}
	return nil, fmt.Errorf("%w: unknown engine %q", ErrInvalidArgument, engine)
}

func (s *searchService) EngineHealth(ctx context.Context) map[string]bool {
	health := make(map[string]bool, len(s.engines))
	for _, eng := range s.engines {
		health[eng.Name()] = eng.Ping(ctx) == nil
	}
	return health
}

// filterAllowed drops documents the principal may not see, preserving order.
func (s *searchService) filterAllowed(ctx context.Context, docs []model.Document, principal string) ([]model.Document, error) {
	// Anonymous callers are not filtered.
	if principal == "" {
		return docs, nil
	}
	if len(docs) == 0 {
		return []model.Document{}, nil
	}
	ids := make([]string, 0, len(docs))
	for _, d := range docs {
		ids = append(ids, d.ID)
	}
	allowed, err := s.perm.FilterAllowed(ctx, ids, principal)
	if err != nil {
		return nil, fmt.Errorf("permission filter: %w", err)
	}
	keep := make(map[string]struct{}, len(allowed))
	for _, id := range allowed {
		keep[id] = struct{}{}
	}
	out := make([]model.Document, 0, len(docs))
	for _, d := range docs {
		if _, ok := keep[d.ID]; ok {
			out = append(out, d)
		}
	}
	return out, nil
}

func paramsFromQuery(q model.SearchQuery) repository.SearchParams {
	return repository.SearchParams{
		Query:         strings.TrimSpace(q.Query),
		Category:      q.Category,
		Status:        q.Status,
		Author:        q.Author,
		CreatedAfter:  q.CreatedAfter,
		CreatedBefore: q.CreatedBefore,
		UpdatedAfter:  q.UpdatedAfter,
		UpdatedBefore: q.UpdatedBefore,
	}
}

func normalizePaging(page, size int) (int, int) {
	if page < 0 {
		page = 0
	}
	if size <= 0 {
		size = model.DefaultPageSize
	}
	if size > model.MaxPageSize {
		size = model.MaxPageSize
	}
	return page, size
}

func pageCount(total int64, size int) int {
	if total <= 0 {
		return 0
	}
	return int((total + int64(size) - 1) / int64(size))
}

func toFacets(rows []repository.FacetRow) []model.Facet {
	out := make([]model.Facet, 0, len(rows))
	for _, r := range rows {
		out = append(out, model.Facet{Value: r.Value, Count: r.Count, Label: r.Value})
	}
	return out
}
