package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"docsearch/internal/model"
	"docsearch/internal/repository"
	"docsearch/internal/searchengine"
)

var (
	ErrIDRequired      = errors.New("id is required")
	ErrTitleRequired   = errors.New("title is required")
	ErrNotFound        = errors.New("document not found")
	ErrInvalidField    = errors.New("unknown autocomplete field")
	ErrInvalidArgument = errors.New("invalid argument")
)

// DocumentListResult is the service-level DTO for paginated documents.
type DocumentListResult struct {
	Items []model.Document `json:"data"`
	Total int64            `json:"total"`
}

// DocumentService defines the CRUD use cases plus engine index maintenance.
type DocumentService interface {
	// Create stores a new document and best-effort indexes it into the
	// full-text engines.
	Create(ctx context.Context, input model.DocumentInput) (*model.Document, error)

	// Get returns a single document by its ID.
	Get(ctx context.Context, id string) (*model.Document, error)

	// List returns documents using limit/offset and a total count.
	List(ctx context.Context, limit, offset int) (*DocumentListResult, error)

	// Update overwrites title/content/author and, when provided, category and
	// status; updated_at is refreshed. The stored document is re-indexed.
	Update(ctx context.Context, id string, input model.DocumentInput) (*model.Document, error)

	// Delete removes a document. The bool reports whether it existed; engines
	// are told to drop the document afterwards.
	Delete(ctx context.Context, id string) (bool, error)

	// IndexDocument pushes one stored document into every engine and reports
	// per-engine success.
	IndexDocument(ctx context.Context, id string) (*model.IndexingResult, error)

	// ReindexAll pushes every stored document into every engine.
	ReindexAll(ctx context.Context) (*model.ReindexResult, error)
}

type documentService struct {
	repo    repository.DocumentRepository
	engines []searchengine.Client
	logger  *zap.Logger
}

// NewDocumentService constructs a new DocumentService. engines may be empty;
// index sync then becomes a no-op.
func NewDocumentService(repo repository.DocumentRepository, engines []searchengine.Client, logger *zap.Logger) DocumentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &documentService{repo: repo, engines: engines, logger: logger}
}

func (s *documentService) Create(ctx context.Context, input model.DocumentInput) (*model.Document, error) {
	if input.Title == "" {
		return nil, ErrTitleRequired
	}

	doc := &model.Document{
		Title:   input.Title,
		Content: input.Content,
		Author:  input.Author,
	}
	if input.Category != nil {
		doc.Category = *input.Category
	}
	if input.Status != nil {
		doc.Status = *input.Status
	}

	stored, err := s.repo.Create(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("create document: %w", err)
	}

	s.syncIndex(ctx, stored)
	return stored, nil
}

func (s *documentService) Get(ctx context.Context, id string) (*model.Document, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	doc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return doc, nil
}

// List returns paginated documents without exposing repository types.
func (s *documentService) List(ctx context.Context, limit, offset int) (*DocumentListResult, error) {
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}

	res, err := s.repo.Search(ctx, repository.SearchParams{}, repository.PageRequest{Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	return &DocumentListResult{Items: res.Items, Total: res.Total}, nil
}

func (s *documentService) Update(ctx context.Context, id string, input model.DocumentInput) (*model.Document, error) {
	if id == "" {
		return nil, ErrIDRequired
	}

	doc, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	doc.Title = input.Title
	doc.Content = input.Content
	doc.Author = input.Author
	// Category and status keep their stored value unless explicitly supplied.
	if input.Category != nil {
		doc.Category = *input.Category
	}
	if input.Status != nil {
		doc.Status = *input.Status
	}

	stored, err := s.repo.Update(ctx, doc)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update document: %w", err)
	}

	s.syncIndex(ctx, stored)
	return stored, nil
}

func (s *documentService) Delete(ctx context.Context, id string) (bool, error) {
	if id == "" {
		return false, ErrIDRequired
	}

	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return false, err
	}
	if !deleted {
		return false, nil
	}

	for _, eng := range s.engines {
		if err := eng.DeleteDocument(ctx, id); err != nil {
			s.logger.Warn("engine delete failed",
				zap.String("engine", eng.Name()),
				zap.String("document_id", id),
				zap.Error(err),
			)
		}
	}
	return true, nil
}

func (s *documentService) IndexDocument(ctx context.Context, id string) (*model.IndexingResult, error) {
	doc, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	result := &model.IndexingResult{DocumentID: id}
	for _, eng := range s.engines {
		ok := true
		if err := eng.IndexDocument(ctx, doc); err != nil {
			ok = false
			s.logger.Warn("engine index failed",
				zap.String("engine", eng.Name()),
				zap.String("document_id", id),
				zap.Error(err),
			)
		}
		switch eng.Name() {
		case searchengine.EngineSolr:
			result.SolrSuccess = ok
		case searchengine.EngineOpenSearch:
			result.OpenSearchSuccess = ok
		case searchengine.EngineTypeSense:
			result.TypeSenseSuccess = ok
		}
	}
	result.Message = fmt.Sprintf("Indexed in Solr: %t, OpenSearch: %t, TypeSense: %t",
		result.SolrSuccess, result.OpenSearchSuccess, result.TypeSenseSuccess)
	return result, nil
}

func (s *documentService) ReindexAll(ctx context.Context) (*model.ReindexResult, error) {
	docs, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	result := &model.ReindexResult{TotalDocuments: len(docs)}
	for i := range docs {
		failed := false
		for _, eng := range s.engines {
			if err := eng.IndexDocument(ctx, &docs[i]); err != nil {
				failed = true
				s.logger.Warn("reindex failed",
					zap.String("engine", eng.Name()),
					zap.String("document_id", docs[i].ID),
					zap.Error(err),
				)
			}
		}
		if failed {
			result.FailureCount++
		} else {
			result.SuccessCount++
		}
	}
	result.Message = fmt.Sprintf("Reindexed %d documents, %d failures",
		result.SuccessCount, result.FailureCount)
	return result, nil
}

// syncIndex pushes the document into every engine. Indexing is best-effort:
// the relational store is authoritative and a missing engine must never fail
// a CRUD call.
func (s *documentService) syncIndex(ctx context.Context, doc *model.Document) {
	for _, eng := range s.engines {
		if err := eng.IndexDocument(ctx, doc); err != nil {
			s.logger.Warn("engine index failed",
				zap.String("engine", eng.Name()),
				zap.String("document_id", doc.ID),
				zap.Error(err),
			)
		}
	}
}
