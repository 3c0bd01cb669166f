package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"docsearch/internal/model"
	"docsearch/internal/repository"
	repomocks "docsearch/internal/repository/mocks"
	"docsearch/internal/searchengine"
	enginemocks "docsearch/internal/searchengine/mocks"
)

func strPtr(s string) *string { return &s }

func newEngineMocks() (*enginemocks.MockClient, *enginemocks.MockClient, *enginemocks.MockClient, []searchengine.Client) {
	solr := &enginemocks.MockClient{EngineName: searchengine.EngineSolr}
	osv := &enginemocks.MockClient{EngineName: searchengine.EngineOpenSearch}
	ts := &enginemocks.MockClient{EngineName: searchengine.EngineTypeSense}
	return solr, osv, ts, []searchengine.Client{solr, osv, ts}
}

func TestDocumentServiceCreate(t *testing.T) {
	repo := new(repomocks.MockDocumentRepository)
	solr, os, ts, engines := newEngineMocks()
	svc := NewDocumentService(repo, engines, zap.NewNop())

	stored := &model.Document{ID: "doc-1", Title: "Go Guide", Category: "guides", Status: model.StatusDraft}
	repo.On("Create", mock.Anything, mock.MatchedBy(func(d *model.Document) bool {
		return d.Title == "Go Guide" && d.Category == "guides" && d.Status == model.StatusDraft
	})).Return(stored, nil)
	for _, eng := range []*enginemocks.MockClient{solr, os, ts} {
		eng.On("IndexDocument", mock.Anything, stored).Return(nil)
	}

	got, err := svc.Create(context.Background(), model.DocumentInput{
		Title:    "Go Guide",
		Category: strPtr("guides"),
		Status:   strPtr(model.StatusDraft),
	})

	require.NoError(t, err)
	assert.Equal(t, "doc-1", got.ID)
	repo.AssertExpectations(t)
	solr.AssertExpectations(t)
}

func TestDocumentServiceCreateRequiresTitle(t *testing.T) {
	repo := new(repomocks.MockDocumentRepository)
	svc := NewDocumentService(repo, nil, zap.NewNop())

	_, err := svc.Create(context.Background(), model.DocumentInput{})

	assert.ErrorIs(t, err, ErrTitleRequired)
	repo.AssertNotCalled(t, "Create")
}

func TestDocumentServiceCreateSurvivesEngineFailure(t *testing.T) {
	repo := new(repomocks.MockDocumentRepository)
	solr, os, ts, engines := newEngineMocks()
	svc := NewDocumentService(repo, engines, zap.NewNop())

	stored := &model.Document{ID: "doc-1", Title: "Go Guide"}
	repo.On("Create", mock.Anything, mock.Anything).Return(stored, nil)
	solr.On("IndexDocument", mock.Anything, stored).Return(searchengine.ErrUnavailable)
	os.On("IndexDocument", mock.Anything, stored).Return(nil)
	ts.On("IndexDocument", mock.Anything, stored).Return(nil)

	got, err := svc.Create(context.Background(), model.DocumentInput{Title: "Go Guide"})

	require.NoError(t, err)
	assert.Equal(t, stored, got)
}

func TestDocumentServiceGetNotFound(t *testing.T) {
	repo := new(repomocks.MockDocumentRepository)
	svc := NewDocumentService(repo, nil, zap.NewNop())

	repo.On("FindByID", mock.Anything, "missing").Return(nil, sql.ErrNoRows)

	_, err := svc.Get(context.Background(), "missing")

	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDocumentServiceUpdateKeepsUnsetFields(t *testing.T) {
	repo := new(repomocks.MockDocumentRepository)
	svc := NewDocumentService(repo, nil, zap.NewNop())

	existing := &model.Document{ID: "doc-1", Title: "Old", Category: "guides", Status: model.StatusApproved}
	repo.On("FindByID", mock.Anything, "doc-1").Return(existing, nil)
	repo.On("Update", mock.Anything, mock.MatchedBy(func(d *model.Document) bool {
		// category and status were not supplied, so the stored values survive
		return d.Title == "New" && d.Category == "guides" && d.Status == model.StatusApproved
	})).Return(&model.Document{ID: "doc-1", Title: "New", Category: "guides", Status: model.StatusApproved}, nil)

	got, err := svc.Update(context.Background(), "doc-1", model.DocumentInput{Title: "New"})

	require.NoError(t, err)
	assert.Equal(t, "New", got.Title)
	repo.AssertExpectations(t)
}

func TestDocumentServiceDelete(t *testing.T) {
	repo := new(repomocks.MockDocumentRepository)
	solr, os, ts, engines := newEngineMocks()
	svc := NewDocumentService(repo, engines, zap.NewNop())

	repo.On("Delete", mock.Anything, "doc-1").Return(true, nil)
	for _, eng := range []*enginemocks.MockClient{solr, os, ts} {
		eng.On("DeleteDocument", mock.Anything, "doc-1").Return(nil)
	}

	deleted, err := svc.Delete(context.Background(), "doc-1")

	require.NoError(t, err)
	assert.True(t, deleted)
	solr.AssertExpectations(t)
}

func TestDocumentServiceDeleteAbsentID(t *testing.T) {
	repo := new(repomocks.MockDocumentRepository)
	solr, _, _, engines := newEngineMocks()
	svc := NewDocumentService(repo, engines, zap.NewNop())

	repo.On("Delete", mock.Anything, "missing").Return(false, nil)

	deleted, err := svc.Delete(context.Background(), "missing")

	require.NoError(t, err)
	assert.False(t, deleted)
	solr.AssertNotCalled(t, "DeleteDocument")
}

func TestDocumentServiceIndexDocument(t *testing.T) {
	repo := new(repomocks.MockDocumentRepository)
	solr, os, ts, engines := newEngineMocks()
	svc := NewDocumentService(repo, engines, zap.NewNop())

	doc := &model.Document{ID: "doc-1", Title: "Go Guide"}
	repo.On("FindByID", mock.Anything, "doc-1").Return(doc, nil)
	solr.On("IndexDocument", mock.Anything, doc).Return(errors.New("core offline"))
	os.On("IndexDocument", mock.Anything, doc).Return(nil)
	ts.On("IndexDocument", mock.Anything, doc).Return(nil)

	result, err := svc.IndexDocument(context.Background(), "doc-1")

	require.NoError(t, err)
	assert.False(t, result.SolrSuccess)
	assert.True(t, result.OpenSearchSuccess)
	assert.True(t, result.TypeSenseSuccess)
	assert.Equal(t, "doc-1", result.DocumentID)
}

func TestDocumentServiceReindexAll(t *testing.T) {
	repo := new(repomocks.MockDocumentRepository)
	solr, os, ts, engines := newEngineMocks()
	svc := NewDocumentService(repo, engines, zap.NewNop())

	docs := []model.Document{
		{ID: "doc-1", Title: "Go Guide"},
		{ID: "doc-2", Title: "SQL Primer"},
	}
	repo.On("FindAll", mock.Anything).Return(docs, nil)
	solr.On("IndexDocument", mock.Anything, &docs[0]).Return(nil)
	solr.On("IndexDocument", mock.Anything, &docs[1]).Return(errors.New("core offline"))
	for _, eng := range []*enginemocks.MockClient{os, ts} {
		eng.On("IndexDocument", mock.Anything, mock.Anything).Return(nil)
	}

	result, err := svc.ReindexAll(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, result.TotalDocuments)
	assert.Equal(t, 1, result.SuccessCount)
	assert.Equal(t, 1, result.FailureCount)
}

func TestDocumentServiceList(t *testing.T) {
	repo := new(repomocks.MockDocumentRepository)
	svc := NewDocumentService(repo, nil, zap.NewNop())

	repo.On("Search", mock.Anything, repository.SearchParams{}, repository.PageRequest{Limit: 10, Offset: 0}).
		Return(&repository.PageResult[model.Document]{
			Items: []model.Document{{ID: "doc-1"}},
			Total: 1,
		}, nil)

	res, err := svc.List(context.Background(), 0, -3)

	require.NoError(t, err)
	assert.Len(t, res.Items, 1)
	assert.Equal(t, int64(1), res.Total)
}
