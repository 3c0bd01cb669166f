package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"docsearch/internal/http/middleware"
	"docsearch/internal/metrics"
	"docsearch/internal/model"
	"docsearch/internal/searchengine"
	"docsearch/internal/service"
	serviceMocks "docsearch/internal/service/mocks"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testMocks struct {
	docs   *serviceMocks.MockDocumentService
	search *serviceMocks.MockSearchService
	cmp    *serviceMocks.MockEngineComparator
}

func newTestApp(deps Dependencies) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler()})
	app.Use(middleware.RequestID())
	RegisterRoutes(app, deps)
	return app
}

func newMockedApp() (*fiber.App, *testMocks) {
	m := &testMocks{
		docs:   new(serviceMocks.MockDocumentService),
		search: new(serviceMocks.MockSearchService),
		cmp:    new(serviceMocks.MockEngineComparator),
	}
	app := newTestApp(Dependencies{
		Documents:  m.docs,
		Search:     m.search,
		Comparator: m.cmp,
		Metrics:    metrics.NewSearchMetrics(zap.NewNop()),
	})
	return app, m
}

func TestHealthCheck(t *testing.T) {
	db, dbMock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	app := newTestApp(Dependencies{
		DB:        db,
		Documents: new(serviceMocks.MockDocumentService),
		Search:    new(serviceMocks.MockSearchService),
		Metrics:   metrics.NewSearchMetrics(zap.NewNop()),
	})

	t.Run("healthy", func(t *testing.T) {
		dbMock.ExpectPing().WillReturnError(nil)

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body map[string]string
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "healthy", body["status"])
	})

	t.Run("unhealthy", func(t *testing.T) {
		dbMock.ExpectPing().WillReturnError(errors.New("db error"))

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

		var body errorPayload
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "SERVICE_UNAVAILABLE", body.Error.Code)
	})
}

func TestLivenessProbe(t *testing.T) {
	app, _ := newMockedApp()

	resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestSearchEngineHealth(t *testing.T) {
	app, m := newMockedApp()
	m.search.On("EngineHealth", mock.Anything).Return(map[string]bool{
		searchengine.EngineSolr:       true,
		searchengine.EngineOpenSearch: false,
		searchengine.EngineTypeSense:  true,
	})

	resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/health/search-engines", nil))

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Status  string          `json:"status"`
		Engines map[string]bool `json:"engines"`
	}
	json.NewDecoder(resp.Body).Decode(&body)
	assert.Equal(t, "degraded", body.Status)
	assert.False(t, body.Engines[searchengine.EngineOpenSearch])
}

func TestListDocuments(t *testing.T) {
	app, m := newMockedApp()

	t.Run("success", func(t *testing.T) {
		expectedRes := &service.DocumentListResult{
			Items: []model.Document{{ID: uuid.New().String(), Title: "Go Guide"}},
			Total: 1,
		}
		m.docs.On("List", mock.Anything, 10, 0).Return(expectedRes, nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/documents?limit=10&offset=0", nil))

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var result service.DocumentListResult
		json.NewDecoder(resp.Body).Decode(&result)
		assert.Len(t, result.Items, 1)
		m.docs.AssertExpectations(t)
	})

	t.Run("invalid limit", func(t *testing.T) {
		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/documents?limit=abc", nil))

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var body errorPayload
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "INVALID_LIMIT", body.Error.Code)
	})
}

func TestCreateDocument(t *testing.T) {
	app, m := newMockedApp()

	t.Run("success", func(t *testing.T) {
		stored := &model.Document{ID: uuid.New().String(), Title: "Go Guide"}
		m.docs.On("Create", mock.Anything, mock.MatchedBy(func(in model.DocumentInput) bool {
			return in.Title == "Go Guide"
		})).Return(stored, nil).Once()

		payload, _ := json.Marshal(map[string]string{"title": "Go Guide"})
		req := httptest.NewRequest(http.MethodPost, "/documents", bytes.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		m.docs.AssertExpectations(t)
	})

	t.Run("missing title", func(t *testing.T) {
		m.docs.On("Create", mock.Anything, mock.Anything).Return(nil, service.ErrTitleRequired).Once()

		req := httptest.NewRequest(http.MethodPost, "/documents", bytes.NewReader([]byte(`{}`)))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var body errorPayload
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "TITLE_REQUIRED", body.Error.Code)
	})
}

func TestGetDocument(t *testing.T) {
	app, m := newMockedApp()
	id := uuid.New().String()

	t.Run("success", func(t *testing.T) {
		m.docs.On("Get", mock.Anything, id).Return(&model.Document{ID: id, Title: "Go Guide"}, nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/documents/"+id, nil))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("invalid id", func(t *testing.T) {
		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/documents/not-a-uuid", nil))

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("not found", func(t *testing.T) {
		m.docs.On("Get", mock.Anything, id).Return(nil, service.ErrNotFound).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/documents/"+id, nil))

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		var body errorPayload
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "NOT_FOUND", body.Error.Code)
	})
}

func TestUpdateDocument(t *testing.T) {
	app, m := newMockedApp()
	id := uuid.New().String()

	m.docs.On("Update", mock.Anything, id, mock.MatchedBy(func(in model.DocumentInput) bool {
		// category absent from the body stays nil for partial semantics
		return in.Title == "New Title" && in.Category == nil
	})).Return(&model.Document{ID: id, Title: "New Title"}, nil).Once()

	payload, _ := json.Marshal(map[string]string{"title": "New Title"})
	req := httptest.NewRequest(http.MethodPut, "/documents/"+id, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp, _ := app.Test(req)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	m.docs.AssertExpectations(t)
}

func TestDeleteDocument(t *testing.T) {
	app, m := newMockedApp()
	id := uuid.New().String()

	t.Run("deleted", func(t *testing.T) {
		m.docs.On("Delete", mock.Anything, id).Return(true, nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodDelete, "/documents/"+id, nil))

		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	})

	t.Run("absent", func(t *testing.T) {
		m.docs.On("Delete", mock.Anything, id).Return(false, nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodDelete, "/documents/"+id, nil))

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestIndexDocument(t *testing.T) {
	app, m := newMockedApp()
	id := uuid.New().String()

	m.docs.On("IndexDocument", mock.Anything, id).Return(&model.IndexingResult{
		DocumentID:  id,
		SolrSuccess: true,
	}, nil).Once()

	resp, _ := app.Test(httptest.NewRequest(http.MethodPost, "/documents/"+id+"/index", nil))

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var result model.IndexingResult
	json.NewDecoder(resp.Body).Decode(&result)
	assert.True(t, result.SolrSuccess)
}

func TestReindexAll(t *testing.T) {
	app, m := newMockedApp()

	m.docs.On("ReindexAll", mock.Anything).Return(&model.ReindexResult{
		TotalDocuments: 8,
		SuccessCount:   8,
	}, nil).Once()

	resp, _ := app.Test(httptest.NewRequest(http.MethodPost, "/reindex", nil))

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestSearchDocuments(t *testing.T) {
	app, m := newMockedApp()

	t.Run("success with principal header", func(t *testing.T) {
		m.search.On("SearchDocuments", mock.Anything, mock.MatchedBy(func(q model.SearchQuery) bool {
			return q.Query == "go" && q.Size == 5
		}), "alice").Return(&model.ResultPage{
			Content:       []model.Document{{ID: uuid.New().String(), Title: "Go Guide"}},
			TotalElements: 1,
			TotalPages:    1,
			PageSize:      5,
		}, nil).Once()

		payload, _ := json.Marshal(map[string]any{"query": "go", "size": 5})
		req := httptest.NewRequest(http.MethodPost, "/documents/search", bytes.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set(PrincipalHeader, "alice")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var page model.ResultPage
		json.NewDecoder(resp.Body).Decode(&page)
		assert.Equal(t, int64(1), page.TotalElements)
		m.search.AssertExpectations(t)
	})

	t.Run("service error", func(t *testing.T) {
		m.search.On("SearchDocuments", mock.Anything, mock.Anything, "").
			Return(nil, errors.New("connection refused")).Once()

		req := httptest.NewRequest(http.MethodPost, "/documents/search", bytes.NewReader([]byte(`{}`)))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	})
}

func TestGetFacets(t *testing.T) {
	app, m := newMockedApp()

	m.search.On("GetFacets", mock.Anything, mock.MatchedBy(func(q model.SearchQuery) bool {
		return q.Category == "doc" && q.CreatedAfter != nil
	}), "").Return(&model.Facets{
		Categories: []model.Facet{{Value: "doc", Count: 4, Label: "doc"}},
	}, nil).Once()

	resp, _ := app.Test(httptest.NewRequest(http.MethodGet,
		"/documents/facets?category=doc&created_after=2026-01-01T00:00:00Z", nil))

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var facets model.Facets
	json.NewDecoder(resp.Body).Decode(&facets)
	require.Len(t, facets.Categories, 1)
	assert.Equal(t, int64(4), facets.Categories[0].Count)
}

func TestGetFacetsRejectsBadTime(t *testing.T) {
	app, _ := newMockedApp()

	resp, _ := app.Test(httptest.NewRequest(http.MethodGet,
		"/documents/facets?created_after=yesterday", nil))

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAutocomplete(t *testing.T) {
	app, m := newMockedApp()

	t.Run("success", func(t *testing.T) {
		m.search.On("Autocomplete", mock.Anything, "Java", model.AutocompleteFieldTitle, 10, "").
			Return([]model.AutocompleteCandidate{
				{Text: "java Tips", Field: model.AutocompleteFieldTitle},
				{Text: "Java Guide", Field: model.AutocompleteFieldTitle},
			}, nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet,
			"/documents/autocomplete?prefix=Java&field=TITLE", nil))

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body struct {
			Suggestions []model.AutocompleteCandidate `json:"suggestions"`
		}
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Len(t, body.Suggestions, 2)
	})

	t.Run("unknown field", func(t *testing.T) {
		m.search.On("Autocomplete", mock.Anything, "Java", "CONTENT", 10, "").
			Return(nil, service.ErrInvalidField).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet,
			"/documents/autocomplete?prefix=Java&field=CONTENT", nil))

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var body errorPayload
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "INVALID_FIELD", body.Error.Code)
	})

	t.Run("prefix too short", func(t *testing.T) {
		m.search.On("Autocomplete", mock.Anything, "j", model.AutocompleteFieldAll, 10, "").
			Return(nil, service.ErrInvalidArgument).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet,
			"/documents/autocomplete?prefix=j", nil))

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestSearchWithEngine(t *testing.T) {
	app, m := newMockedApp()

	t.Run("success", func(t *testing.T) {
		m.search.On("SearchWithEngine", mock.Anything, searchengine.EngineSolr, "go").
			Return([]model.EngineHit{{ID: uuid.New().String(), Title: "Go Guide"}}, nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/search/solr?q=go", nil))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("engine down", func(t *testing.T) {
		m.search.On("SearchWithEngine", mock.Anything, searchengine.EngineTypeSense, "go").
			Return(nil, searchengine.ErrUnavailable).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/search/typesense?q=go", nil))

		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	})

	t.Run("missing term", func(t *testing.T) {
		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/search/solr", nil))

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestCompareEngines(t *testing.T) {
	app, m := newMockedApp()

	m.cmp.On("Compare", mock.Anything, "go").Return(&model.ComparisonReport{
		Query:       "go",
		SolrResults: []model.EngineHit{},
	}).Once()

	resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/search/compare?q=go", nil))

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var report model.ComparisonReport
	json.NewDecoder(resp.Body).Decode(&report)
	assert.Equal(t, "go", report.Query)
}
