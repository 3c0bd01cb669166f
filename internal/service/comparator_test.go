package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"docsearch/internal/model"
	"docsearch/internal/searchengine"
	enginemocks "docsearch/internal/searchengine/mocks"
)

func TestCompareAllEnginesFailing(t *testing.T) {
	solr, osv, ts, _ := newEngineMocks()
	for _, eng := range []*enginemocks.MockClient{solr, osv, ts} {
		eng.On("Search", mock.Anything, "x").Return(nil, searchengine.ErrUnavailable)
	}
	cmp := NewEngineComparator(solr, osv, ts, zap.NewNop())

	report := cmp.Compare(context.Background(), "x")

	require.NotNil(t, report)
	assert.Equal(t, "x", report.Query)
	// empty but never nil, so the report always carries all three entries
	assert.NotNil(t, report.SolrResults)
	assert.NotNil(t, report.OpenSearchResults)
	assert.NotNil(t, report.TypeSenseResults)
	assert.Empty(t, report.SolrResults)
	assert.Empty(t, report.OpenSearchResults)
	assert.Empty(t, report.TypeSenseResults)
	assert.GreaterOrEqual(t, report.SolrTimeMs, int64(0))
	assert.GreaterOrEqual(t, report.OpenSearchTimeMs, int64(0))
	assert.GreaterOrEqual(t, report.TypeSenseTimeMs, int64(0))
}

func TestCompareIsolatesEngineFailures(t *testing.T) {
	solr, osv, ts, _ := newEngineMocks()
	hits := []model.EngineHit{{ID: "doc-1", Title: "Go Guide", Score: 1.5}}
	solr.On("Search", mock.Anything, "go").Return(hits, nil)
	osv.On("Search", mock.Anything, "go").Return(nil, searchengine.ErrUnavailable)
	ts.On("Search", mock.Anything, "go").Return([]model.EngineHit{}, nil)
	cmp := NewEngineComparator(solr, osv, ts, zap.NewNop())

	report := cmp.Compare(context.Background(), "go")

	assert.Equal(t, hits, report.SolrResults)
	assert.Empty(t, report.OpenSearchResults)
	assert.NotNil(t, report.OpenSearchResults)
	assert.Empty(t, report.TypeSenseResults)
}

func TestCompareNormalizesNilHits(t *testing.T) {
	solr, osv, ts, _ := newEngineMocks()
	for _, eng := range []*enginemocks.MockClient{solr, osv, ts} {
		eng.On("Search", mock.Anything, "go").Return([]model.EngineHit(nil), nil)
	}
	cmp := NewEngineComparator(solr, osv, ts, zap.NewNop())

	report := cmp.Compare(context.Background(), "go")

	assert.NotNil(t, report.SolrResults)
	assert.NotNil(t, report.OpenSearchResults)
	assert.NotNil(t, report.TypeSenseResults)
}
