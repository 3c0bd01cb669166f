package service

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"docsearch/internal/model"
	"docsearch/internal/searchengine"
)

// EngineComparator runs the same query against every engine side by side.
type EngineComparator interface {
	// Compare queries all engines concurrently and reports hits and elapsed
	// time per engine. It never fails: a broken engine shows up as an empty
	// hit list with its own measured duration.
	Compare(ctx context.Context, query string) *model.ComparisonReport
}

type engineComparator struct {
	solr       searchengine.Client
	openSearch searchengine.Client
	typeSense  searchengine.Client
	logger     *zap.Logger
}

// NewEngineComparator constructs a comparator over the three engine clients.
func NewEngineComparator(solr, openSearch, typeSense searchengine.Client, logger *zap.Logger) EngineComparator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &engineComparator{solr: solr, openSearch: openSearch, typeSense: typeSense, logger: logger}
}

func (c *engineComparator) Compare(ctx context.Context, query string) *model.ComparisonReport {
	report := &model.ComparisonReport{Query: query}

	// Engines run concurrently so each measured latency reflects only that
	// engine's own round trip. The closures never return an error, so one
	// failing engine cannot cancel the others.
	var g errgroup.Group
	g.Go(func() error {
		report.SolrResults, report.SolrTimeMs = c.timedSearch(ctx, c.solr, query)
		return nil
	})
	g.Go(func() error {
		report.OpenSearchResults, report.OpenSearchTimeMs = c.timedSearch(ctx, c.openSearch, query)
		return nil
	})
	g.Go(func() error {
		report.TypeSenseResults, report.TypeSenseTimeMs = c.timedSearch(ctx, c.typeSense, query)
		return nil
	})
	_ = g.Wait()

	return report
}

// timedSearch measures one engine's call from immediately before to
// immediately after. A failure yields an empty, non-nil hit list so the
// report always carries all three entries.
func (c *engineComparator) timedSearch(ctx context.Context, client searchengine.Client, query string) ([]model.EngineHit, int64) {
	start := time.Now()
	hits, err := client.Search(ctx, query)
	elapsed := time.Since(start).Milliseconds()
	if err != nil {
		c.logger.Warn("engine comparison search failed",
			zap.String("engine", client.Name()),
			zap.String("query", query),
			zap.Error(err),
		)
		return []model.EngineHit{}, elapsed
	}
	if hits == nil {
		hits = []model.EngineHit{}
	}
	return hits, elapsed
}
