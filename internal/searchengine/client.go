// Package searchengine contains thin adapters for the external full-text
// backends. Each engine is a black box reached over HTTP; the adapters only
// translate between the wire formats and model types. Failure handling and
// fallback policy live in the orchestrator, not here.
package searchengine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"docsearch/internal/model"
)

// Engine names as they appear in hits, reports and logs.
const (
	EngineSolr       = "solr"
	EngineOpenSearch = "opensearch"
	EngineTypeSense  = "typesense"
)

// ErrUnavailable wraps any transport or non-2xx failure from a backend.
// Callers treat it the same as a timeout: log and degrade.
var ErrUnavailable = errors.New("search backend unavailable")

// Client is the capability contract shared by all three engines: one
// interface, three implementations, no hierarchy.
type Client interface {
	// Name returns the engine tag (EngineSolr etc).
	Name() string
	// Search runs a free-text query and returns ranked hits. Scores are on
	// the engine's own scale and must not be compared across engines.
	Search(ctx context.Context, term string) ([]model.EngineHit, error)
	// IndexDocument upserts one document into the engine's index.
	IndexDocument(ctx context.Context, doc *model.Document) error
	// DeleteDocument removes a document from the index. Deleting an unknown
	// id is not an error.
	DeleteDocument(ctx context.Context, id string) error
	// Ping checks engine reachability for health reporting.
	Ping(ctx context.Context) error
}

const defaultTimeoutMS = 2000

// newHTTPClient builds the shared http.Client for an engine adapter. The
// timeout comes from configuration so a hung backend cannot stall a request;
// the otelhttp transport traces every backend round trip.
func newHTTPClient(timeoutMS int) *http.Client {
	if timeoutMS <= 0 {
		timeoutMS = defaultTimeoutMS
	}
	return &http.Client{
		Timeout:   time.Duration(timeoutMS) * time.Millisecond,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
}

// drainAndClose releases the connection for reuse.
func drainAndClose(body io.ReadCloser) {
	_, _ = io.Copy(io.Discard, body)
	_ = body.Close()
}

func statusError(engine string, status int) error {
	return fmt.Errorf("%w: %s returned status %d", ErrUnavailable, engine, status)
}

func transportError(engine string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrUnavailable, engine, err)
}
