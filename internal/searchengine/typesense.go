package searchengine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"docsearch/internal/config"
	"docsearch/internal/model"
)

const typeSenseKeyHeader = "X-TYPESENSE-API-KEY"

// TypeSenseClient talks to a Typesense collection. Typesense is the fastest
// of the three for short typo-tolerant queries, which is why the orchestrator
// tries it first.
type TypeSenseClient struct {
	baseURL    string
	collection string
	apiKey     string
	http       *http.Client
}

// NewTypeSense creates a Typesense adapter from configuration.
func NewTypeSense(cfg config.EngineConfig) *TypeSenseClient {
	return &TypeSenseClient{
		baseURL:    cfg.BaseURL,
		collection: cfg.Collection,
		apiKey:     cfg.APIKey,
		http:       newHTTPClient(cfg.TimeoutMS),
	}
}

var _ Client = (*TypeSenseClient)(nil)

func (c *TypeSenseClient) Name() string { return EngineTypeSense }

type typeSenseHit struct {
	TextMatch float64        `json:"text_match"`
	Document  model.Document `json:"document"`
}

type typeSenseSearchResponse struct {
	Hits []typeSenseHit `json:"hits"`
}

// Search queries the collection across the three text fields.
func (c *TypeSenseClient) Search(ctx context.Context, term string) ([]model.EngineHit, error) {
	params := url.Values{}
	params.Set("q", term)
	params.Set("query_by", "title,content,author")
	params.Set("per_page", "10")

	endpoint := fmt.Sprintf("%s/collections/%s/documents/search?%s",
		c.baseURL, url.PathEscape(c.collection), params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, transportError(EngineTypeSense, err)
	}
	req.Header.Set(typeSenseKeyHeader, c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, transportError(EngineTypeSense, err)
	}
	defer drainAndClose(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return nil, statusError(EngineTypeSense, resp.StatusCode)
	}

	var body typeSenseSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, transportError(EngineTypeSense, err)
	}

	hits := make([]model.EngineHit, 0, len(body.Hits))
	for _, h := range body.Hits {
		hits = append(hits, model.EngineHit{
			ID:      h.Document.ID,
			Title:   h.Document.Title,
			Content: h.Document.Content,
			Author:  h.Document.Author,
			Score:   h.TextMatch,
			Engine:  EngineTypeSense,
		})
	}
	return hits, nil
}

// IndexDocument upserts the document into the collection.
func (c *TypeSenseClient) IndexDocument(ctx context.Context, doc *model.Document) error {
	payload, err := json.Marshal(doc)
	if err != nil {
		return transportError(EngineTypeSense, err)
	}

	endpoint := fmt.Sprintf("%s/collections/%s/documents?action=upsert",
		c.baseURL, url.PathEscape(c.collection))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return transportError(EngineTypeSense, err)
	}
	req.Header.Set(typeSenseKeyHeader, c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return transportError(EngineTypeSense, err)
	}
	defer drainAndClose(resp.Body)

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return statusError(EngineTypeSense, resp.StatusCode)
	}
	return nil
}

// DeleteDocument removes the document; 404 is treated as already gone.
func (c *TypeSenseClient) DeleteDocument(ctx context.Context, id string) error {
	endpoint := fmt.Sprintf("%s/collections/%s/documents/%s",
		c.baseURL, url.PathEscape(c.collection), url.PathEscape(id))
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, endpoint, nil)
	if err != nil {
		return transportError(EngineTypeSense, err)
	}
	req.Header.Set(typeSenseKeyHeader, c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return transportError(EngineTypeSense, err)
	}
	defer drainAndClose(resp.Body)

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNotFound {
		return statusError(EngineTypeSense, resp.StatusCode)
	}
	return nil
}

// Ping hits the health endpoint.
func (c *TypeSenseClient) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return transportError(EngineTypeSense, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return transportError(EngineTypeSense, err)
	}
	defer drainAndClose(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return statusError(EngineTypeSense, resp.StatusCode)
	}
	return nil
}
