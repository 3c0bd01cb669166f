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

// OpenSearchClient talks to an OpenSearch cluster index over the REST API.
type OpenSearchClient struct {
	baseURL string
	index   string
	http    *http.Client
}

// NewOpenSearch creates an OpenSearch adapter from configuration.
func NewOpenSearch(cfg config.EngineConfig) *OpenSearchClient {
	return &OpenSearchClient{
		baseURL: cfg.BaseURL,
		index:   cfg.Collection,
		http:    newHTTPClient(cfg.TimeoutMS),
	}
}

var _ Client = (*OpenSearchClient)(nil)

func (c *OpenSearchClient) Name() string { return EngineOpenSearch }

type openSearchHit struct {
	Score  float64        `json:"_score"`
	Source model.Document `json:"_source"`
}

type openSearchResponse struct {
	Hits struct {
		Hits []openSearchHit `json:"hits"`
	} `json:"hits"`
}

// Search runs a multi_match query across the text fields.
func (c *OpenSearchClient) Search(ctx context.Context, term string) ([]model.EngineHit, error) {
	query := map[string]any{
		"size": 10,
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  term,
				"fields": []string{"title", "content", "author"},
			},
		},
	}
	payload, err := json.Marshal(query)
	if err != nil {
		return nil, transportError(EngineOpenSearch, err)
	}

	endpoint := fmt.Sprintf("%s/%s/_search", c.baseURL, c.index)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, transportError(EngineOpenSearch, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, transportError(EngineOpenSearch, err)
	}
	defer drainAndClose(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return nil, statusError(EngineOpenSearch, resp.StatusCode)
	}

	var body openSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, transportError(EngineOpenSearch, err)
	}

	hits := make([]model.EngineHit, 0, len(body.Hits.Hits))
	for _, h := range body.Hits.Hits {
		hits = append(hits, model.EngineHit{
			ID:      h.Source.ID,
			Title:   h.Source.Title,
			Content: h.Source.Content,
			Author:  h.Source.Author,
			Score:   h.Score,
			Engine:  EngineOpenSearch,
		})
	}
	return hits, nil
}

// IndexDocument upserts the document under its id.
func (c *OpenSearchClient) IndexDocument(ctx context.Context, doc *model.Document) error {
	payload, err := json.Marshal(doc)
	if err != nil {
		return transportError(EngineOpenSearch, err)
	}

	endpoint := fmt.Sprintf("%s/%s/_doc/%s", c.baseURL, c.index, url.PathEscape(doc.ID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, endpoint, bytes.NewReader(payload))
	if err != nil {
		return transportError(EngineOpenSearch, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return transportError(EngineOpenSearch, err)
	}
	defer drainAndClose(resp.Body)

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return statusError(EngineOpenSearch, resp.StatusCode)
	}
	return nil
}

// DeleteDocument removes the document; a 404 means it was never indexed and
// is not treated as a failure.
func (c *OpenSearchClient) DeleteDocument(ctx context.Context, id string) error {
	endpoint := fmt.Sprintf("%s/%s/_doc/%s", c.baseURL, c.index, url.PathEscape(id))
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, endpoint, nil)
	if err != nil {
		return transportError(EngineOpenSearch, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return transportError(EngineOpenSearch, err)
	}
	defer drainAndClose(resp.Body)

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNotFound {
		return statusError(EngineOpenSearch, resp.StatusCode)
	}
	return nil
}

// Ping checks cluster health.
func (c *OpenSearchClient) Ping(ctx context.Context) error {
	endpoint := fmt.Sprintf("%s/_cluster/health", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return transportError(EngineOpenSearch, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return transportError(EngineOpenSearch, err)
	}
	defer drainAndClose(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return statusError(EngineOpenSearch, resp.StatusCode)
	}
	return nil
}
