package searchengine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"docsearch/internal/config"
	"docsearch/internal/model"
)

// SolrClient talks to an Apache Solr core over its JSON API.
type SolrClient struct {
	baseURL string
	core    string
	http    *http.Client
}

// NewSolr creates a Solr adapter from configuration.
func NewSolr(cfg config.EngineConfig) *SolrClient {
	return &SolrClient{
		baseURL: cfg.BaseURL,
		core:    cfg.Collection,
		http:    newHTTPClient(cfg.TimeoutMS),
	}
}

var _ Client = (*SolrClient)(nil)

func (c *SolrClient) Name() string { return EngineSolr }

type solrDoc struct {
	ID        string  `json:"id"`
	Title     string  `json:"title"`
	Content   string  `json:"content,omitempty"`
	Author    string  `json:"author,omitempty"`
	Category  string  `json:"category,omitempty"`
	Status    string  `json:"status,omitempty"`
	CreatedAt string  `json:"created_at,omitempty"`
	UpdatedAt string  `json:"updated_at,omitempty"`
	Score     float64 `json:"score,omitempty"`
}

type solrSelectResponse struct {
	Response struct {
		Docs []solrDoc `json:"docs"`
	} `json:"response"`
}

// Search queries the select handler with the term matched against the three
// text fields. An empty term matches everything.
func (c *SolrClient) Search(ctx context.Context, term string) ([]model.EngineHit, error) {
	q := "*:*"
	if term != "" {
		q = fmt.Sprintf("title:(%s) OR content:(%s) OR author:(%s)", term, term, term)
	}

	params := url.Values{}
	params.Set("q", q)
	params.Set("fl", "id,title,content,author,score")
	params.Set("rows", "10")
	params.Set("wt", "json")

	endpoint := fmt.Sprintf("%s/%s/select?%s", c.baseURL, c.core, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, transportError(EngineSolr, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, transportError(EngineSolr, err)
	}
	defer drainAndClose(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return nil, statusError(EngineSolr, resp.StatusCode)
	}

	var body solrSelectResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, transportError(EngineSolr, err)
	}

	hits := make([]model.EngineHit, 0, len(body.Response.Docs))
	for _, d := range body.Response.Docs {
		hits = append(hits, model.EngineHit{
			ID:      d.ID,
			Title:   d.Title,
			Content: d.Content,
			Author:  d.Author,
			Score:   d.Score,
			Engine:  EngineSolr,
		})
	}
	return hits, nil
}

// IndexDocument upserts the document through the update handler with an
// immediate commit so it is searchable right away.
func (c *SolrClient) IndexDocument(ctx context.Context, doc *model.Document) error {
	payload, err := json.Marshal([]solrDoc{{
		ID:        doc.ID,
		Title:     doc.Title,
		Content:   doc.Content,
		Author:    doc.Author,
		Category:  doc.Category,
		Status:    doc.Status,
		CreatedAt: doc.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: doc.UpdatedAt.UTC().Format(time.RFC3339),
	}})
	if err != nil {
		return transportError(EngineSolr, err)
	}
	return c.update(ctx, payload)
}

// DeleteDocument removes the document by id; Solr treats unknown ids as a no-op.
func (c *SolrClient) DeleteDocument(ctx context.Context, id string) error {
	payload, err := json.Marshal(map[string]any{"delete": map[string]string{"id": id}})
	if err != nil {
		return transportError(EngineSolr, err)
	}
	return c.update(ctx, payload)
}

func (c *SolrClient) update(ctx context.Context, payload []byte) error {
	endpoint := fmt.Sprintf("%s/%s/update?commit=true", c.baseURL, c.core)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return transportError(EngineSolr, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return transportError(EngineSolr, err)
	}
	defer drainAndClose(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return statusError(EngineSolr, resp.StatusCode)
	}
	return nil
}

// Ping hits the core's admin ping handler.
func (c *SolrClient) Ping(ctx context.Context) error {
	endpoint := fmt.Sprintf("%s/%s/admin/ping", c.baseURL, c.core)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return transportError(EngineSolr, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return transportError(EngineSolr, err)
	}
	defer drainAndClose(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return statusError(EngineSolr, resp.StatusCode)
	}
	return nil
}
