// internal/milvus/client.go
// Package milvus is a minimal REST client for a Milvus v2 vector database.
// It persists (embedding, text_segment) records in a named collection and
// answers nearest-neighbor queries; indexing lives server-side.
package milvus

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mwiater/ragmill/internal/logging"
)

const (
	vectorField = "embeddings"
	textField   = "text_segment"
	maxTextLen  = 65535
)

// Client talks to one Milvus host and one collection.
type Client struct {
	url        string
	collection string
	client     *http.Client
	timeout    time.Duration
}

// Config contains connection details for the vector store.
type Config struct {
	URL        string
	Collection string
	Timeout    time.Duration
}

// Hit is a single ranked search result.
type Hit struct {
	Distance float64 `json:"distance"`
	Text     string  `json:"text_segment"`
}

// SearchParams controls one similarity search.
type SearchParams struct {
	Metric string
	NProbe int
	Limit  int
}

// NewClient constructs a Client. The collection is fixed for the client's lifetime.
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		url:        strings.TrimRight(cfg.URL, "/"),
		collection: cfg.Collection,
		client:     &http.Client{},
		timeout:    timeout,
	}
}

// Collection returns the collection name the client operates on.
func (c *Client) Collection() string {
	return c.collection
}

// EnsureCollection creates the collection, its vector index, and loads it,
// if the collection does not already exist. Existing collections are loaded
// as-is; their schema is assumed to match the configured dimension.
func (c *Client) EnsureCollection(ctx context.Context, dim int, metric string) error {
	if dim <= 0 {
		return fmt.Errorf("invalid embedding dimension %d", dim)
	}

	var has struct {
		Has bool `json:"has"`
	}
	if err := c.postJSON(ctx, "/v2/vectordb/collections/has", map[string]any{
		"collectionName": c.collection,
	}, &has); err != nil {
		return fmt.Errorf("check collection: %w", err)
	}

	if !has.Has {
		schema := map[string]any{
			"autoID": true,
			"fields": []map[string]any{
				{"fieldName": "id", "dataType": "Int64", "isPrimary": true},
				{"fieldName": vectorField, "dataType": "FloatVector", "elementTypeParams": map[string]any{"dim": dim}},
				{"fieldName": textField, "dataType": "VarChar", "elementTypeParams": map[string]any{"max_length": maxTextLen}},
			},
		}
		if err := c.postJSON(ctx, "/v2/vectordb/collections/create", map[string]any{
			"collectionName": c.collection,
			"schema":         schema,
		}, nil); err != nil {
			return fmt.Errorf("create collection: %w", err)
		}

		if err := c.postJSON(ctx, "/v2/vectordb/indexes/create", map[string]any{
			"collectionName": c.collection,
			"indexParams": []map[string]any{
				{
					"fieldName":  vectorField,
					"indexName":  vectorField,
					"metricType": metric,
					"params":     map[string]any{"index_type": "IVF_FLAT", "nlist": 100},
				},
			},
		}, nil); err != nil {
			return fmt.Errorf("create index: %w", err)
		}
	}

	if err := c.postJSON(ctx, "/v2/vectordb/collections/load", map[string]any{
		"collectionName": c.collection,
	}, nil); err != nil {
		return fmt.Errorf("load collection: %w", err)
	}
	return nil
}

// Insert persists one (embedding, text) record per vector. Records are
// immutable once inserted; there is no update or delete path.
func (c *Client) Insert(ctx context.Context, vectors [][]float64, texts []string) error {
	if len(vectors) != len(texts) {
		return fmt.Errorf("vectors and texts length mismatch: %d vs %d", len(vectors), len(texts))
	}
	rows := make([]map[string]any, len(vectors))
	for i := range vectors {
		rows[i] = map[string]any{
			vectorField: vectors[i],
			textField:   texts[i],
		}
	}
	return c.postJSON(ctx, "/v2/vectordb/entities/insert", map[string]any{
		"collectionName": c.collection,
		"data":           rows,
	}, nil)
}

// Search runs a nearest-neighbor query. All vectors in the query set are
// searched together; the store merges and ranks candidates across them.
func (c *Client) Search(ctx context.Context, vectors [][]float64, p SearchParams) ([]Hit, error) {
	if len(vectors) == 0 {
		return nil, fmt.Errorf("search requires at least one query vector")
	}
	limit := p.Limit
	if limit <= 0 {
		limit = 5
	}
	body := map[string]any{
		"collectionName": c.collection,
		"data":           vectors,
		"annsField":      vectorField,
		"limit":          limit,
		"outputFields":   []string{textField},
		"searchParams": map[string]any{
			"metricType": p.Metric,
			"params":     map[string]any{"nprobe": p.NProbe},
		},
	}

	var hits []Hit
	if err := c.postJSON(ctx, "/v2/vectordb/entities/search", body, &hits); err != nil {
		return nil, err
	}
	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

type apiResponse struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (c *Client) postJSON(ctx context.Context, path string, body any, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	logging.LogRequest("RAGMILL->STORE", c.url, "", data)

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url+path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("milvus POST %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("milvus POST %s failed: %s", path, resp.Status)
	}

	var envelope apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("decode milvus response: %w", err)
	}
	logging.LogRequest("STORE->RAGMILL", c.url, "", []byte(envelope.Data))

	if envelope.Code != 0 {
		return fmt.Errorf("milvus POST %s returned code %d: %s", path, envelope.Code, envelope.Message)
	}
	if out != nil && len(envelope.Data) > 0 {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return fmt.Errorf("decode milvus data: %w", err)
		}
	}
	return nil
}
