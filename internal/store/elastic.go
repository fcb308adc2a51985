// ABOUTME: Elasticsearch gateway for the long-term memory index
// ABOUTME: Index lifecycle, counts, point reads/writes, and kNN search
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	elasticsearch "github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/membridge/recall/internal/models"
)

// ErrAlreadyExists marks a write rejected because the document id is taken.
// Callers treat it as a benign duplicate, never a failure.
var ErrAlreadyExists = errors.New("document already exists")

// Config holds connection settings for the store gateway
type Config struct {
	URL       string
	APIKey    string
	Index     string
	Dimension int
	// Transport overrides the HTTP transport, used by tests
	Transport http.RoundTripper
}

// Client is the Elasticsearch gateway for memory records
type Client struct {
	es        *elasticsearch.Client
	index     string
	dimension int
}

// New creates a store gateway for the given endpoint and index
func New(cfg Config) (*Client, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("elasticsearch URL is required")
	}
	if cfg.Index == "" {
		return nil, fmt.Errorf("index name is required")
	}

	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{cfg.URL},
		APIKey:    cfg.APIKey,
		Transport: cfg.Transport,
	})
	if err != nil {
		return nil, fmt.Errorf("creating elasticsearch client: %w", err)
	}

	return &Client{es: es, index: cfg.Index, dimension: cfg.Dimension}, nil
}

// Index returns the index name this gateway operates on
func (c *Client) Index() string {
	return c.index
}

// Ping verifies the store is reachable
func (c *Client) Ping(ctx context.Context) error {
	res, err := c.es.Ping(c.es.Ping.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("pinging elasticsearch: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("elasticsearch ping failed: %s", res.Status())
	}
	return nil
}

// EnsureIndex creates the memory index if it does not exist yet.
// Returns true when this call created the index. A concurrent creator
// winning the race is not an error.
func (c *Client) EnsureIndex(ctx context.Context) (bool, error) {
	exists, err := c.IndexExists(ctx)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	mapping := map[string]any{
		"mappings": map[string]any{
			"properties": map[string]any{
				"text": map[string]any{"type": "text"},
				"vector": map[string]any{
					"type":       "dense_vector",
					"dims":       c.dimension,
					"index":      true,
					"similarity": "cosine",
				},
				"thread_id":     map[string]any{"type": "keyword"},
				"checkpoint_id": map[string]any{"type": "keyword"},
				"timestamp":     map[string]any{"type": "date"},
				"message_type":  map[string]any{"type": "keyword"},
				"message_id":    map[string]any{"type": "keyword"},
				"content":       map[string]any{"type": "text"},
				"summary_start": map[string]any{"type": "date"},
				"summary_end":   map[string]any{"type": "date"},
				"is_summary":    map[string]any{"type": "boolean"},
			},
		},
	}

	body, err := json.Marshal(mapping)
	if err != nil {
		return false, fmt.Errorf("marshaling index mapping: %w", err)
	}

	res, err := c.es.Indices.Create(
		c.index,
		c.es.Indices.Create.WithContext(ctx),
		c.es.Indices.Create.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return false, fmt.Errorf("creating index %s: %w", c.index, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		raw := readBody(res)
		if strings.Contains(raw, "resource_already_exists_exception") {
			// Lost the creation race; the index is there
			slog.Debug("index created concurrently, using existing", "index", c.index)
			return false, nil
		}
		return false, fmt.Errorf("creating index %s: %s", c.index, raw)
	}

	return true, nil
}

// IndexExists reports whether the memory index exists
func (c *Client) IndexExists(ctx context.Context) (bool, error) {
	res, err := c.es.Indices.Exists(
		[]string{c.index},
		c.es.Indices.Exists.WithContext(ctx),
	)
	if err != nil {
		return false, fmt.Errorf("checking index existence: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return false, nil
	}
	if res.IsError() {
		return false, fmt.Errorf("checking index existence: %s", res.Status())
	}
	return true, nil
}

// Count returns the number of documents in the memory index
func (c *Client) Count(ctx context.Context) (int, error) {
	res, err := c.es.Count(
		c.es.Count.WithContext(ctx),
		c.es.Count.WithIndex(c.index),
	)
	if err != nil {
		return 0, fmt.Errorf("counting documents: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return 0, fmt.Errorf("counting documents: %s", readBody(res))
	}

	var out struct {
		Count int `json:"count"`
	}
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return 0, fmt.Errorf("decoding count response: %w", err)
	}
	return out.Count, nil
}

// HasDocument reports whether a document with the given id exists
func (c *Client) HasDocument(ctx context.Context, id string) (bool, error) {
	res, err := c.es.Exists(c.index, id, c.es.Exists.WithContext(ctx))
	if err != nil {
		return false, fmt.Errorf("checking document %s: %w", id, err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return false, nil
	}
	if res.IsError() {
		return false, fmt.Errorf("checking document %s: %s", id, res.Status())
	}
	return true, nil
}

// Put writes a memory record under the given id. The write uses op_type
// create, so a concurrent writer that won the existence-check race surfaces
// as ErrAlreadyExists instead of an overwrite.
func (c *Client) Put(ctx context.Context, id string, rec models.MemoryRecord) error {
	body, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshaling memory record: %w", err)
	}

	res, err := c.es.Index(
		c.index,
		bytes.NewReader(body),
		c.es.Index.WithContext(ctx),
		c.es.Index.WithDocumentID(id),
		c.es.Index.WithOpType("create"),
	)
	if err != nil {
		return fmt.Errorf("indexing document %s: %w", id, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		raw := readBody(res)
		if res.StatusCode == http.StatusConflict ||
			strings.Contains(raw, "version_conflict_engine_exception") ||
			strings.Contains(raw, "resource_already_exists_exception") {
			return ErrAlreadyExists
		}
		return fmt.Errorf("indexing document %s: %s", id, raw)
	}
	return nil
}

// Search runs an approximate-nearest-neighbor query over the vector field,
// returning up to k hits drawn from a candidate pool of numCandidates,
// ordered by descending similarity score.
func (c *Client) Search(ctx context.Context, vector []float64, k, numCandidates int) ([]models.SearchHit, error) {
	query := map[string]any{
		"knn": map[string]any{
			"field":          "vector",
			"query_vector":   vector,
			"k":              k,
			"num_candidates": numCandidates,
		},
		"_source": []string{"text", "content", "message_type", "timestamp", "thread_id"},
		"size":    k,
	}

	body, err := json.Marshal(query)
	if err != nil {
		return nil, fmt.Errorf("marshaling search query: %w", err)
	}

	res, err := c.es.Search(
		c.es.Search.WithContext(ctx),
		c.es.Search.WithIndex(c.index),
		c.es.Search.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return nil, fmt.Errorf("searching memory: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("searching memory: %s", readBody(res))
	}

	var sr struct {
		Hits struct {
			Hits []struct {
				Score  float64          `json:"_score"`
				Source models.SearchHit `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("decoding search response: %w", err)
	}

	hits := make([]models.SearchHit, 0, len(sr.Hits.Hits))
	for _, h := range sr.Hits.Hits {
		hit := h.Source
		hit.Score = h.Score
		hits = append(hits, hit)
	}
	return hits, nil
}

func readBody(res *esapi.Response) string {
	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return res.Status()
	}
	return string(raw)
}
