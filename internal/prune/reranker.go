// ABOUTME: HTTP reranker client for extractive context pruning
// ABOUTME: Scores sentences against a query and keeps those above a threshold
package prune

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// Reranker prunes context by scoring sentences with an external
// rerank model served over HTTP (SiliconFlow/TEI-style /v1/rerank API).
type Reranker struct {
	baseURL string
	model   string
	apiKey  string
	client  *http.Client
}

// NewReranker creates a reranker client. baseURL empty means no reranker
// is deployed; callers should skip the pruning stage entirely.
func NewReranker(baseURL, model, apiKey string) *Reranker {
	return &Reranker{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

type rerankRequest struct {
	Model     string   `json:"model"`
	Query     string   `json:"query"`
	Documents []string `json:"documents"`
	TopN      int      `json:"top_n"`
}

type rerankResponse struct {
	Results []struct {
		Index int     `json:"index"`
		Score float64 `json:"relevance_score"`
	} `json:"results"`
}

// Prune reduces context to the sentences the rerank model scores at or
// above threshold, preserving their original order. Lower thresholds keep
// more; higher thresholds prune harder. If every sentence falls below the
// threshold the original context is returned, so pruning can never erase
// all evidence.
func (r *Reranker) Prune(ctx context.Context, query, text string, threshold float64) (string, error) {
	sentences := splitSentences(text)
	if len(sentences) == 0 {
		return text, nil
	}

	scores, err := r.rerank(ctx, query, sentences)
	if err != nil {
		return "", err
	}

	keep := make([]string, 0, len(sentences))
	for i, s := range sentences {
		if scores[i] >= threshold {
			keep = append(keep, s)
		}
	}
	if len(keep) == 0 {
		slog.Debug("pruning removed every sentence, keeping original context",
			"sentences", len(sentences), "threshold", threshold)
		return text, nil
	}

	pruned := strings.Join(keep, " ")
	slog.Debug("pruned context",
		"kept", len(keep), "of", len(sentences),
		"chars", len(pruned), "original_chars", len(text))
	return pruned, nil
}

// rerank calls the model server and returns a per-sentence score slice
// aligned with the input order.
func (r *Reranker) rerank(ctx context.Context, query string, sentences []string) ([]float64, error) {
	body, err := json.Marshal(rerankRequest{
		Model:     r.model,
		Query:     query,
		Documents: sentences,
		TopN:      len(sentences),
	})
	if err != nil {
		return nil, fmt.Errorf("marshal rerank request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/v1/rerank", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build rerank request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if r.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+r.apiKey)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rerank: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("rerank: status %d: %s", resp.StatusCode, string(raw))
	}

	var out rerankResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode rerank response: %w", err)
	}

	scores := make([]float64, len(sentences))
	for _, res := range out.Results {
		if res.Index >= 0 && res.Index < len(scores) {
			scores[res.Index] = res.Score
		}
	}
	return scores, nil
}

// splitSentences breaks text into sentence-ish units on terminal
// punctuation followed by whitespace, plus paragraph breaks.
func splitSentences(text string) []string {
	var sentences []string
	var cur strings.Builder

	flush := func() {
		s := strings.TrimSpace(cur.String())
		if s != "" {
			sentences = append(sentences, s)
		}
		cur.Reset()
	}

	runes := []rune(text)
	for i, r := range runes {
		cur.WriteRune(r)
		switch r {
		case '.', '!', '?':
			if i+1 >= len(runes) || runes[i+1] == ' ' || runes[i+1] == '\n' || runes[i+1] == '\t' {
				flush()
			}
		case '\n':
			flush()
		}
	}
	flush()

	return sentences
}
