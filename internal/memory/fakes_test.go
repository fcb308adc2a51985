// ABOUTME: Shared in-memory fakes for pipeline tests
// ABOUTME: Implement the capability interfaces without network calls
package memory

import (
	"context"
	"fmt"

	"github.com/membridge/recall/internal/models"
	"github.com/membridge/recall/internal/store"
)

// fakeStore implements SearchStore and WriteStore in memory.
type fakeStore struct {
	indexExists bool
	existsErr   error

	count    int
	countErr error

	hits      []models.SearchHit
	searchErr error

	docs   map[string]models.MemoryRecord
	hasErr error
	putErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{indexExists: true, docs: make(map[string]models.MemoryRecord)}
}

func (f *fakeStore) IndexExists(ctx context.Context) (bool, error) {
	return f.indexExists, f.existsErr
}

func (f *fakeStore) Count(ctx context.Context) (int, error) {
	return f.count, f.countErr
}

func (f *fakeStore) Search(ctx context.Context, vector []float64, k, numCandidates int) ([]models.SearchHit, error) {
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.hits, nil
}

func (f *fakeStore) HasDocument(ctx context.Context, id string) (bool, error) {
	if f.hasErr != nil {
		return false, f.hasErr
	}
	_, ok := f.docs[id]
	return ok, nil
}

func (f *fakeStore) Put(ctx context.Context, id string, rec models.MemoryRecord) error {
	if f.putErr != nil {
		return f.putErr
	}
	if _, ok := f.docs[id]; ok {
		return store.ErrAlreadyExists
	}
	f.docs[id] = rec
	return nil
}

// fakeEmbedder returns a fixed vector or error.
type fakeEmbedder struct {
	vec []float64
	err error
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.vec != nil {
		return f.vec, nil
	}
	return []float64{0.1, 0.2, 0.3}, nil
}

// fakeCompleter echoes a canned response, or derives one from the prompt.
type fakeCompleter struct {
	response string
	err      error
	fn       func(prompt string) (string, error)
	prompts  []string
}

func (f *fakeCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if f.fn != nil {
		return f.fn(prompt)
	}
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

// fakePruner returns canned pruned output or an error.
type fakePruner struct {
	out    string
	err    error
	called bool
}

func (f *fakePruner) Prune(ctx context.Context, query, text string, threshold float64) (string, error) {
	f.called = true
	if f.err != nil {
		return "", f.err
	}
	return f.out, nil
}

// Pipeline-stage stubs for engine tests.

type stubRetriever struct {
	docs    []models.RetrievedDocument
	message string
}

func (s *stubRetriever) Retrieve(ctx context.Context, query string, rankWindow, topK int) ([]models.RetrievedDocument, string) {
	if len(s.docs) == 0 {
		return nil, s.message
	}
	var parts string
	for i, d := range s.docs {
		if i > 0 {
			parts += "\n\n"
		}
		parts += d.Content
	}
	return s.docs, parts
}

type stubReducer struct {
	out string
}

func (s *stubReducer) Reduce(ctx context.Context, query, text string, pruningThreshold float64) string {
	if s.out != "" {
		return s.out
	}
	return text
}

type stubVerifier struct {
	verdict models.RelevanceVerdict
}

func (s *stubVerifier) Verify(ctx context.Context, query, text string) models.RelevanceVerdict {
	return s.verdict
}

// panicReducer simulates an unexpected fault mid-pipeline.
type panicReducer struct{}

func (panicReducer) Reduce(ctx context.Context, query, text string, pruningThreshold float64) string {
	panic(fmt.Sprintf("reducer exploded on %q", query))
}
