// ABOUTME: Shared component wiring for CLI commands
// ABOUTME: Builds the llm gateway, memory store, pipeline engine, and session store
package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/joho/godotenv"
	openai "github.com/sashabaranov/go-openai"

	"github.com/membridge/recall/internal/config"
	"github.com/membridge/recall/internal/llm"
	"github.com/membridge/recall/internal/memory"
	"github.com/membridge/recall/internal/prune"
	"github.com/membridge/recall/internal/session"
	"github.com/membridge/recall/internal/store"
)

const answerPromptTemplate = `You are a helpful assistant. Use the following context from previous conversations to answer the question.

Context:
%s

Question: %s

Answer:`

// app bundles the components a command needs. The store and writer are
// nil when Elasticsearch is not configured; the engine still works and
// reports memory as unavailable.
type app struct {
	cfg      *config.Config
	llm      *llm.Client
	store    *store.Client
	engine   *memory.Engine
	writer   *memory.Writer
	sessions *session.Store
}

// buildApp loads .env and environment configuration, then wires every
// component the commands share.
func buildApp() (*app, error) {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}

	client, err := llm.NewClient(&llm.ClientConfig{
		APIKey:         cfg.OpenAIKey,
		ChatModel:      cfg.ChatModel,
		EmbeddingModel: openai.EmbeddingModel(cfg.EmbeddingModel),
		Timeout:        cfg.Timeout,
		MaxRetries:     cfg.MaxRetries,
		RetryDelay:     cfg.RetryDelay,
	})
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, llm: client}

	var searchStore memory.SearchStore
	if cfg.HasElastic() {
		st, err := store.New(store.Config{
			URL:       cfg.ElasticURL,
			APIKey:    cfg.ElasticAPIKey,
			Index:     cfg.IndexName(),
			Dimension: cfg.EmbeddingDimension(),
		})
		if err != nil {
			return nil, fmt.Errorf("creating elasticsearch gateway: %w", err)
		}
		a.store = st
		searchStore = st
		a.writer = memory.NewWriter(st, client, client)
	} else {
		slog.Warn("ELASTICSEARCH_URL or ELASTICSEARCH_API_KEY not set, long-term memory disabled")
	}

	var pruner memory.Pruner
	if cfg.RerankerURL != "" {
		pruner = prune.NewReranker(cfg.RerankerURL, cfg.RerankerModel, cfg.RerankerAPIKey)
	}

	a.engine = memory.NewEngine(
		memory.NewRetriever(searchStore, client),
		memory.NewReducer(pruner, client),
		memory.NewVerifier(client),
	)

	sessions, err := session.Open(cfg.SessionDBPath)
	if err != nil {
		return nil, fmt.Errorf("opening session store: %w", err)
	}
	a.sessions = sessions

	return a, nil
}

// params combines the root-command flags with the fixed top-k.
func (a *app) params() memory.Params {
	return memory.Params{
		RankWindow:          rankWindow,
		TopK:                a.cfg.TopK,
		PruningThreshold:    pruningThreshold,
		ConfidenceThreshold: confidenceThreshold,
	}
}

// ensureIndex creates the memory index when a store is configured.
func (a *app) ensureIndex(ctx context.Context) error {
	if a.store == nil {
		return nil
	}
	created, err := a.store.EnsureIndex(ctx)
	if err != nil {
		return err
	}
	if created {
		slog.Info("created memory index", "index", a.cfg.IndexName())
	}
	return nil
}

// answerFromMemory answers a question grounded in retrieved context.
func (a *app) answerFromMemory(ctx context.Context, question, memoryContext string) (string, error) {
	return a.llm.Complete(ctx, fmt.Sprintf(answerPromptTemplate, memoryContext, question))
}

func (a *app) Close() {
	if a.sessions != nil {
		if err := a.sessions.Close(); err != nil {
			slog.Warn("closing session store", "error", err)
		}
	}
}
