// ABOUTME: Memory writer: converts session transcripts into indexed records
// ABOUTME: Per-message or summarized, deduplicated by derived document id
package memory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/membridge/recall/internal/models"
	"github.com/membridge/recall/internal/store"
)

const transcriptSummaryPrompt = `You are an expert at summarizing conversations. Create a comprehensive summary of the following conversation that preserves all important information, facts, and context.

The summary should:
1. Preserve all key facts, names, preferences, and information discussed
2. Maintain the flow and context of the conversation
3. Be concise but complete
4. Include important details that might be needed for future reference

Conversation:
%s

Provide a comprehensive summary:`

// Writer persists a conversation's messages to the memory index with
// embeddings. Duplicate ids are skipped, never overwritten.
type Writer struct {
	store     WriteStore
	embed     Embedder
	completer Completer

	// now is swapped in tests for deterministic summary ids
	now func() time.Time
}

// NewWriter creates a Writer over the given store and model gateways.
func NewWriter(ws WriteStore, embed Embedder, completer Completer) *Writer {
	return &Writer{store: ws, embed: embed, completer: completer, now: time.Now}
}

// Index writes the messages of one thread to long-term memory and tallies
// the outcome. In per-message mode each message becomes a document and a
// failing record is counted and skipped, not fatal to the batch. In
// summarized mode the whole transcript is condensed into one document.
func (w *Writer) Index(ctx context.Context, msgs []models.Message, threadID string, mode models.IndexMode) (models.IndexStats, error) {
	var stats models.IndexStats

	if w.store == nil {
		return stats, fmt.Errorf("long-term memory store is not available")
	}

	exists, err := w.store.IndexExists(ctx)
	if err != nil {
		return stats, fmt.Errorf("checking memory index: %w", err)
	}
	if !exists {
		return stats, fmt.Errorf("memory index does not exist")
	}

	msgs = dedupeByID(msgs)
	if len(msgs) == 0 {
		slog.Debug("no messages to index", "thread", threadID)
		return stats, nil
	}

	if mode == models.IndexSummarized {
		return w.indexSummarized(ctx, msgs, threadID)
	}
	return w.indexPerMessage(ctx, msgs, threadID)
}

func (w *Writer) indexPerMessage(ctx context.Context, msgs []models.Message, threadID string) (models.IndexStats, error) {
	var stats models.IndexStats

	for _, msg := range msgs {
		id := fmt.Sprintf("%s_%s", threadID, msg.ID)

		seen, err := w.store.HasDocument(ctx, id)
		if err != nil {
			slog.Warn("existence check failed, skipping message", "id", id, "error", err)
			stats.Errors++
			continue
		}
		if seen {
			stats.Skipped++
			continue
		}

		vector, err := w.embed.Embed(ctx, msg.Content)
		if err != nil {
			slog.Warn("embedding failed, skipping message", "id", id, "error", err)
			stats.Errors++
			continue
		}

		rec := models.MemoryRecord{
			Text:         msg.Content,
			Content:      msg.Content,
			Vector:       vector,
			ThreadID:     threadID,
			CheckpointID: "session",
			Timestamp:    msg.Timestamp.UTC().Format(time.RFC3339),
			MessageType:  msg.Type(),
			MessageID:    msg.ID,
			IsSummary:    false,
		}

		switch err := w.store.Put(ctx, id, rec); {
		case err == nil:
			stats.Indexed++
		case errors.Is(err, store.ErrAlreadyExists):
			// Lost the check-then-write race; a duplicate is not an error
			stats.Skipped++
		default:
			slog.Warn("indexing message failed", "id", id, "error", err)
			stats.Errors++
		}
	}

	slog.Info("per-message indexing complete",
		"thread", threadID, "indexed", stats.Indexed, "skipped", stats.Skipped, "errors", stats.Errors)
	return stats, nil
}

func (w *Writer) indexSummarized(ctx context.Context, msgs []models.Message, threadID string) (models.IndexStats, error) {
	var stats models.IndexStats

	transcript := formatTranscript(msgs)
	if transcript == "" {
		slog.Debug("no user or agent messages to summarize", "thread", threadID)
		return stats, nil
	}

	summary, err := w.completer.Complete(ctx, fmt.Sprintf(transcriptSummaryPrompt, transcript))
	if err != nil {
		return stats, fmt.Errorf("summarizing conversation: %w", err)
	}
	if strings.TrimSpace(summary) == "" {
		return stats, fmt.Errorf("conversation summary came back empty")
	}

	id := fmt.Sprintf("%s_summary_%d", threadID, w.now().Unix())

	seen, err := w.store.HasDocument(ctx, id)
	if err != nil {
		return stats, fmt.Errorf("checking summary document: %w", err)
	}
	if seen {
		stats.Skipped++
		return stats, nil
	}

	vector, err := w.embed.Embed(ctx, summary)
	if err != nil {
		return stats, fmt.Errorf("embedding summary: %w", err)
	}

	first := msgs[0].Timestamp.UTC().Format(time.RFC3339)
	last := msgs[len(msgs)-1].Timestamp.UTC().Format(time.RFC3339)

	rec := models.MemoryRecord{
		Text:         summary,
		Content:      summary,
		Vector:       vector,
		ThreadID:     threadID,
		CheckpointID: "summary",
		Timestamp:    last,
		MessageType:  models.MessageTypeSummary,
		MessageID:    id,
		SummaryStart: first,
		SummaryEnd:   last,
		IsSummary:    true,
	}

	switch err := w.store.Put(ctx, id, rec); {
	case err == nil:
		stats.Indexed++
	case errors.Is(err, store.ErrAlreadyExists):
		stats.Skipped++
	default:
		return stats, fmt.Errorf("indexing summary: %w", err)
	}

	slog.Info("summary indexed", "thread", threadID, "id", id, "chars", len(summary))
	return stats, nil
}

// dedupeByID drops repeated message ids, keeping first occurrence order.
func dedupeByID(msgs []models.Message) []models.Message {
	seen := make(map[string]bool, len(msgs))
	out := msgs[:0:0]
	for _, m := range msgs {
		if m.ID == "" || seen[m.ID] {
			continue
		}
		seen[m.ID] = true
		out = append(out, m)
	}
	return out
}

// formatTranscript renders user and agent messages oldest to newest.
func formatTranscript(msgs []models.Message) string {
	var lines []string
	for _, m := range msgs {
		if m.Kind != models.KindHuman && m.Kind != models.KindAI {
			continue
		}
		ts := m.Timestamp.UTC().Format(time.RFC3339)
		lines = append(lines, fmt.Sprintf("%s (%s): %s", m.Speaker(), ts, m.Content))
	}
	return strings.Join(lines, "\n\n")
}
