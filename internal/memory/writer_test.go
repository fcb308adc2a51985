// ABOUTME: Tests for the memory writer
// ABOUTME: Covers per-message tallies, deduplication, and summarized mode
package memory

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/membridge/recall/internal/models"
)

func msg(kind models.MessageKind, content string) models.Message {
	return models.Message{
		ID:        uuid.New().String(),
		Kind:      kind,
		Content:   content,
		Timestamp: time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC),
	}
}

func TestIndex_PerMessage_TalliesNewAndExisting(t *testing.T) {
	// Scenario E: 3 new + 2 already-present messages
	fs := newFakeStore()
	w := NewWriter(fs, &fakeEmbedder{}, &fakeCompleter{})

	existing := []models.Message{msg(models.KindHuman, "old one"), msg(models.KindAI, "old two")}
	for _, m := range existing {
		fs.docs["thread-1_"+m.ID] = models.MemoryRecord{}
	}

	batch := append([]models.Message{
		msg(models.KindHuman, "new one"),
		msg(models.KindAI, "new two"),
		msg(models.KindHuman, "new three"),
	}, existing...)

	stats, err := w.Index(context.Background(), batch, "thread-1", models.IndexPerMessage)
	if err != nil {
		t.Fatalf("Index() error = %v", err)
	}

	want := models.IndexStats{Indexed: 3, Skipped: 2, Errors: 0}
	if stats != want {
		t.Errorf("stats = %+v, want %+v", stats, want)
	}
}

func TestIndex_PerMessage_SecondPassSkips(t *testing.T) {
	fs := newFakeStore()
	w := NewWriter(fs, &fakeEmbedder{}, &fakeCompleter{})

	m := msg(models.KindHuman, "remember this")

	first, err := w.Index(context.Background(), []models.Message{m}, "t", models.IndexPerMessage)
	if err != nil {
		t.Fatalf("first Index() error = %v", err)
	}
	if first.Indexed != 1 || first.Skipped != 0 {
		t.Errorf("first pass stats = %+v, want indexed 1", first)
	}

	second, err := w.Index(context.Background(), []models.Message{m}, "t", models.IndexPerMessage)
	if err != nil {
		t.Fatalf("second Index() error = %v", err)
	}
	if second.Indexed != 0 || second.Skipped != 1 {
		t.Errorf("second pass stats = %+v, want skipped 1", second)
	}
	if len(fs.docs) != 1 {
		t.Errorf("stored records = %d, want exactly 1", len(fs.docs))
	}
}

func TestIndex_PerMessage_DuplicateIDsWithinBatchCollapse(t *testing.T) {
	fs := newFakeStore()
	w := NewWriter(fs, &fakeEmbedder{}, &fakeCompleter{})

	m := msg(models.KindHuman, "hello")
	stats, err := w.Index(context.Background(), []models.Message{m, m, m}, "t", models.IndexPerMessage)
	if err != nil {
		t.Fatalf("Index() error = %v", err)
	}
	if stats.Indexed != 1 {
		t.Errorf("Indexed = %d, want 1 for a batch of duplicates", stats.Indexed)
	}
	if len(fs.docs) != 1 {
		t.Errorf("stored records = %d, want 1", len(fs.docs))
	}
}

func TestIndex_PerMessage_EmbedFailureCountsErrorAndContinues(t *testing.T) {
	fs := newFakeStore()
	w := NewWriter(fs, &fakeEmbedder{err: errors.New("quota exceeded")}, &fakeCompleter{})

	stats, err := w.Index(context.Background(),
		[]models.Message{msg(models.KindHuman, "a"), msg(models.KindAI, "b")},
		"t", models.IndexPerMessage)
	if err != nil {
		t.Fatalf("Index() error = %v, per-record failures must not abort the batch", err)
	}
	if stats.Errors != 2 || stats.Indexed != 0 {
		t.Errorf("stats = %+v, want 2 errors and 0 indexed", stats)
	}
}

func TestIndex_PerMessage_RecordFields(t *testing.T) {
	fs := newFakeStore()
	w := NewWriter(fs, &fakeEmbedder{vec: []float64{1, 2, 3}}, &fakeCompleter{})

	m := msg(models.KindHuman, "Alice lives in Bangalore")
	if _, err := w.Index(context.Background(), []models.Message{m}, "thread-9", models.IndexPerMessage); err != nil {
		t.Fatalf("Index() error = %v", err)
	}

	rec, ok := fs.docs["thread-9_"+m.ID]
	if !ok {
		t.Fatal("record not stored under threadID_messageID")
	}
	if rec.Content != "Alice lives in Bangalore" || rec.Text != rec.Content {
		t.Errorf("record text/content = %q/%q", rec.Text, rec.Content)
	}
	if rec.MessageType != models.MessageTypeHuman {
		t.Errorf("MessageType = %q, want human", rec.MessageType)
	}
	if rec.ThreadID != "thread-9" || rec.IsSummary {
		t.Errorf("record = %+v, want thread-9 non-summary", rec)
	}
	if len(rec.Vector) != 3 {
		t.Errorf("vector length = %d, want 3", len(rec.Vector))
	}
}

func TestIndex_Summarized_WritesOneDocument(t *testing.T) {
	fs := newFakeStore()
	completer := &fakeCompleter{response: "They discussed Alice's move to Bangalore."}
	w := NewWriter(fs, &fakeEmbedder{}, completer)
	w.now = func() time.Time { return time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC) }

	msgs := []models.Message{
		msg(models.KindHuman, "I'm moving to Bangalore"),
		msg(models.KindAI, "Noted, good luck with the move!"),
	}

	stats, err := w.Index(context.Background(), msgs, "thread-1", models.IndexSummarized)
	if err != nil {
		t.Fatalf("Index() error = %v", err)
	}
	if stats.Indexed != 1 {
		t.Errorf("Indexed = %d, want 1", stats.Indexed)
	}

	wantID := "thread-1_summary_1769904000"
	rec, ok := fs.docs[wantID]
	if !ok {
		t.Fatalf("summary not stored under %q; stored ids: %v", wantID, keysOf(fs.docs))
	}
	if !rec.IsSummary || rec.MessageType != models.MessageTypeSummary {
		t.Errorf("record = %+v, want summary markers", rec)
	}
	if rec.SummaryStart == "" || rec.SummaryEnd == "" {
		t.Error("summary record should carry start and end timestamps")
	}

	// The summarization prompt sees the chronological transcript
	prompt := completer.prompts[0]
	if !strings.Contains(prompt, "User (") || !strings.Contains(prompt, "Agent (") {
		t.Errorf("prompt should contain speaker-labeled transcript, got %q", prompt)
	}
}

func TestIndex_Summarized_ExistingIDSkips(t *testing.T) {
	fs := newFakeStore()
	w := NewWriter(fs, &fakeEmbedder{}, &fakeCompleter{response: "summary"})
	fixed := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	w.now = func() time.Time { return fixed }

	fs.docs["t_summary_1769904000"] = models.MemoryRecord{}

	stats, err := w.Index(context.Background(),
		[]models.Message{msg(models.KindHuman, "hi")}, "t", models.IndexSummarized)
	if err != nil {
		t.Fatalf("Index() error = %v", err)
	}
	if stats.Skipped != 1 || stats.Indexed != 0 {
		t.Errorf("stats = %+v, want skipped 1", stats)
	}
}

func TestIndex_Summarized_EmptySummaryIsError(t *testing.T) {
	fs := newFakeStore()
	w := NewWriter(fs, &fakeEmbedder{}, &fakeCompleter{response: "  "})

	_, err := w.Index(context.Background(),
		[]models.Message{msg(models.KindHuman, "hi")}, "t", models.IndexSummarized)
	if err == nil {
		t.Fatal("Index() should fail when summarization yields empty text")
	}
}

func TestIndex_MissingIndexIsError(t *testing.T) {
	fs := newFakeStore()
	fs.indexExists = false
	w := NewWriter(fs, &fakeEmbedder{}, &fakeCompleter{})

	_, err := w.Index(context.Background(),
		[]models.Message{msg(models.KindHuman, "hi")}, "t", models.IndexPerMessage)
	if err == nil {
		t.Fatal("Index() should fail when the index does not exist")
	}
}

func keysOf(m map[string]models.MemoryRecord) []string {
	var keys []string
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}
