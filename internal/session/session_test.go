// ABOUTME: Tests for transcript accumulation and the sqlite checkpoint store
// ABOUTME: Verifies id deduplication, ordering, and round trips
package session

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/membridge/recall/internal/models"
)

func TestTranscript_RecordAssignsIDs(t *testing.T) {
	tr := NewTranscript("thread-1")

	m1 := tr.Record(models.KindHuman, "hello")
	m2 := tr.Record(models.KindAI, "hi there")

	if m1.ID == "" || m2.ID == "" {
		t.Fatal("Record() should assign message ids")
	}
	if m1.ID == m2.ID {
		t.Error("message ids should be unique")
	}
	if tr.Len() != 2 {
		t.Errorf("Len() = %d, want 2", tr.Len())
	}
	if tr.ThreadID() != "thread-1" {
		t.Errorf("ThreadID() = %q, want thread-1", tr.ThreadID())
	}
}

func TestTranscript_AddDeduplicatesByID(t *testing.T) {
	tr := NewTranscript("t")
	m := models.Message{ID: "m1", Kind: models.KindHuman, Content: "hi", Timestamp: time.Now()}

	if !tr.Add(m) {
		t.Error("first Add() = false, want true")
	}
	if tr.Add(m) {
		t.Error("second Add() of same id = true, want false")
	}
	if tr.Add(models.Message{Kind: models.KindHuman, Content: "no id"}) {
		t.Error("Add() with empty id = true, want false")
	}
	if tr.Len() != 1 {
		t.Errorf("Len() = %d, want 1", tr.Len())
	}
}

func TestTranscript_MessagesReturnsCopy(t *testing.T) {
	tr := NewTranscript("t")
	tr.Record(models.KindHuman, "original")

	msgs := tr.Messages()
	msgs[0].Content = "mutated"

	if tr.Messages()[0].Content != "original" {
		t.Error("mutating the returned slice should not affect the transcript")
	}
}

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "sessions.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStore_RoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	msgs := []models.Message{
		{ID: "m1", Kind: models.KindHuman, Content: "first", Timestamp: base},
		{ID: "m2", Kind: models.KindAI, Content: "second", Timestamp: base.Add(time.Second)},
		{ID: "m3", Kind: models.KindHuman, Content: "third", Timestamp: base.Add(2 * time.Second)},
	}
	for _, m := range msgs {
		if err := store.Append(ctx, "thread-1", m); err != nil {
			t.Fatalf("Append(%s) error = %v", m.ID, err)
		}
	}

	got, err := store.Messages(ctx, "thread-1")
	if err != nil {
		t.Fatalf("Messages() error = %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	for i, m := range got {
		if m.ID != msgs[i].ID || m.Content != msgs[i].Content || m.Kind != msgs[i].Kind {
			t.Errorf("message[%d] = %+v, want %+v", i, m, msgs[i])
		}
		if !m.Timestamp.Equal(msgs[i].Timestamp) {
			t.Errorf("message[%d].Timestamp = %v, want %v", i, m.Timestamp, msgs[i].Timestamp)
		}
	}
}

func TestStore_AppendIgnoresDuplicateIDs(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	m := models.Message{ID: "m1", Kind: models.KindHuman, Content: "once", Timestamp: time.Now()}
	if err := store.Append(ctx, "t", m); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if err := store.Append(ctx, "t", m); err != nil {
		t.Fatalf("duplicate Append() error = %v, want silent ignore", err)
	}

	got, err := store.Messages(ctx, "t")
	if err != nil {
		t.Fatalf("Messages() error = %v", err)
	}
	if len(got) != 1 {
		t.Errorf("len = %d, want 1", len(got))
	}
}

func TestStore_Threads(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	_ = store.Append(ctx, "b-thread", models.Message{ID: "1", Kind: models.KindHuman, Content: "x", Timestamp: time.Now()})
	_ = store.Append(ctx, "a-thread", models.Message{ID: "2", Kind: models.KindAI, Content: "y", Timestamp: time.Now()})

	threads, err := store.Threads(ctx)
	if err != nil {
		t.Fatalf("Threads() error = %v", err)
	}
	if len(threads) != 2 || threads[0] != "a-thread" || threads[1] != "b-thread" {
		t.Errorf("Threads() = %v, want [a-thread b-thread]", threads)
	}
}

func TestStore_MessagesForUnknownThreadIsEmpty(t *testing.T) {
	store := openTestStore(t)

	got, err := store.Messages(context.Background(), "nope")
	if err != nil {
		t.Fatalf("Messages() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("len = %d, want 0", len(got))
	}
}
