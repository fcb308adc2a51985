// ABOUTME: In-memory transcript of one conversation session
// ABOUTME: Accumulates tagged messages, deduplicated by message id
package session

import (
	"time"

	"github.com/google/uuid"

	"github.com/membridge/recall/internal/models"
)

// Transcript accumulates the ordered exchange of one session. Message ids
// are assigned once at ingestion; replayed messages are dropped.
type Transcript struct {
	threadID string
	messages []models.Message
	seen     map[string]bool
}

// NewTranscript starts an empty transcript for the given thread.
func NewTranscript(threadID string) *Transcript {
	return &Transcript{
		threadID: threadID,
		seen:     make(map[string]bool),
	}
}

// ThreadID returns the conversation thread this transcript belongs to.
func (t *Transcript) ThreadID() string {
	return t.threadID
}

// Record appends a new message of the given kind and returns it.
func (t *Transcript) Record(kind models.MessageKind, content string) models.Message {
	m := models.Message{
		ID:        uuid.New().String(),
		Kind:      kind,
		Content:   content,
		Timestamp: time.Now().UTC(),
	}
	t.Add(m)
	return m
}

// Add appends an existing message unless its id was already seen.
// Reports whether the message was accepted.
func (t *Transcript) Add(m models.Message) bool {
	if m.ID == "" || t.seen[m.ID] {
		return false
	}
	t.seen[m.ID] = true
	t.messages = append(t.messages, m)
	return true
}

// Messages returns a copy of the transcript in arrival order.
func (t *Transcript) Messages() []models.Message {
	out := make([]models.Message, len(t.messages))
	copy(out, t.messages)
	return out
}

// Len returns the number of recorded messages.
func (t *Transcript) Len() int {
	return len(t.messages)
}
