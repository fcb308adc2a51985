// ABOUTME: Tagged message variant for session transcripts
// ABOUTME: Kind is decided once at ingestion, never by runtime type checks
package models

import "time"

// MessageKind tags who produced a transcript message.
type MessageKind string

const (
	KindHuman MessageKind = "human"
	KindAI    MessageKind = "ai"
	KindOther MessageKind = "other"
)

// Message is one entry in a session transcript.
type Message struct {
	ID        string      `json:"id"`
	Kind      MessageKind `json:"kind"`
	Content   string      `json:"content"`
	Timestamp time.Time   `json:"timestamp"`
}

// Type maps a transcript kind to the stored document message type.
func (m Message) Type() MessageType {
	switch m.Kind {
	case KindHuman:
		return MessageTypeHuman
	case KindAI:
		return MessageTypeAI
	default:
		return MessageTypeUnknown
	}
}

// Speaker returns the display label used in transcripts.
func (m Message) Speaker() string {
	switch m.Kind {
	case KindHuman:
		return "User"
	case KindAI:
		return "Agent"
	default:
		return "Other"
	}
}
