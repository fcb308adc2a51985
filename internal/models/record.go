// ABOUTME: Persisted memory record and indexing result structures
// ABOUTME: Field names match the Elasticsearch mapping exactly
package models

// MemoryRecord is one indexed unit of long-term memory. Ownership transfers
// to the store on successful write.
type MemoryRecord struct {
	Text         string      `json:"text"`
	Content      string      `json:"content"`
	Vector       []float64   `json:"vector"`
	ThreadID     string      `json:"thread_id"`
	CheckpointID string      `json:"checkpoint_id"`
	Timestamp    string      `json:"timestamp"`
	MessageType  MessageType `json:"message_type"`
	MessageID    string      `json:"message_id"`
	SummaryStart string      `json:"summary_start,omitempty"`
	SummaryEnd   string      `json:"summary_end,omitempty"`
	IsSummary    bool        `json:"is_summary"`
}

// IndexMode selects how a conversation is written to long-term memory.
type IndexMode int

const (
	// IndexPerMessage writes each message as its own document.
	IndexPerMessage IndexMode = iota
	// IndexSummarized condenses the whole transcript into one document.
	IndexSummarized
)

// IndexStats tallies the outcome of one indexing pass.
type IndexStats struct {
	Indexed int `json:"indexed"`
	Skipped int `json:"skipped"`
	Errors  int `json:"errors"`
}
