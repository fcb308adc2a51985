// ABOUTME: Retrieved document structures for memory search results
// ABOUTME: Maps raw store hits into the uniform shape the pipeline consumes
package models

// MessageType classifies the origin of a stored memory document.
type MessageType string

const (
	MessageTypeHuman   MessageType = "human"
	MessageTypeAI      MessageType = "ai"
	MessageTypeSummary MessageType = "summary"
	MessageTypeUnknown MessageType = "unknown"
)

// SearchHit is one raw result from the vector store, before shaping.
type SearchHit struct {
	Text        string  `json:"text"`
	Content     string  `json:"content"`
	MessageType string  `json:"message_type"`
	Timestamp   string  `json:"timestamp"`
	ThreadID    string  `json:"thread_id"`
	Score       float64 `json:"-"`
}

// RetrievedDocument is one memory hit shaped for the decision pipeline.
// Score is the raw similarity score from the store; only "higher is more
// similar" may be assumed about its range.
type RetrievedDocument struct {
	Content     string      `json:"content"`
	MessageType MessageType `json:"message_type"`
	Timestamp   string      `json:"timestamp"`
	ThreadID    string      `json:"thread_id"`
	Score       float64     `json:"score"`
}

// DocumentFromHit shapes a raw store hit into a RetrievedDocument,
// defaulting missing fields to documented sentinels.
func DocumentFromHit(hit SearchHit) RetrievedDocument {
	content := hit.Content
	if content == "" {
		content = hit.Text
	}

	doc := RetrievedDocument{
		Content:     content,
		MessageType: MessageTypeUnknown,
		Timestamp:   "unknown",
		ThreadID:    "unknown",
		Score:       hit.Score,
	}

	switch MessageType(hit.MessageType) {
	case MessageTypeHuman, MessageTypeAI, MessageTypeSummary:
		doc.MessageType = MessageType(hit.MessageType)
	}
	if hit.Timestamp != "" {
		doc.Timestamp = hit.Timestamp
	}
	if hit.ThreadID != "" {
		doc.ThreadID = hit.ThreadID
	}

	return doc
}
