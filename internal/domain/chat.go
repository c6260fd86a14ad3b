package domain

import "time"

// ============================================================
// Chat — transcript types
// ============================================================

// Sender identifies who wrote a transcript entry.
type Sender string

const (
	SenderUser      Sender = "user"
	SenderAssistant Sender = "assistant"
)

// TranscriptEntry is one message in a citizen's conversation.
// Entries are append-only and ordered; a transcript lives for the
// lifetime of the process.
type TranscriptEntry struct {
	Sender    Sender    `json:"sender"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// ChatRequest is the body of POST /v1/chat.
type ChatRequest struct {
	Message string `json:"message"`
}

// ChatResponse returns the full transcript for the authenticated
// identity after the message has been processed.
type ChatResponse struct {
	Identity   string            `json:"identity"`
	Transcript []TranscriptEntry `json:"transcript"`
}
