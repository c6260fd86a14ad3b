// Package port defines the interfaces (ports) for external dependencies.
// Following hexagonal architecture, these ports decouple the domain/service
// layer from concrete implementations.
package port

import (
	"context"

	"github.com/boddenberg/citizen-ai-portal/internal/domain"
)

// TokenSource exchanges a long-lived API credential for a short-lived
// bearer token. Implementations must return a typed failure, never
// panic past the boundary.
type TokenSource interface {
	AcquireToken(ctx context.Context) (string, error)
}

// TextGenerator invokes the remote text-generation endpoint.
// Failures come back as the typed errors in internal/domain; the
// caller decides how to render them.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (*domain.Generation, error)
}

// SentimentAnalyzer scores a text for document-level sentiment.
// It never fails: misconfiguration and runtime faults are encoded as
// the "unavailable" and "error" sentinel labels.
type SentimentAnalyzer interface {
	Analyze(ctx context.Context, text string) domain.Sentiment
}

// TranscriptStore holds the per-identity, append-only conversation
// transcripts. Appends for a single identity are serialized by the
// implementation.
type TranscriptStore interface {
	Append(identity string, entries ...domain.TranscriptEntry)
	Get(identity string) []domain.TranscriptEntry
}

// FeedbackRecorder appends one sentiment observation. Record never
// fails; the feedback log is process-lifetime and append-only.
type FeedbackRecorder interface {
	Record(identity, text string, sentiment domain.Sentiment)
}

// Cache provides generic caching with TTL.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	Delete(key string)
}
