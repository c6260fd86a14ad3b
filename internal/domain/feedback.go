package domain

import "time"

// ============================================================
// Feedback — sentiment records and dashboard aggregates
// ============================================================

// SentimentLabel is the outcome class of a sentiment analysis.
// "unavailable" means the NLU service is not configured,
// "error" means the call was attempted and failed.
type SentimentLabel string

const (
	SentimentPositive    SentimentLabel = "positive"
	SentimentNegative    SentimentLabel = "negative"
	SentimentNeutral     SentimentLabel = "neutral"
	SentimentUnavailable SentimentLabel = "unavailable"
	SentimentError       SentimentLabel = "error"
)

// Sentiment is a label/score pair for one analyzed text.
// Score is in [-1, 1] for genuine labels and 0 for the
// unavailable/error sentinels.
type Sentiment struct {
	Label SentimentLabel `json:"label"`
	Score float64        `json:"score"`
}

// FeedbackRecord is one (identity, message, sentiment) observation.
// Records are immutable once appended; insertion order is
// chronological order.
type FeedbackRecord struct {
	ID         string         `json:"id"`
	Identity   string         `json:"identity"`
	Text       string         `json:"text"`
	Label      SentimentLabel `json:"sentiment"`
	Score      float64        `json:"sentiment_score"`
	RecordedAt time.Time      `json:"recorded_at"`
}

// FeedbackSummary is the aggregate view served to the operator
// dashboard. RecentNegative holds the last (up to) five negative
// records in chronological ascending order.
type FeedbackSummary struct {
	Total          int                    `json:"total"`
	Distribution   map[SentimentLabel]int `json:"distribution"`
	RecentNegative []FeedbackRecord       `json:"recent_concerns"`
}
