package service

import (
	"sync"
	"time"

	"github.com/boddenberg/citizen-ai-portal/internal/domain"
	"github.com/boddenberg/citizen-ai-portal/internal/infra/observability"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// recentNegativeLimit caps the recent-concerns view on the dashboard.
const recentNegativeLimit = 5

// FeedbackLog is the in-memory, append-only log of sentiment
// observations and the aggregation behind the operator dashboard.
// Appends are serialized by a single mutex; records are never mutated
// and the log only grows for the life of the process.
type FeedbackLog struct {
	mu      sync.RWMutex
	records []domain.FeedbackRecord

	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewFeedbackLog creates an empty feedback log.
func NewFeedbackLog(metrics *observability.Metrics, logger *zap.Logger) *FeedbackLog {
	return &FeedbackLog{
		metrics: metrics,
		logger:  logger,
	}
}

// Record appends one observation. It never fails; a full log is not a
// condition this process can reach before memory pressure does.
func (f *FeedbackLog) Record(identity, text string, sentiment domain.Sentiment) {
	record := domain.FeedbackRecord{
		ID:         uuid.New().String(),
		Identity:   identity,
		Text:       text,
		Label:      sentiment.Label,
		Score:      sentiment.Score,
		RecordedAt: time.Now(),
	}

	f.mu.Lock()
	f.records = append(f.records, record)
	total := len(f.records)
	f.mu.Unlock()

	f.metrics.IncrSentiment(sentiment.Label)

	f.logger.Debug("feedback recorded",
		zap.String("identity", identity),
		zap.String("label", string(sentiment.Label)),
		zap.Float64("score", sentiment.Score),
		zap.Int("total", total),
	)
}

// Summarize computes the dashboard view: total record count, the
// per-label distribution, and the last (up to) five negative records
// in chronological ascending order. An empty log yields a defined
// empty state, never an error.
func (f *FeedbackLog) Summarize() *domain.FeedbackSummary {
	f.mu.RLock()
	defer f.mu.RUnlock()

	summary := &domain.FeedbackSummary{
		Total:          len(f.records),
		Distribution:   make(map[domain.SentimentLabel]int),
		RecentNegative: []domain.FeedbackRecord{},
	}

	var negatives []domain.FeedbackRecord
	for _, r := range f.records {
		summary.Distribution[r.Label]++
		if r.Label == domain.SentimentNegative {
			negatives = append(negatives, r)
		}
	}

	// Tail semantics: oldest-of-the-last-five first.
	if len(negatives) > recentNegativeLimit {
		negatives = negatives[len(negatives)-recentNegativeLimit:]
	}
	summary.RecentNegative = append(summary.RecentNegative, negatives...)

	return summary
}
