package service_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/boddenberg/citizen-ai-portal/internal/domain"
	"github.com/boddenberg/citizen-ai-portal/internal/infra/observability"
	"github.com/boddenberg/citizen-ai-portal/internal/service"

	"go.uber.org/zap"
)

func newFeedbackLog() *service.FeedbackLog {
	return service.NewFeedbackLog(observability.NewMetrics(), zap.NewNop())
}

func TestSummarize_Empty(t *testing.T) {
	log := newFeedbackLog()

	summary := log.Summarize()

	if summary.Total != 0 {
		t.Errorf("expected total 0, got %d", summary.Total)
	}
	if len(summary.Distribution) != 0 {
		t.Errorf("expected empty distribution, got %v", summary.Distribution)
	}
	if summary.RecentNegative == nil {
		t.Fatal("expected empty slice, got nil")
	}
	if len(summary.RecentNegative) != 0 {
		t.Errorf("expected no recent negatives, got %d", len(summary.RecentNegative))
	}
}

func TestSummarize_TotalMatchesRecordCount(t *testing.T) {
	log := newFeedbackLog()

	labels := []domain.SentimentLabel{
		domain.SentimentPositive,
		domain.SentimentNegative,
		domain.SentimentNeutral,
		domain.SentimentUnavailable,
		domain.SentimentError,
		domain.SentimentNeutral,
	}
	for i, label := range labels {
		log.Record("citizen1", fmt.Sprintf("message %d", i), domain.Sentiment{Label: label, Score: 0.5})
	}

	summary := log.Summarize()

	if summary.Total != len(labels) {
		t.Errorf("expected total %d, got %d", len(labels), summary.Total)
	}
	if summary.Distribution[domain.SentimentNeutral] != 2 {
		t.Errorf("expected 2 neutral records, got %d", summary.Distribution[domain.SentimentNeutral])
	}
	if summary.Distribution[domain.SentimentNegative] != 1 {
		t.Errorf("expected 1 negative record, got %d", summary.Distribution[domain.SentimentNegative])
	}
}

func TestSummarize_RecentNegativeTail(t *testing.T) {
	log := newFeedbackLog()

	// Interleave 8 negatives with other labels.
	for i := 0; i < 8; i++ {
		log.Record("citizen1", fmt.Sprintf("complaint %d", i), domain.Sentiment{Label: domain.SentimentNegative, Score: -0.8})
		log.Record("citizen1", fmt.Sprintf("praise %d", i), domain.Sentiment{Label: domain.SentimentPositive, Score: 0.9})
	}

	summary := log.Summarize()

	if len(summary.RecentNegative) != 5 {
		t.Fatalf("expected 5 recent negatives, got %d", len(summary.RecentNegative))
	}
	// Tail of the negative subsequence, chronological ascending:
	// complaints 3 through 7.
	for i, r := range summary.RecentNegative {
		want := fmt.Sprintf("complaint %d", i+3)
		if r.Text != want {
			t.Errorf("recent negative %d: expected %q, got %q", i, want, r.Text)
		}
		if r.Label != domain.SentimentNegative {
			t.Errorf("recent negative %d: expected negative label, got %q", i, r.Label)
		}
	}
}

func TestSummarize_FewerThanFiveNegatives(t *testing.T) {
	log := newFeedbackLog()

	log.Record("citizen1", "bad roads", domain.Sentiment{Label: domain.SentimentNegative, Score: -0.5})
	log.Record("citizen2", "thanks", domain.Sentiment{Label: domain.SentimentPositive, Score: 0.7})
	log.Record("citizen1", "broken light", domain.Sentiment{Label: domain.SentimentNegative, Score: -0.6})

	summary := log.Summarize()

	if len(summary.RecentNegative) != 2 {
		t.Fatalf("expected 2 recent negatives, got %d", len(summary.RecentNegative))
	}
	if summary.RecentNegative[0].Text != "bad roads" || summary.RecentNegative[1].Text != "broken light" {
		t.Errorf("unexpected recent negative ordering: %v", summary.RecentNegative)
	}
}

func TestRecord_ConcurrentAppends(t *testing.T) {
	log := newFeedbackLog()

	const workers = 20
	const perWorker = 50

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				log.Record(fmt.Sprintf("citizen%d", w), "concurrent message", domain.Sentiment{Label: domain.SentimentNeutral, Score: 0})
			}
		}(w)
	}
	wg.Wait()

	summary := log.Summarize()
	if summary.Total != workers*perWorker {
		t.Errorf("expected %d records, got %d", workers*perWorker, summary.Total)
	}
}
