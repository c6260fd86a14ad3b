// Package nlu provides the Watson Natural Language Understanding
// client used to score citizen messages for sentiment.
package nlu

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/boddenberg/citizen-ai-portal/internal/domain"
	"github.com/boddenberg/citizen-ai-portal/internal/infra/observability"
	"github.com/boddenberg/citizen-ai-portal/internal/port"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("nlu")

// apiVersion pins the NLU analyze API.
const apiVersion = "2022-04-07"

// SentimentClient scores texts via the NLU /v1/analyze endpoint.
//
// It has exactly three terminal outcomes: "unavailable" when the
// service is not configured, "error" when a call was attempted and
// failed, or a genuine {positive, negative, neutral} label with a
// score in [-1, 1]. It never returns an error to the caller — a
// citizen-facing chat must always render something.
type SentimentClient struct {
	httpClient *http.Client
	serviceURL string
	apiKey     string
	tokens     port.TokenSource
	cb         *gobreaker.CircuitBreaker
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// NewSentimentClient creates the sentiment client. The token source
// must be keyed by the NLU credential, not the watsonx one.
func NewSentimentClient(httpClient *http.Client, serviceURL, apiKey string, tokens port.TokenSource, cb *gobreaker.CircuitBreaker, metrics *observability.Metrics, logger *zap.Logger) *SentimentClient {
	return &SentimentClient{
		httpClient: httpClient,
		serviceURL: serviceURL,
		apiKey:     apiKey,
		tokens:     tokens,
		cb:         cb,
		metrics:    metrics,
		logger:     logger,
	}
}

// Analyze requests document-level sentiment for text.
func (c *SentimentClient) Analyze(ctx context.Context, text string) domain.Sentiment {
	ctx, span := tracer.Start(ctx, "SentimentClient.Analyze")
	defer span.End()
	span.SetAttributes(attribute.Int("text.length", len(text)))

	if c.apiKey == "" || c.serviceURL == "" {
		c.logger.Debug("nlu not configured, skipping sentiment analysis")
		return domain.Sentiment{Label: domain.SentimentUnavailable, Score: 0}
	}

	sentiment, err := c.analyze(ctx, text)
	if err != nil {
		// Fail-soft: log the fault with its full chain, count it,
		// and hand back the error sentinel.
		c.logger.Error("sentiment analysis failed", zap.Error(err))
		c.metrics.IncrExternalError("nlu")
		return domain.Sentiment{Label: domain.SentimentError, Score: 0}
	}

	return sentiment
}

func (c *SentimentClient) analyze(ctx context.Context, text string) (domain.Sentiment, error) {
	var zero domain.Sentiment

	token, err := c.tokens.AcquireToken(ctx)
	if err != nil {
		return zero, err
	}

	var sentiment domain.Sentiment

	_, err = c.cb.Execute(func() (any, error) {
		payload := domain.SentimentAnalyzeRequest{Text: text}

		body, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal analyze request: %w", err)
		}

		url := fmt.Sprintf("%s/v1/analyze?version=%s", c.serviceURL, apiVersion)
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("create analyze request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+token)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			respBody, _ := io.ReadAll(resp.Body)
			return nil, &domain.ErrRemoteStatus{
				Service: "nlu",
				Status:  resp.StatusCode,
				Body:    string(respBody),
			}
		}

		var analyzeResp domain.SentimentAnalyzeResponse
		if err := json.NewDecoder(resp.Body).Decode(&analyzeResp); err != nil {
			return nil, fmt.Errorf("decode analyze response: %w", err)
		}
		if analyzeResp.Sentiment.Document.Label == "" {
			return nil, fmt.Errorf("analyze response has no document sentiment")
		}

		sentiment = analyzeResp.Sentiment.Document
		return nil, nil
	})

	if err != nil {
		return zero, &domain.ErrExternalService{Service: "nlu", Err: err}
	}

	return sentiment, nil
}
