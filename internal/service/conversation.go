package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/boddenberg/citizen-ai-portal/internal/domain"
	"github.com/boddenberg/citizen-ai-portal/internal/infra/observability"
	"github.com/boddenberg/citizen-ai-portal/internal/infra/resilience"
	"github.com/boddenberg/citizen-ai-portal/internal/port"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var tracer = otel.Tracer("service/conversation")

// promptTemplate wraps the citizen's message. The message is embedded
// verbatim between plain quotes; the framing instructs the model to
// act as a respectful citizen-engagement assistant.
const promptTemplate = `You are 'Citizen AI', a helpful and respectful assistant for a government citizen engagement platform.
A citizen is asking a question. Provide a clear, concise, and helpful response.
Citizen's question: "%s"
Your response:`

// Conversation orchestrates one inbound message: transcript append,
// prompt build, inference, sentiment scoring and feedback recording.
// Every step runs exactly once per message; remote failures degrade
// to sentinel values instead of aborting the remaining steps.
type Conversation struct {
	transcripts port.TranscriptStore
	generator   port.TextGenerator
	sentiment   port.SentimentAnalyzer
	feedback    port.FeedbackRecorder
	bulkhead    *resilience.Bulkhead
	metrics     *observability.Metrics
	logger      *zap.Logger
}

// NewConversation creates the conversation service with all
// dependencies injected.
func NewConversation(
	transcripts port.TranscriptStore,
	generator port.TextGenerator,
	sentiment port.SentimentAnalyzer,
	feedback port.FeedbackRecorder,
	bulkhead *resilience.Bulkhead,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *Conversation {
	return &Conversation{
		transcripts: transcripts,
		generator:   generator,
		sentiment:   sentiment,
		feedback:    feedback,
		bulkhead:    bulkhead,
		metrics:     metrics,
		logger:      logger,
	}
}

// HandleMessage processes one citizen message end to end and returns
// the identity's full transcript for rendering.
//
// The transcript always grows by exactly two entries per call, one
// user and one assistant, regardless of remote outcomes. Sentiment is
// scored on the original message, not the reply, so the two remote
// calls have no data dependency and run concurrently.
func (c *Conversation) HandleMessage(ctx context.Context, identity, message string) []domain.TranscriptEntry {
	ctx, span := tracer.Start(ctx, "Conversation.HandleMessage")
	defer span.End()
	span.SetAttributes(attribute.String("identity", identity))

	start := time.Now()
	defer func() {
		c.metrics.RecordRequestDuration("chat", time.Since(start))
	}()

	c.transcripts.Append(identity, domain.TranscriptEntry{
		Sender:    domain.SenderUser,
		Text:      message,
		Timestamp: time.Now(),
	})

	prompt := buildPrompt(message)

	var (
		reply     string
		degraded  bool
		sentiment domain.Sentiment
	)

	// The bulkhead bounds total concurrent remote work across all
	// requests. Sentiment still runs when no slot is available: the
	// analyzer fail-softs on its own, so every message gets scored.
	if err := c.bulkhead.Acquire(ctx); err != nil {
		reply = renderFault(&domain.ErrExternalService{Service: "watsonx", Err: err})
		degraded = true
		sentiment = c.sentiment.Analyze(ctx, message)
	} else {
		g, gCtx := errgroup.WithContext(ctx)

		g.Go(func() error {
			gen, err := c.generator.Generate(gCtx, prompt)
			if err != nil {
				c.logger.Error("inference failed",
					zap.String("identity", identity),
					zap.Error(err),
				)
				c.metrics.IncrExternalError("watsonx")
				reply = renderFault(err)
				degraded = true
				return nil // fail-soft: the diagnostic becomes the reply
			}
			reply = gen.Text
			return nil
		})

		g.Go(func() error {
			// Analyze never fails; sentinel labels cover its faults.
			sentiment = c.sentiment.Analyze(gCtx, message)
			return nil
		})

		_ = g.Wait()
		c.bulkhead.Release()
	}

	// The assistant entry advances even on failure.
	c.transcripts.Append(identity, domain.TranscriptEntry{
		Sender:    domain.SenderAssistant,
		Text:      reply,
		Timestamp: time.Now(),
	})

	c.feedback.Record(identity, message, sentiment)

	if degraded {
		c.metrics.IncrRequest("degraded")
	} else {
		c.metrics.IncrRequest("success")
	}

	return c.transcripts.Get(identity)
}

// Transcript returns the identity's transcript without sending a
// message. A new identity gets an empty transcript.
func (c *Conversation) Transcript(identity string) []domain.TranscriptEntry {
	return c.transcripts.Get(identity)
}

func buildPrompt(message string) string {
	return fmt.Sprintf(promptTemplate, message)
}

// renderFault maps a typed inference fault to the diagnostic reply
// shown in the transcript.
func renderFault(err error) string {
	var (
		configMissing *domain.ErrConfigMissing
		authFailure   *domain.ErrAuthFailure
		remoteStatus  *domain.ErrRemoteStatus
		external      *domain.ErrExternalService
	)

	switch {
	case errors.As(err, &configMissing):
		return "ERROR: Missing Watsonx API credentials."
	case errors.As(err, &authFailure):
		return "ERROR: Failed to get IAM access token."
	case errors.As(err, &remoteStatus):
		return "ERROR: " + remoteStatus.Body
	case errors.As(err, &external):
		return "ERROR: " + external.Err.Error()
	default:
		return "ERROR: " + err.Error()
	}
}
