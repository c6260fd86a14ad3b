package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/boddenberg/citizen-ai-portal/internal/domain"
	"github.com/boddenberg/citizen-ai-portal/internal/service"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// Chat — POST /v1/chat, GET /v1/chat/transcript
// ============================================================

func chatHandler(convSvc *service.Conversation, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/chat")
		defer span.End()

		identity := IdentityFromContext(ctx)
		if identity == "" {
			writeError(w, http.StatusUnauthorized, "no authenticated identity")
			return
		}
		span.SetAttributes(attribute.String("identity", identity))

		var req domain.ChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if strings.TrimSpace(req.Message) == "" {
			writeError(w, http.StatusBadRequest, "message is required")
			return
		}

		// HandleMessage cannot fail: remote faults become sentinel
		// replies and the transcript always advances.
		transcript := convSvc.HandleMessage(ctx, identity, req.Message)

		writeJSON(w, http.StatusOK, domain.ChatResponse{
			Identity:   identity,
			Transcript: transcript,
		})
	}
}

func transcriptHandler(convSvc *service.Conversation, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/chat/transcript")
		defer span.End()

		identity := IdentityFromContext(ctx)
		if identity == "" {
			writeError(w, http.StatusUnauthorized, "no authenticated identity")
			return
		}
		span.SetAttributes(attribute.String("identity", identity))

		writeJSON(w, http.StatusOK, domain.ChatResponse{
			Identity:   identity,
			Transcript: convSvc.Transcript(identity),
		})
	}
}
