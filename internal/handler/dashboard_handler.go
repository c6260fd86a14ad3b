package handler

import (
	"net/http"

	"github.com/boddenberg/citizen-ai-portal/internal/infra/observability"
	"github.com/boddenberg/citizen-ai-portal/internal/service"

	"go.uber.org/zap"
)

// ============================================================
// Dashboard — GET /v1/dashboard/summary, GET /v1/metrics/portal
// ============================================================

func dashboardSummaryHandler(feedback *service.FeedbackLog, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, span := tracer.Start(r.Context(), "GET /v1/dashboard/summary")
		defer span.End()

		// Zero records is a defined empty state, not an error: the
		// dashboard renders total 0 and empty collections.
		writeJSON(w, http.StatusOK, feedback.Summarize())
	}
}

func portalMetricsHandler(metrics *observability.Metrics, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, span := tracer.Start(r.Context(), "GET /v1/metrics/portal")
		defer span.End()

		writeJSON(w, http.StatusOK, metrics.GetPortalSnapshot())
	}
}
