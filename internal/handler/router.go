package handler

import (
	"net/http"

	"github.com/boddenberg/citizen-ai-portal/internal/infra/observability"
	"github.com/boddenberg/citizen-ai-portal/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("handler")

// NewRouter creates the HTTP router with all routes and middleware.
// The chat and dashboard routes require a valid session token; the
// operational endpoints and login do not.
func NewRouter(convSvc *service.Conversation, feedbackSvc *service.FeedbackLog, authSvc *service.AuthService, metrics *observability.Metrics, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.ZapLoggerMiddleware(logger))
	r.Use(observability.TracingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))

	// --- Operational endpoints ---
	r.Get("/healthz", healthzHandler())
	r.Get("/readyz", readyzHandler())
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	// --- API v1 ---
	r.Route("/v1", func(r chi.Router) {

		// =============================================
		// 1. Auth
		// POST /v1/auth/login
		// =============================================
		r.Post("/auth/login", loginHandler(authSvc, logger))

		// Authenticated surface
		r.Group(func(r chi.Router) {
			r.Use(JWTAuthMiddleware(authSvc, logger))

			// =============================================
			// 2. Chat
			// POST /v1/chat
			// GET  /v1/chat/transcript
			// =============================================
			r.Post("/chat", chatHandler(convSvc, logger))
			r.Get("/chat/transcript", transcriptHandler(convSvc, logger))

			// =============================================
			// 3. Dashboard
			// GET /v1/dashboard/summary
			// GET /v1/metrics/portal
			// =============================================
			r.Get("/dashboard/summary", dashboardSummaryHandler(feedbackSvc, logger))
			r.Get("/metrics/portal", portalMetricsHandler(metrics, logger))
		})
	})

	return r
}

func healthzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

func readyzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Remote credentials being absent is degraded mode, not
		// unreadiness; the portal serves sentinel outcomes either way.
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}
