package handler

import (
	"encoding/json"
	"net/http"

	"github.com/boddenberg/citizen-ai-portal/internal/domain"
	"github.com/boddenberg/citizen-ai-portal/internal/service"

	"go.uber.org/zap"
)

// ============================================================
// Auth — POST /v1/auth/login
// ============================================================

func loginHandler(authSvc *service.AuthService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/auth/login")
		defer span.End()

		var req domain.LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		resp, err := authSvc.Login(ctx, &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, resp)
	}
}
