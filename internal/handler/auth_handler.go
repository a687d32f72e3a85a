package handler

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/fyodorvi/gem-guru/internal/domain"
	"github.com/fyodorvi/gem-guru/internal/service"
)

// ============================================================
// Authentication: POST /v1/auth/login
// ============================================================

func authLoginHandler(authSvc *service.AuthService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/auth/login")
		defer span.End()

		var req domain.LoginRequest
		if !decodeJSON(w, r, &req) {
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
