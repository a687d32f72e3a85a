package handler

import (
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/fyodorvi/gem-guru/internal/domain"
	"github.com/fyodorvi/gem-guru/internal/service"
)

// ============================================================
// Profile: GET/POST /v1/profile
// ============================================================

func getProfileHandler(svc *service.GuruService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/profile")
		defer span.End()

		userID := UserIDFromContext(ctx)
		span.SetAttributes(attribute.String("user.id", userID))

		settings, err := svc.GetProfile(ctx, userID)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, settings)
	}
}

func setProfileHandler(svc *service.GuruService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/profile")
		defer span.End()

		userID := UserIDFromContext(ctx)
		span.SetAttributes(attribute.String("user.id", userID))

		var settings domain.ProfileSettings
		if !decodeJSON(w, r, &settings) {
			return
		}

		if err := svc.SetProfile(ctx, userID, settings); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}

// ============================================================
// Calculation: GET /v1/calculate, GET /v1/projection
// ============================================================

func calculateHandler(svc *service.GuruService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/calculate")
		defer span.End()

		userID := UserIDFromContext(ctx)
		span.SetAttributes(attribute.String("user.id", userID))

		calc, err := svc.Calculate(ctx, userID)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, calc)
	}
}

func projectionHandler(svc *service.GuruService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/projection")
		defer span.End()

		userID := UserIDFromContext(ctx)
		span.SetAttributes(attribute.String("user.id", userID))

		proj, err := svc.Projection(ctx, userID)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, proj)
	}
}
