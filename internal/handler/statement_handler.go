package handler

import (
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/fyodorvi/gem-guru/internal/domain"
	"github.com/fyodorvi/gem-guru/internal/service"
)

// ============================================================
// Statement upload: POST /v1/statement/parse[?preview=true]
// ============================================================

func parseStatementHandler(svc *service.GuruService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/statement/parse")
		defer span.End()

		userID := UserIDFromContext(ctx)
		preview := r.URL.Query().Get("preview") == "true"
		span.SetAttributes(
			attribute.String("user.id", userID),
			attribute.Bool("statement.preview", preview),
		)

		var req domain.StatementRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		var (
			result *domain.StatementParseResult
			err    error
		)
		if preview {
			result, err = svc.ParseStatementPreview(ctx, userID, &req)
		} else {
			result, err = svc.ParseAndApplyStatement(ctx, userID, &req)
		}
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, result)
	}
}
