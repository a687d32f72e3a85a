package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/fyodorvi/gem-guru/internal/domain"
	"github.com/fyodorvi/gem-guru/internal/service"
)

// ============================================================
// Purchases: POST /v1/purchase/*
// ============================================================

func addPurchaseHandler(svc *service.GuruService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/purchase/add")
		defer span.End()

		userID := UserIDFromContext(ctx)
		span.SetAttributes(attribute.String("user.id", userID))

		var p domain.Purchase
		if !decodeJSON(w, r, &p) {
			return
		}

		calc, err := svc.AddPurchase(ctx, userID, p)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, calc)
	}
}

func updatePurchaseHandler(svc *service.GuruService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/purchase/{purchaseId}/update")
		defer span.End()

		userID := UserIDFromContext(ctx)
		purchaseID := chi.URLParam(r, "purchaseId")
		span.SetAttributes(
			attribute.String("user.id", userID),
			attribute.String("purchase.id", purchaseID),
		)

		var p domain.Purchase
		if !decodeJSON(w, r, &p) {
			return
		}

		calc, err := svc.UpdatePurchase(ctx, userID, purchaseID, p)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, calc)
	}
}

func removePurchaseHandler(svc *service.GuruService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/purchase/{purchaseId}/delete")
		defer span.End()

		userID := UserIDFromContext(ctx)
		purchaseID := chi.URLParam(r, "purchaseId")
		span.SetAttributes(
			attribute.String("user.id", userID),
			attribute.String("purchase.id", purchaseID),
		)

		calc, err := svc.RemovePurchase(ctx, userID, purchaseID)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, calc)
	}
}

func removePaidOffHandler(svc *service.GuruService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/purchase/remove-paid-off")
		defer span.End()

		userID := UserIDFromContext(ctx)
		span.SetAttributes(attribute.String("user.id", userID))

		var req struct {
			PurchaseIDs []string `json:"purchaseIds"`
		}
		if !decodeJSON(w, r, &req) {
			return
		}

		calc, err := svc.RemovePaidOff(ctx, userID, req.PurchaseIDs)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, calc)
	}
}
