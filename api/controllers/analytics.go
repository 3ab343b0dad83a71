package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/rahulmenon/billstack-backend/api/responses"
	"github.com/rahulmenon/billstack-backend/api/validators"
	"github.com/rahulmenon/billstack-backend/internal/analytics"
	pkgerrors "github.com/rahulmenon/billstack-backend/pkg/errors"
	"github.com/rahulmenon/billstack-backend/pkg/logger"
)

// StockFlow returns the cumulative stock movement summary. An optional
// product_id query parameter scopes the result to a single product.
func StockFlow(svc analytics.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := authedUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var productID *uuid.UUID
		if raw := r.URL.Query().Get("product_id"); raw != "" {
			id, err := uuid.Parse(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product_id"))
				return
			}
			productID = &id
		}

		flow, err := svc.GetStockFlow(r.Context(), userID, productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, flow)
	}
}

// DailyStockFlow returns the per-day stock movement aggregate for the
// requested window.
func DailyStockFlow(svc analytics.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := authedUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		days, err := validators.ParseQueryInt(r, "days", analytics.DefaultWindowDays, 1, analytics.MaxWindowDays)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		flow, err := svc.GetDailyFlow(r.Context(), userID, days)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, flow)
	}
}
