package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/rahulmenon/billstack-backend/api/responses"
	"github.com/rahulmenon/billstack-backend/internal/offline"
	pkgerrors "github.com/rahulmenon/billstack-backend/pkg/errors"
	"github.com/rahulmenon/billstack-backend/pkg/logger"
)

// ListPendingInvoices returns the caller's queued invoices in enqueue order.
func ListPendingInvoices(queue *offline.Queue, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := authedUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		pending, err := queue.List(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{
			"pending": pending,
			"count":   len(pending),
		})
	}
}

// DeletePendingInvoice discards one of the caller's queued invoices before it
// replays. Another user's entry with the same local id stays queued.
func DeletePendingInvoice(queue *offline.Queue, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := authedUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		localID := strings.TrimSpace(chi.URLParam(r, "localId"))
		if localID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "local id is required"))
			return
		}

		if err := queue.Remove(r.Context(), userID, localID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

// SyncNow triggers a replay pass over the caller's queued invoices.
func SyncNow(syncer *offline.Syncer, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := authedUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := syncer.ReplayQueue(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// ConnectivityStatus reports the monitor's last observed state and forces a
// fresh probe so clients see the current reality, not the last tick.
func ConnectivityStatus(monitor *offline.Monitor, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, err := authedUserID(r); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		state := monitor.CheckNow(r.Context())
		responses.WriteSuccess(w, map[string]string{"state": string(state)})
	}
}
