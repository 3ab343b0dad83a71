package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/rahulmenon/billstack-backend/api/responses"
	"github.com/rahulmenon/billstack-backend/api/validators"
	"github.com/rahulmenon/billstack-backend/internal/invoices"
	"github.com/rahulmenon/billstack-backend/internal/offline"
	pkgerrors "github.com/rahulmenon/billstack-backend/pkg/errors"
	"github.com/rahulmenon/billstack-backend/pkg/logger"
)

// CreateInvoice commits an invoice. When the store is unreachable the payload
// lands on the offline queue instead and the client gets 202 with the queued
// placeholder.
func CreateInvoice(svc invoices.Service, queue *offline.Queue, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := authedUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload invoices.CreateInvoiceInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		invoice, err := svc.CreateInvoice(r.Context(), userID, payload)
		if err != nil {
			if queue != nil && pkgerrors.HasCode(err, pkgerrors.CodeConnectivity) {
				pending, qerr := queue.Enqueue(r.Context(), userID, payload)
				if qerr != nil {
					responses.WriteError(r.Context(), logg, w, qerr)
					return
				}
				if logg != nil {
					ctx := logg.WithField(r.Context(), "local_id", pending.LocalID)
					logg.Warn(ctx, "invoice queued offline")
				}
				responses.WriteSuccessStatus(w, http.StatusAccepted, pending)
				return
			}
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, invoice)
	}
}

// GetInvoice fetches one invoice with its line items.
func GetInvoice(svc invoices.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := authedUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		invoiceID, err := pathUUID(r, "invoiceId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		invoice, err := svc.GetInvoice(r.Context(), userID, invoiceID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, invoice)
	}
}

// ListInvoices pages through the caller's invoices newest first.
func ListInvoices(svc invoices.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := authedUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params, err := validators.ParsePaginationParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.ListInvoices(r.Context(), userID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// UpdateInvoice edits the mutable fields of a committed invoice. Numbers,
// line items, and totals never change after commit.
func UpdateInvoice(svc invoices.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := authedUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		invoiceID, err := pathUUID(r, "invoiceId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateInvoiceRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		invoice, err := svc.UpdateInvoice(r.Context(), userID, invoiceID, invoices.UpdateInvoiceInput{
			Customer: payload.Customer,
			Notes:    payload.Notes,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, invoice)
	}
}

// DeleteInvoice removes an invoice. Consumed stock is not restored and the
// invoice number is never reissued.
func DeleteInvoice(svc invoices.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := authedUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		invoiceID, err := pathUUID(r, "invoiceId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteInvoice(r.Context(), userID, invoiceID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

type updateInvoiceRequest struct {
	Customer json.RawMessage `json:"customer,omitempty"`
	Notes    *string         `json:"notes,omitempty"`
}
