package controllers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/rahulmenon/billstack-backend/api/middleware"
	invoicesvc "github.com/rahulmenon/billstack-backend/internal/invoices"
	"github.com/rahulmenon/billstack-backend/pkg/logger"
	"github.com/rahulmenon/billstack-backend/pkg/types"
)

func TestPendingInvoicesAreTenantScoped(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	queue := newTestQueue(t)
	ctx := context.Background()
	alice := uuid.New()
	bob := uuid.New()

	aliceItem, err := queue.Enqueue(ctx, alice, invoicesvc.CreateInvoiceInput{
		Items: []invoicesvc.LineItemInput{
			{ProductID: uuid.New(), Name: "Widget", Quantity: 1},
		},
	})
	if err != nil {
		t.Fatalf("Enqueue: %v", err)
	}

	t.Run("listHidesOtherUsersEntries", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/invoices/pending", nil)
		req = req.WithContext(middleware.WithUserID(ctx, bob.String()))
		rec := httptest.NewRecorder()
		ListPendingInvoices(queue, logg).ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		var body types.SuccessEnvelope
		if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
			t.Fatalf("decode envelope: %v", err)
		}
		payload := body.Data.(map[string]any)
		if count, _ := payload["count"].(float64); count != 0 {
			t.Fatalf("expected empty queue for bob, got count %v", payload["count"])
		}
	})

	t.Run("deleteCannotRemoveOtherUsersEntry", func(t *testing.T) {
		routeCtx := chi.NewRouteContext()
		routeCtx.URLParams.Add("localId", aliceItem.LocalID)
		reqCtx := context.WithValue(middleware.WithUserID(ctx, bob.String()), chi.RouteCtxKey, routeCtx)

		req := httptest.NewRequest(http.MethodDelete, "/api/v1/invoices/pending/"+aliceItem.LocalID, nil)
		req = req.WithContext(reqCtx)
		rec := httptest.NewRecorder()
		DeletePendingInvoice(queue, logg).ServeHTTP(rec, req)

		pending, err := queue.List(ctx, alice)
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if len(pending) != 1 || pending[0].LocalID != aliceItem.LocalID {
			t.Fatalf("expected alice's entry to survive bob's delete, got %+v", pending)
		}
	})

	t.Run("ownerSeesAndRemovesOwnEntry", func(t *testing.T) {
		routeCtx := chi.NewRouteContext()
		routeCtx.URLParams.Add("localId", aliceItem.LocalID)
		reqCtx := context.WithValue(middleware.WithUserID(ctx, alice.String()), chi.RouteCtxKey, routeCtx)

		req := httptest.NewRequest(http.MethodDelete, "/api/v1/invoices/pending/"+aliceItem.LocalID, nil)
		req = req.WithContext(reqCtx)
		rec := httptest.NewRecorder()
		DeletePendingInvoice(queue, logg).ServeHTTP(rec, req)

		if rec.Code != http.StatusNoContent {
			t.Fatalf("expected 204, got %d", rec.Code)
		}
		pending, err := queue.List(ctx, alice)
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if len(pending) != 0 {
			t.Fatalf("expected empty queue for alice, got %+v", pending)
		}
	})
}
