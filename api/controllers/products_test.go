package controllers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/rahulmenon/billstack-backend/api/middleware"
	inventorysvc "github.com/rahulmenon/billstack-backend/internal/inventory"
	"github.com/rahulmenon/billstack-backend/pkg/logger"
	"github.com/rahulmenon/billstack-backend/pkg/pagination"
)

type stubInventoryService struct {
	deleted []uuid.UUID
}

func (s *stubInventoryService) CreateProduct(context.Context, uuid.UUID, inventorysvc.CreateProductInput) (*inventorysvc.ProductDTO, error) {
	panic("unimplemented")
}

func (s *stubInventoryService) UpdateProduct(context.Context, uuid.UUID, uuid.UUID, inventorysvc.UpdateProductInput) (*inventorysvc.ProductDTO, error) {
	panic("unimplemented")
}

func (s *stubInventoryService) DeleteProduct(_ context.Context, _ uuid.UUID, productID uuid.UUID) error {
	s.deleted = append(s.deleted, productID)
	return nil
}

func (s *stubInventoryService) GetProduct(context.Context, uuid.UUID, uuid.UUID) (*inventorysvc.ProductDTO, error) {
	panic("unimplemented")
}

func (s *stubInventoryService) ListProducts(context.Context, uuid.UUID, pagination.Params) (*inventorysvc.ProductListResult, error) {
	panic("unimplemented")
}

func TestDeleteProduct(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	userID := uuid.New()
	productID := uuid.New()

	makeRequest := func(stub *stubInventoryService, ctx context.Context, rawID string) *httptest.ResponseRecorder {
		routeCtx := chi.NewRouteContext()
		routeCtx.URLParams.Add("productId", rawID)
		ctx = context.WithValue(ctx, chi.RouteCtxKey, routeCtx)
		req := httptest.NewRequest(http.MethodDelete, "/api/v1/products/"+rawID, nil)
		req = req.WithContext(ctx)
		rec := httptest.NewRecorder()
		DeleteProduct(stub, logg).ServeHTTP(rec, req)
		return rec
	}

	t.Run("missing user", func(t *testing.T) {
		rec := makeRequest(&stubInventoryService{}, context.Background(), productID.String())
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401 when user missing, got %d", rec.Code)
		}
	})

	t.Run("invalid product id", func(t *testing.T) {
		ctx := middleware.WithUserID(context.Background(), userID.String())
		rec := makeRequest(&stubInventoryService{}, ctx, "not-a-uuid")
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 for invalid id, got %d", rec.Code)
		}
	})

	t.Run("success", func(t *testing.T) {
		stub := &stubInventoryService{}
		ctx := middleware.WithUserID(context.Background(), userID.String())
		rec := makeRequest(stub, ctx, productID.String())
		if rec.Code != http.StatusNoContent {
			t.Fatalf("expected 204 on success, got %d", rec.Code)
		}
		if len(stub.deleted) != 1 || stub.deleted[0] != productID {
			t.Fatalf("expected DeleteProduct to be invoked with %s", productID)
		}
	})
}
