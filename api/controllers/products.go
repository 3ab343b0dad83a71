package controllers

import (
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/rahulmenon/billstack-backend/api/responses"
	"github.com/rahulmenon/billstack-backend/api/validators"
	"github.com/rahulmenon/billstack-backend/internal/inventory"
	pkgerrors "github.com/rahulmenon/billstack-backend/pkg/errors"
	"github.com/rahulmenon/billstack-backend/pkg/logger"
)

// CreateProduct handles catalog product creation.
func CreateProduct(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := authedUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload createProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toCreateInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.CreateProduct(r.Context(), userID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, product)
	}
}

// UpdateProduct applies partial catalog updates, including absolute quantity
// corrections.
func UpdateProduct(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := authedUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		productID, err := pathUUID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toUpdateInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.UpdateProduct(r.Context(), userID, productID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, product)
	}
}

// DeleteProduct soft-deletes a product. Its stock history stays queryable.
func DeleteProduct(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := authedUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		productID, err := pathUUID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteProduct(r.Context(), userID, productID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

// GetProduct fetches a single product owned by the caller.
func GetProduct(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := authedUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		productID, err := pathUUID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.GetProduct(r.Context(), userID, productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, product)
	}
}

// ListProducts pages through the caller's catalog newest first.
func ListProducts(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
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

		result, err := svc.ListProducts(r.Context(), userID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

type createProductRequest struct {
	Name      string          `json:"name" validate:"required"`
	Price     decimal.Decimal `json:"price"`
	Unit      string          `json:"unit" validate:"required"`
	Quantity  int             `json:"quantity" validate:"min=0"`
	BarcodeID *string         `json:"barcode_id,omitempty"`
}

func (r createProductRequest) toCreateInput() (inventory.CreateProductInput, error) {
	if r.Price.IsNegative() {
		return inventory.CreateProductInput{}, pkgerrors.New(pkgerrors.CodeValidation, "price must not be negative")
	}
	return inventory.CreateProductInput{
		Name:      strings.TrimSpace(r.Name),
		Price:     r.Price,
		Unit:      strings.TrimSpace(r.Unit),
		Quantity:  r.Quantity,
		BarcodeID: r.BarcodeID,
	}, nil
}

type updateProductRequest struct {
	Name      *string          `json:"name,omitempty"`
	Price     *decimal.Decimal `json:"price,omitempty"`
	Unit      *string          `json:"unit,omitempty"`
	Quantity  *int             `json:"quantity,omitempty" validate:"omitempty,min=0"`
	BarcodeID *string          `json:"barcode_id,omitempty"`
}

func (r updateProductRequest) toUpdateInput() (inventory.UpdateProductInput, error) {
	if r.Price != nil && r.Price.IsNegative() {
		return inventory.UpdateProductInput{}, pkgerrors.New(pkgerrors.CodeValidation, "price must not be negative")
	}
	return inventory.UpdateProductInput{
		Name:      r.Name,
		Price:     r.Price,
		Unit:      r.Unit,
		Quantity:  r.Quantity,
		BarcodeID: r.BarcodeID,
	}, nil
}
