package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/rahulmenon/billstack-backend/pkg/db/models"
	"github.com/shopspring/decimal"
)

// ProductDTO represents the catalog product payload returned to clients.
type ProductDTO struct {
	ID            uuid.UUID       `json:"id"`
	Name          string          `json:"name"`
	Price         decimal.Decimal `json:"price"`
	Unit          string          `json:"unit"`
	Quantity      int             `json:"quantity"`
	BarcodeID     *string         `json:"barcode_id,omitempty"`
	TotalStockIn  int             `json:"total_stock_in"`
	TotalStockOut int             `json:"total_stock_out"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// ProductListResult is one page of the catalog feed.
type ProductListResult struct {
	Products   []ProductDTO `json:"products"`
	NextCursor *string      `json:"next_cursor,omitempty"`
}

func toProductDTO(product *models.Product) *ProductDTO {
	return &ProductDTO{
		ID:            product.ID,
		Name:          product.Name,
		Price:         product.Price,
		Unit:          product.Unit,
		Quantity:      product.Quantity,
		BarcodeID:     product.BarcodeID,
		TotalStockIn:  product.TotalStockIn,
		TotalStockOut: product.TotalStockOut,
		CreatedAt:     product.CreatedAt,
		UpdatedAt:     product.UpdatedAt,
	}
}
