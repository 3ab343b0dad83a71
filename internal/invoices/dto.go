package invoices

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rahulmenon/billstack-backend/pkg/db/models"
	"github.com/shopspring/decimal"
)

// InvoiceDTO represents the invoice payload returned to clients.
type InvoiceDTO struct {
	ID            uuid.UUID       `json:"id"`
	InvoiceNumber string          `json:"invoice_number"`
	Sender        json.RawMessage `json:"sender"`
	Customer      json.RawMessage `json:"customer"`
	TaxRate       decimal.Decimal `json:"tax_rate"`
	DiscountRate  decimal.Decimal `json:"discount_rate"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	DiscountAmt   decimal.Decimal `json:"discount_amount"`
	TaxAmt        decimal.Decimal `json:"tax_amount"`
	GrandTotal    decimal.Decimal `json:"grand_total"`
	Notes         *string         `json:"notes,omitempty"`
	LineItems     []LineItemDTO   `json:"line_items"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// LineItemDTO is one snapshotted sale line.
type LineItemDTO struct {
	ID        uuid.UUID       `json:"id"`
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Unit      string          `json:"unit"`
	Quantity  int             `json:"quantity"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// InvoiceListResult is one page of the invoice feed, newest first.
type InvoiceListResult struct {
	Invoices   []InvoiceDTO `json:"invoices"`
	NextCursor *string      `json:"next_cursor,omitempty"`
}

func toInvoiceDTO(invoice *models.Invoice) *InvoiceDTO {
	dto := &InvoiceDTO{
		ID:            invoice.ID,
		InvoiceNumber: invoice.InvoiceNumber,
		Sender:        invoice.Sender,
		Customer:      invoice.Customer,
		TaxRate:       invoice.TaxRate,
		DiscountRate:  invoice.DiscountRate,
		Subtotal:      invoice.Subtotal,
		DiscountAmt:   invoice.DiscountAmt,
		TaxAmt:        invoice.TaxAmt,
		GrandTotal:    invoice.GrandTotal,
		Notes:         invoice.Notes,
		CreatedAt:     invoice.CreatedAt,
		UpdatedAt:     invoice.UpdatedAt,
	}

	dto.LineItems = make([]LineItemDTO, 0, len(invoice.LineItems))
	for _, item := range invoice.LineItems {
		dto.LineItems = append(dto.LineItems, LineItemDTO{
			ID:        item.ID,
			ProductID: item.ProductID,
			Name:      item.Name,
			UnitPrice: item.UnitPrice,
			Unit:      item.Unit,
			Quantity:  item.Quantity,
			LineTotal: item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))).Round(2),
		})
	}
	return dto
}
