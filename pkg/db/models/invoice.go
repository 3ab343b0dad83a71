package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Invoice is the business record created atomically with stock depletion and
// counter increment. Sender and customer details are JSON snapshots taken at
// creation time; later edits to the profile or customer never touch them.
type Invoice struct {
	ID            uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	UserID        uuid.UUID         `gorm:"column:user_id;type:uuid;not null;uniqueIndex:ux_invoices_user_number,priority:1;index:idx_invoices_user_created"`
	InvoiceNumber string            `gorm:"column:invoice_number;not null;uniqueIndex:ux_invoices_user_number,priority:2"`
	Sender        json.RawMessage   `gorm:"column:sender;type:jsonb;not null"`
	Customer      json.RawMessage   `gorm:"column:customer;type:jsonb;not null"`
	TaxRate       decimal.Decimal   `gorm:"column:tax_rate;type:numeric(6,2);not null"`
	DiscountRate  decimal.Decimal   `gorm:"column:discount_rate;type:numeric(6,2);not null"`
	Subtotal      decimal.Decimal   `gorm:"column:subtotal;type:numeric(14,2);not null"`
	DiscountAmt   decimal.Decimal   `gorm:"column:discount_amount;type:numeric(14,2);not null"`
	TaxAmt        decimal.Decimal   `gorm:"column:tax_amount;type:numeric(14,2);not null"`
	GrandTotal    decimal.Decimal   `gorm:"column:grand_total;type:numeric(14,2);not null"`
	Notes         *string           `gorm:"column:notes"`
	LineItems     []InvoiceLineItem `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time         `gorm:"column:created_at;autoCreateTime;index:idx_invoices_user_created"`
	UpdatedAt     time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

// InvoiceLineItem is a fully snapshotted sale line: name, price, and unit are
// copied from the product at creation time and stay valid after the product
// changes or disappears.
type InvoiceLineItem struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	InvoiceID uuid.UUID       `gorm:"column:invoice_id;type:uuid;not null;index"`
	ProductID uuid.UUID       `gorm:"column:product_id;type:uuid;not null"`
	Name      string          `gorm:"column:name;not null"`
	UnitPrice decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null"`
	Unit      string          `gorm:"column:unit;not null"`
	Quantity  int             `gorm:"column:quantity;not null"`
	Position  int             `gorm:"column:position;not null;default:0"`
}
