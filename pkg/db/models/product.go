package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is the authoritative inventory record for a user's catalog entry.
// Quantity and the cumulative counters are mirrors of the stock transaction
// log; they are only ever written by the inventory engine inside a ledger
// transaction.
type Product struct {
	ID            uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	UserID        uuid.UUID       `gorm:"column:user_id;type:uuid;not null;index"`
	Name          string          `gorm:"column:name;not null"`
	Price         decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null"`
	Unit          string          `gorm:"column:unit;not null"`
	Quantity      int             `gorm:"column:quantity;not null;default:0"`
	BarcodeID     *string         `gorm:"column:barcode_id"`
	TotalStockIn  int             `gorm:"column:total_stock_in;not null;default:0"`
	TotalStockOut int             `gorm:"column:total_stock_out;not null;default:0"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
