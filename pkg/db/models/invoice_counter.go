package models

import (
	"time"

	"github.com/google/uuid"
)

// InvoiceCounter is the single per-user row that serializes invoice numbering.
// It is read and written only inside the invoice-creation transaction.
type InvoiceCounter struct {
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;primaryKey"`
	Count     int64     `gorm:"column:count;not null;default:0"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
