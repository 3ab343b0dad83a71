package models

import (
	"time"

	"github.com/google/uuid"
)

// Customer is an address-book entry; invoices copy the fields they need at
// creation time rather than referencing this row.
type Customer struct {
	ID              uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	UserID          uuid.UUID `gorm:"column:user_id;type:uuid;not null;index"`
	Name            string    `gorm:"column:name;not null"`
	Email           string    `gorm:"column:email;not null"`
	Phone           string    `gorm:"column:phone;not null"`
	GSTNumber       *string   `gorm:"column:gst_number"`
	CompanyName     string    `gorm:"column:company_name;not null"`
	BillingAddress  string    `gorm:"column:billing_address;not null"`
	ShippingAddress string    `gorm:"column:shipping_address;not null"`
	CreatedAt       time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
