package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// UserProfile holds the sender details stamped onto new invoices.
type UserProfile struct {
	UserID          uuid.UUID      `gorm:"column:user_id;type:uuid;primaryKey"`
	FullName        string         `gorm:"column:full_name;not null"`
	PhoneNumber     string         `gorm:"column:phone_number;not null"`
	CompanyName     string         `gorm:"column:company_name;not null"`
	DispatchAddress string         `gorm:"column:dispatch_address;not null"`
	Notes           string         `gorm:"column:notes"`
	Terms           pq.StringArray `gorm:"column:terms;type:text[]"`
	CreatedAt       time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
