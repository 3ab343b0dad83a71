package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/rahulmenon/billstack-backend/pkg/enums"
)

// StockTransaction is an immutable entry in the append-only stock log.
// ProductID is a bare reference: entries survive product deletion, so no
// foreign key is declared and readers must not assume the product still exists.
type StockTransaction struct {
	ID          uuid.UUID            `gorm:"column:id;type:uuid;primaryKey"`
	UserID      uuid.UUID            `gorm:"column:user_id;type:uuid;not null;index"`
	ProductID   uuid.UUID            `gorm:"column:product_id;type:uuid;not null;index"`
	ProductName string               `gorm:"column:product_name;not null"`
	Direction   enums.StockDirection `gorm:"column:direction;not null"`
	Quantity    int                  `gorm:"column:quantity;not null"`
	OccurredAt  time.Time            `gorm:"column:occurred_at;not null"`
	RelatedID   *string              `gorm:"column:related_id"`
	CreatedAt   time.Time            `gorm:"column:created_at;autoCreateTime"`
}
