package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DeliveryMethod is a store-configured fulfillment option with a flat fee.
type DeliveryMethod struct {
	ID        uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	StoreID   uuid.UUID       `gorm:"column:store_id;type:uuid;not null;index"`
	Label     string          `gorm:"column:label;not null"`
	Fee       decimal.Decimal `gorm:"column:fee;type:numeric(12,2);not null;default:0"`
	IsActive  bool            `gorm:"column:is_active;not null;default:true"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
