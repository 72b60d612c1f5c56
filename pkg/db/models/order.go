package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/matjara-app/matjara-backend/pkg/enums"
)

// Order is the persisted result of a checkout. Monetary fields are snapshots
// taken at pricing time; later catalog or agreement changes never reprice a
// placed order.
type Order struct {
	ID               uuid.UUID         `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	StoreID          uuid.UUID         `gorm:"column:store_id;type:uuid;not null;index"`
	CustomerID       uuid.UUID         `gorm:"column:customer_id;type:uuid;not null;index"`
	Status           enums.OrderStatus `gorm:"column:status;not null;default:'pending'"`
	DeliveryMethodID *uuid.UUID        `gorm:"column:delivery_method_id;type:uuid"`
	Subtotal         decimal.Decimal   `gorm:"column:subtotal;type:numeric(12,2);not null"`
	DeliveryFee      decimal.Decimal   `gorm:"column:delivery_fee;type:numeric(12,2);not null;default:0"`
	Total            decimal.Decimal   `gorm:"column:total;type:numeric(12,2);not null"`
	Currency         enums.Currency    `gorm:"column:currency;not null"`
	WholesalePricing bool              `gorm:"column:wholesale_pricing;not null;default:false"`
	CreatedAt        time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time         `gorm:"column:updated_at;autoUpdateTime"`

	LineItems []OrderLineItem `gorm:"foreignKey:OrderID"`
}
