package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderLineItem snapshots one priced product line at checkout time.
type OrderLineItem struct {
	ID        uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID   uuid.UUID       `gorm:"column:order_id;type:uuid;not null;index"`
	ProductID uuid.UUID       `gorm:"column:product_id;type:uuid;not null"`
	Title     string          `gorm:"column:title;not null"`
	Quantity  int             `gorm:"column:quantity;not null"`
	BasePrice decimal.Decimal `gorm:"column:base_price;type:numeric(12,2);not null"`
	UnitPrice decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null"`
	LineTotal decimal.Decimal `gorm:"column:line_total;type:numeric(12,2);not null"`
}
