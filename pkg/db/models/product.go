package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/matjara-app/matjara-backend/pkg/enums"
)

// Product is a store-scoped catalog entry. Slugs are unique per store, not
// globally; two stores can both sell "olive-oil-1l".
type Product struct {
	ID          uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	StoreID     uuid.UUID       `gorm:"column:store_id;type:uuid;not null;uniqueIndex:products_store_slug_uniq"`
	CategoryID  *uuid.UUID      `gorm:"column:category_id;type:uuid;index"`
	Title       string          `gorm:"column:title;not null"`
	Slug        string          `gorm:"column:slug;not null;uniqueIndex:products_store_slug_uniq"`
	Description *string         `gorm:"column:description"`
	BasePrice   decimal.Decimal `gorm:"column:base_price;type:numeric(12,2);not null"`
	Currency    enums.Currency  `gorm:"column:currency;not null;default:'ILS'"`
	IsActive    bool            `gorm:"column:is_active;not null;default:true"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
