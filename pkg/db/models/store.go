package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/matjara-app/matjara-backend/pkg/enums"
)

// Store represents the canonical tenant model. The slug is the only
// cross-tenant lookup key; every other entity hangs off the store ID.
type Store struct {
	ID           uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Slug         string          `gorm:"column:slug;not null;uniqueIndex:stores_slug_uniq"`
	Name         string          `gorm:"column:name;not null"`
	Description  *string         `gorm:"column:description"`
	Email        *string         `gorm:"column:email"`
	Phone        *string         `gorm:"column:phone"`
	Currency     enums.Currency  `gorm:"column:currency;not null;default:'ILS'"`
	DiscountRate decimal.Decimal `gorm:"column:discount_rate;type:numeric(5,4);not null;default:0"`
	IsActive     bool            `gorm:"column:is_active;not null;default:true"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
