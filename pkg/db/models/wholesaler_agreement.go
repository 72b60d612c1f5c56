package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// WholesalerAgreement is a time-bounded discount arrangement between a
// customer identity and a store. ActiveTo is NULL while the agreement is
// open-ended; at most one open-ended agreement may exist per (store,
// customer), enforced by a partial unique index.
type WholesalerAgreement struct {
	ID           uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	StoreID      uuid.UUID       `gorm:"column:store_id;type:uuid;not null;index:wholesaler_agreements_scope_idx"`
	CustomerID   uuid.UUID       `gorm:"column:customer_id;type:uuid;not null;index:wholesaler_agreements_scope_idx"`
	DiscountRate decimal.Decimal `gorm:"column:discount_rate;type:numeric(5,4);not null"`
	ActiveFrom   time.Time       `gorm:"column:active_from;not null"`
	ActiveTo     *time.Time      `gorm:"column:active_to"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime"`
}
