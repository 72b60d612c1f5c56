package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/matjara-app/matjara-backend/pkg/enums"
)

// Payment records a Lahza charge attempt for an order. Reference is the
// gateway-side transaction reference and is unique, which makes webhook
// delivery idempotent.
type Payment struct {
	ID         uuid.UUID           `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID    uuid.UUID           `gorm:"column:order_id;type:uuid;not null;index"`
	StoreID    uuid.UUID           `gorm:"column:store_id;type:uuid;not null;index"`
	Provider   string              `gorm:"column:provider;not null;default:'lahza'"`
	Reference  string              `gorm:"column:reference;not null;uniqueIndex:payments_reference_uniq"`
	Amount     decimal.Decimal     `gorm:"column:amount;type:numeric(12,2);not null"`
	Currency   enums.Currency      `gorm:"column:currency;not null"`
	Status     enums.PaymentStatus `gorm:"column:status;not null;default:'pending'"`
	RawPayload json.RawMessage     `gorm:"column:raw_payload;type:jsonb"`
	CreatedAt  time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
