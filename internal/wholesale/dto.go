package wholesale

import (
	"time"

	"github.com/google/uuid"
	"github.com/matjara-app/matjara-backend/pkg/db/models"
	"github.com/shopspring/decimal"
)

// Status is the outcome of a wholesaler lookup. Inactive is a normal value,
// not an error: most customers are simply not wholesalers.
type Status struct {
	Active       bool
	DiscountRate decimal.Decimal
	AgreementID  *uuid.UUID
}

// Inactive is the zero status shared by "no agreement" and "window expired".
var Inactive = Status{}

// AgreementDTO is the service-level view of a wholesaler agreement.
type AgreementDTO struct {
	ID           uuid.UUID       `json:"id"`
	StoreID      uuid.UUID       `json:"store_id"`
	CustomerID   uuid.UUID       `json:"customer_id"`
	DiscountRate decimal.Decimal `json:"discount_rate"`
	ActiveFrom   time.Time       `json:"active_from"`
	ActiveTo     *time.Time      `json:"active_to,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}

func FromModel(m *models.WholesalerAgreement) *AgreementDTO {
	if m == nil {
		return nil
	}
	return &AgreementDTO{
		ID:           m.ID,
		StoreID:      m.StoreID,
		CustomerID:   m.CustomerID,
		DiscountRate: m.DiscountRate,
		ActiveFrom:   m.ActiveFrom,
		ActiveTo:     m.ActiveTo,
		CreatedAt:    m.CreatedAt,
	}
}

// GrantInput captures the fields needed to open a new agreement.
type GrantInput struct {
	StoreID      uuid.UUID
	CustomerID   uuid.UUID
	DiscountRate decimal.Decimal
	ActiveFrom   time.Time
}
