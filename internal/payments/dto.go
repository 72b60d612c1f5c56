package payments

import (
	"time"

	"github.com/google/uuid"
	"github.com/matjara-app/matjara-backend/pkg/db/models"
	"github.com/matjara-app/matjara-backend/pkg/enums"
	"github.com/shopspring/decimal"
)

// PaymentDTO is the service-level view of a payment attempt.
type PaymentDTO struct {
	ID        uuid.UUID           `json:"id"`
	OrderID   uuid.UUID           `json:"order_id"`
	StoreID   uuid.UUID           `json:"store_id"`
	Provider  string              `json:"provider"`
	Reference string              `json:"reference"`
	Amount    decimal.Decimal     `json:"amount"`
	Currency  enums.Currency      `json:"currency"`
	Status    enums.PaymentStatus `json:"status"`
	CreatedAt time.Time           `json:"created_at"`
}

func FromModel(m *models.Payment) *PaymentDTO {
	if m == nil {
		return nil
	}
	return &PaymentDTO{
		ID:        m.ID,
		OrderID:   m.OrderID,
		StoreID:   m.StoreID,
		Provider:  m.Provider,
		Reference: m.Reference,
		Amount:    m.Amount,
		Currency:  m.Currency,
		Status:    m.Status,
		CreatedAt: m.CreatedAt,
	}
}

// InitiateResponse hands the client everything needed to complete the charge
// on the gateway's hosted page.
type InitiateResponse struct {
	Reference        string `json:"reference"`
	AuthorizationURL string `json:"authorization_url"`
}

// webhookEvent is the subset of the gateway webhook payload we consume.
type webhookEvent struct {
	Event string `json:"event"`
	Data  struct {
		Reference string `json:"reference"`
		Status    string `json:"status"`
		Amount    int64  `json:"amount"`
		Currency  string `json:"currency"`
	} `json:"data"`
}
