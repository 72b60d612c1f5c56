package delivery

import (
	"time"

	"github.com/google/uuid"
	"github.com/matjara-app/matjara-backend/pkg/db/models"
	"github.com/shopspring/decimal"
)

// MethodDTO is the service-level view of a delivery method.
type MethodDTO struct {
	ID        uuid.UUID       `json:"id"`
	StoreID   uuid.UUID       `json:"store_id"`
	Label     string          `json:"label"`
	Fee       decimal.Decimal `json:"fee"`
	IsActive  bool            `json:"is_active"`
	CreatedAt time.Time       `json:"created_at"`
}

func FromModel(m *models.DeliveryMethod) *MethodDTO {
	if m == nil {
		return nil
	}
	return &MethodDTO{
		ID:        m.ID,
		StoreID:   m.StoreID,
		Label:     m.Label,
		Fee:       m.Fee,
		IsActive:  m.IsActive,
		CreatedAt: m.CreatedAt,
	}
}

// CreateMethodDTO carries the fields accepted when creating a method.
type CreateMethodDTO struct {
	StoreID uuid.UUID
	Label   string
	Fee     decimal.Decimal
}

func (d CreateMethodDTO) ToModel() *models.DeliveryMethod {
	return &models.DeliveryMethod{
		StoreID:  d.StoreID,
		Label:    d.Label,
		Fee:      d.Fee,
		IsActive: true,
	}
}

// UpdateMethodInput captures the mutable fields; nil means unchanged.
type UpdateMethodInput struct {
	Label    *string
	Fee      *decimal.Decimal
	IsActive *bool
}
