package stores

import (
	"time"

	"github.com/google/uuid"
	"github.com/matjara-app/matjara-backend/pkg/db/models"
	"github.com/matjara-app/matjara-backend/pkg/enums"
	"github.com/shopspring/decimal"
)

// StoreDTO is the service-level view of a store.
type StoreDTO struct {
	ID           uuid.UUID       `json:"id"`
	Slug         string          `json:"slug"`
	Name         string          `json:"name"`
	Description  *string         `json:"description,omitempty"`
	Email        *string         `json:"email,omitempty"`
	Phone        *string         `json:"phone,omitempty"`
	Currency     enums.Currency  `json:"currency"`
	DiscountRate decimal.Decimal `json:"discount_rate"`
	IsActive     bool            `json:"is_active"`
	CreatedAt    time.Time       `json:"created_at"`
}

func FromModel(m *models.Store) *StoreDTO {
	if m == nil {
		return nil
	}
	return &StoreDTO{
		ID:           m.ID,
		Slug:         m.Slug,
		Name:         m.Name,
		Description:  m.Description,
		Email:        m.Email,
		Phone:        m.Phone,
		Currency:     m.Currency,
		DiscountRate: m.DiscountRate,
		IsActive:     m.IsActive,
		CreatedAt:    m.CreatedAt,
	}
}

// CreateStoreDTO carries the fields accepted when provisioning a store.
type CreateStoreDTO struct {
	Slug         string
	Name         string
	Description  *string
	Email        *string
	Phone        *string
	Currency     enums.Currency
	DiscountRate decimal.Decimal
}

func (d CreateStoreDTO) ToModel() *models.Store {
	currency := d.Currency
	if currency == "" {
		currency = enums.CurrencyILS
	}
	return &models.Store{
		Slug:         d.Slug,
		Name:         d.Name,
		Description:  d.Description,
		Email:        d.Email,
		Phone:        d.Phone,
		Currency:     currency,
		DiscountRate: d.DiscountRate,
		IsActive:     true,
	}
}

// UpdateStoreInput captures the mutable store fields; nil means unchanged.
type UpdateStoreInput struct {
	Name         *string
	Description  *string
	Email        *string
	Phone        *string
	DiscountRate *decimal.Decimal
	IsActive     *bool
}
