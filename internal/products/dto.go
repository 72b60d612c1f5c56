package products

import (
	"time"

	"github.com/google/uuid"
	"github.com/matjara-app/matjara-backend/pkg/db/models"
	"github.com/matjara-app/matjara-backend/pkg/enums"
	"github.com/shopspring/decimal"
)

// ProductDTO is the service-level view of a product.
type ProductDTO struct {
	ID          uuid.UUID       `json:"id"`
	StoreID     uuid.UUID       `json:"store_id"`
	CategoryID  *uuid.UUID      `json:"category_id,omitempty"`
	Title       string          `json:"title"`
	Slug        string          `json:"slug"`
	Description *string         `json:"description,omitempty"`
	BasePrice   decimal.Decimal `json:"base_price"`
	Currency    enums.Currency  `json:"currency"`
	IsActive    bool            `json:"is_active"`
	CreatedAt   time.Time       `json:"created_at"`
}

func FromModel(m *models.Product) *ProductDTO {
	if m == nil {
		return nil
	}
	return &ProductDTO{
		ID:          m.ID,
		StoreID:     m.StoreID,
		CategoryID:  m.CategoryID,
		Title:       m.Title,
		Slug:        m.Slug,
		Description: m.Description,
		BasePrice:   m.BasePrice,
		Currency:    m.Currency,
		IsActive:    m.IsActive,
		CreatedAt:   m.CreatedAt,
	}
}

// CreateProductDTO carries the fields accepted when creating a product.
type CreateProductDTO struct {
	StoreID     uuid.UUID
	CategoryID  *uuid.UUID
	Title       string
	Slug        string
	Description *string
	BasePrice   decimal.Decimal
	Currency    enums.Currency
}

func (d CreateProductDTO) ToModel() *models.Product {
	currency := d.Currency
	if currency == "" {
		currency = enums.CurrencyILS
	}
	return &models.Product{
		StoreID:     d.StoreID,
		CategoryID:  d.CategoryID,
		Title:       d.Title,
		Slug:        d.Slug,
		Description: d.Description,
		BasePrice:   d.BasePrice,
		Currency:    currency,
		IsActive:    true,
	}
}

// UpdateProductInput captures the mutable product fields; nil means
// unchanged.
type UpdateProductInput struct {
	CategoryID  *uuid.UUID
	Title       *string
	Description *string
	BasePrice   *decimal.Decimal
	IsActive    *bool
}

// Page is one window of a product listing.
type Page struct {
	Items      []ProductDTO `json:"items"`
	NextCursor string       `json:"next_cursor,omitempty"`
}
