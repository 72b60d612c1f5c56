package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/matjara-app/matjara-backend/pkg/db/models"
	"github.com/matjara-app/matjara-backend/pkg/enums"
	"github.com/shopspring/decimal"
)

// CheckoutLine is one requested product line.
type CheckoutLine struct {
	ProductID uuid.UUID
	Quantity  int
}

// CheckoutRequest prices (and optionally places) an order for a customer.
type CheckoutRequest struct {
	StoreID          uuid.UUID
	CustomerID       uuid.UUID
	DeliveryMethodID *uuid.UUID
	Lines            []CheckoutLine
}

// QuoteLineDTO is one priced line of a quote.
type QuoteLineDTO struct {
	ProductID uuid.UUID       `json:"product_id"`
	Title     string          `json:"title"`
	Quantity  int             `json:"quantity"`
	BasePrice decimal.Decimal `json:"base_price"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// QuoteDTO is the priced result of a checkout request, identical whether the
// caller previews or places the order.
type QuoteDTO struct {
	Lines            []QuoteLineDTO  `json:"lines"`
	Subtotal         decimal.Decimal `json:"subtotal"`
	DeliveryFee      decimal.Decimal `json:"delivery_fee"`
	Total            decimal.Decimal `json:"total"`
	Currency         enums.Currency  `json:"currency"`
	WholesalePricing bool            `json:"wholesale_pricing"`
}

// LineItemDTO is the persisted snapshot of one order line.
type LineItemDTO struct {
	ProductID uuid.UUID       `json:"product_id"`
	Title     string          `json:"title"`
	Quantity  int             `json:"quantity"`
	BasePrice decimal.Decimal `json:"base_price"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// OrderDTO is the service-level view of a placed order.
type OrderDTO struct {
	ID               uuid.UUID         `json:"id"`
	StoreID          uuid.UUID         `json:"store_id"`
	CustomerID       uuid.UUID         `json:"customer_id"`
	Status           enums.OrderStatus `json:"status"`
	DeliveryMethodID *uuid.UUID        `json:"delivery_method_id,omitempty"`
	Subtotal         decimal.Decimal   `json:"subtotal"`
	DeliveryFee      decimal.Decimal   `json:"delivery_fee"`
	Total            decimal.Decimal   `json:"total"`
	Currency         enums.Currency    `json:"currency"`
	WholesalePricing bool              `json:"wholesale_pricing"`
	LineItems        []LineItemDTO     `json:"line_items"`
	CreatedAt        time.Time         `json:"created_at"`
}

func FromModel(m *models.Order) *OrderDTO {
	if m == nil {
		return nil
	}
	dto := &OrderDTO{
		ID:               m.ID,
		StoreID:          m.StoreID,
		CustomerID:       m.CustomerID,
		Status:           m.Status,
		DeliveryMethodID: m.DeliveryMethodID,
		Subtotal:         m.Subtotal,
		DeliveryFee:      m.DeliveryFee,
		Total:            m.Total,
		Currency:         m.Currency,
		WholesalePricing: m.WholesalePricing,
		LineItems:        make([]LineItemDTO, 0, len(m.LineItems)),
		CreatedAt:        m.CreatedAt,
	}
	for _, item := range m.LineItems {
		dto.LineItems = append(dto.LineItems, LineItemDTO{
			ProductID: item.ProductID,
			Title:     item.Title,
			Quantity:  item.Quantity,
			BasePrice: item.BasePrice,
			UnitPrice: item.UnitPrice,
			LineTotal: item.LineTotal,
		})
	}
	return dto
}

// Page is one window of an order listing.
type Page struct {
	Items      []OrderDTO `json:"items"`
	NextCursor string     `json:"next_cursor,omitempty"`
}
