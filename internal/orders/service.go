package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/matjara-app/matjara-backend/internal/delivery"
	"github.com/matjara-app/matjara-backend/internal/pricing"
	"github.com/matjara-app/matjara-backend/internal/stores"
	"github.com/matjara-app/matjara-backend/internal/wholesale"
	"github.com/matjara-app/matjara-backend/pkg/db/models"
	"github.com/matjara-app/matjara-backend/pkg/enums"
	pkgerrors "github.com/matjara-app/matjara-backend/pkg/errors"
	"github.com/matjara-app/matjara-backend/pkg/pagination"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const maxCheckoutLines = 100

type orderRepository interface {
	CreateWithTx(tx *gorm.DB, order *models.Order) error
	FindByID(ctx context.Context, storeID, id uuid.UUID) (*models.Order, error)
	ListByCustomer(ctx context.Context, storeID, customerID uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.Order, error)
	ListByStore(ctx context.Context, storeID uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status enums.OrderStatus) error
}

type productCatalog interface {
	FindManyForSale(ctx context.Context, storeID uuid.UUID, ids []uuid.UUID) ([]models.Product, error)
}

type wholesaleResolver interface {
	Resolve(ctx context.Context, customerID, storeID uuid.UUID, asOf time.Time) (wholesale.Status, error)
}

type storeService interface {
	GetByID(ctx context.Context, id uuid.UUID) (*stores.StoreDTO, error)
}

type deliveryService interface {
	GetActive(ctx context.Context, storeID, id uuid.UUID) (*delivery.MethodDTO, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service exposes checkout and order operations.
type Service interface {
	Quote(ctx context.Context, req CheckoutRequest) (*QuoteDTO, error)
	Place(ctx context.Context, req CheckoutRequest) (*OrderDTO, error)
	GetForCustomer(ctx context.Context, storeID, customerID, orderID uuid.UUID) (*OrderDTO, error)
	GetForStore(ctx context.Context, storeID, orderID uuid.UUID) (*OrderDTO, error)
	ListForCustomer(ctx context.Context, storeID, customerID uuid.UUID, params pagination.Params) (*Page, error)
	ListForStore(ctx context.Context, storeID uuid.UUID, params pagination.Params) (*Page, error)
	SetStatus(ctx context.Context, storeID, orderID uuid.UUID, status enums.OrderStatus) (*OrderDTO, error)
}

type service struct {
	repo      orderRepository
	products  productCatalog
	wholesale wholesaleResolver
	stores    storeService
	delivery  deliveryService
	tx        txRunner
}

// ServiceParams bundles the dependencies required to build an order service.
type ServiceParams struct {
	OrderRepo       orderRepository
	ProductCatalog  productCatalog
	WholesaleSvc    wholesaleResolver
	StoreService    storeService
	DeliveryService deliveryService
	TxRunner        txRunner
}

// NewService constructs an order service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.OrderRepo == nil {
		return nil, fmt.Errorf("order repository is required")
	}
	if params.ProductCatalog == nil {
		return nil, fmt.Errorf("product catalog is required")
	}
	if params.WholesaleSvc == nil {
		return nil, fmt.Errorf("wholesale service is required")
	}
	if params.StoreService == nil {
		return nil, fmt.Errorf("store service is required")
	}
	if params.DeliveryService == nil {
		return nil, fmt.Errorf("delivery service is required")
	}
	if params.TxRunner == nil {
		return nil, fmt.Errorf("tx runner is required")
	}
	return &service{
		repo:      params.OrderRepo,
		products:  params.ProductCatalog,
		wholesale: params.WholesaleSvc,
		stores:    params.StoreService,
		delivery:  params.DeliveryService,
		tx:        params.TxRunner,
	}, nil
}

// Quote prices the request without persisting anything.
func (s *service) Quote(ctx context.Context, req CheckoutRequest) (*QuoteDTO, error) {
	quote, _, err := s.buildQuote(ctx, req)
	return quote, err
}

// Place prices the request and persists the order. The snapshot insert runs
// in one transaction so an order is never visible half-written.
func (s *service) Place(ctx context.Context, req CheckoutRequest) (*OrderDTO, error) {
	quote, lines, err := s.buildQuote(ctx, req)
	if err != nil {
		return nil, err
	}

	order := &models.Order{
		StoreID:          req.StoreID,
		CustomerID:       req.CustomerID,
		Status:           enums.OrderStatusPending,
		DeliveryMethodID: req.DeliveryMethodID,
		Subtotal:         quote.Subtotal,
		DeliveryFee:      quote.DeliveryFee,
		Total:            quote.Total,
		Currency:         quote.Currency,
		WholesalePricing: quote.WholesalePricing,
		LineItems:        lines,
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.repo.CreateWithTx(tx, order)
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "place order")
	}
	return FromModel(order), nil
}

// buildQuote resolves wholesaler status once for the whole checkout, then
// prices every line against it.
func (s *service) buildQuote(ctx context.Context, req CheckoutRequest) (*QuoteDTO, []models.OrderLineItem, error) {
	if len(req.Lines) == 0 {
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one line is required")
	}
	if len(req.Lines) > maxCheckoutLines {
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "too many lines")
	}

	store, err := s.stores.GetByID(ctx, req.StoreID)
	if err != nil {
		return nil, nil, err
	}
	if !store.IsActive {
		return nil, nil, pkgerrors.New(pkgerrors.CodeNotFound, "store not found")
	}

	status, err := s.wholesale.Resolve(ctx, req.CustomerID, req.StoreID, time.Now().UTC())
	if err != nil {
		return nil, nil, err
	}

	ids := make([]uuid.UUID, 0, len(req.Lines))
	seen := make(map[uuid.UUID]bool, len(req.Lines))
	for _, line := range req.Lines {
		if seen[line.ProductID] {
			return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "duplicate product line")
		}
		seen[line.ProductID] = true
		ids = append(ids, line.ProductID)
	}

	catalog, err := s.products.FindManyForSale(ctx, req.StoreID, ids)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load products")
	}
	byID := make(map[uuid.UUID]*models.Product, len(catalog))
	for i := range catalog {
		byID[catalog[i].ID] = &catalog[i]
	}

	quote := &QuoteDTO{
		Lines:            make([]QuoteLineDTO, 0, len(req.Lines)),
		Subtotal:         decimal.Zero,
		DeliveryFee:      decimal.Zero,
		Currency:         store.Currency,
		WholesalePricing: status.Active,
	}
	items := make([]models.OrderLineItem, 0, len(req.Lines))

	for _, line := range req.Lines {
		product, ok := byID[line.ProductID]
		if !ok {
			return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "product unavailable").
				WithDetails(map[string]string{"product_id": line.ProductID.String()})
		}

		priced, err := pricing.PriceFor(pricing.LineItem{
			BasePrice: product.BasePrice,
			Quantity:  line.Quantity,
		}, status, store.DiscountRate)
		if err != nil {
			return nil, nil, err
		}

		quote.Lines = append(quote.Lines, QuoteLineDTO{
			ProductID: product.ID,
			Title:     product.Title,
			Quantity:  line.Quantity,
			BasePrice: product.BasePrice,
			UnitPrice: priced.UnitPrice,
			LineTotal: priced.LineTotal,
		})
		items = append(items, models.OrderLineItem{
			ProductID: product.ID,
			Title:     product.Title,
			Quantity:  line.Quantity,
			BasePrice: product.BasePrice,
			UnitPrice: priced.UnitPrice,
			LineTotal: priced.LineTotal,
		})
		quote.Subtotal = quote.Subtotal.Add(priced.LineTotal)
	}

	if req.DeliveryMethodID != nil {
		method, err := s.delivery.GetActive(ctx, req.StoreID, *req.DeliveryMethodID)
		if err != nil {
			return nil, nil, err
		}
		quote.DeliveryFee = method.Fee
	}
	quote.Total = quote.Subtotal.Add(quote.DeliveryFee)

	return quote, items, nil
}

func (s *service) GetForCustomer(ctx context.Context, storeID, customerID, orderID uuid.UUID) (*OrderDTO, error) {
	order, err := s.loadOrder(ctx, storeID, orderID)
	if err != nil {
		return nil, err
	}
	// Customers cannot see each other's orders.
	if order.CustomerID != customerID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return FromModel(order), nil
}

func (s *service) GetForStore(ctx context.Context, storeID, orderID uuid.UUID) (*OrderDTO, error) {
	order, err := s.loadOrder(ctx, storeID, orderID)
	if err != nil {
		return nil, err
	}
	return FromModel(order), nil
}

func (s *service) loadOrder(ctx context.Context, storeID, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.repo.FindByID(ctx, storeID, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

func (s *service) ListForCustomer(ctx context.Context, storeID, customerID uuid.UUID, params pagination.Params) (*Page, error) {
	cursor, err := pagination.Parse(params.Cursor)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid cursor")
	}
	limit := pagination.NormalizeLimit(params.Limit)

	rows, err := s.repo.ListByCustomer(ctx, storeID, customerID, cursor, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return buildPage(rows, limit), nil
}

func (s *service) ListForStore(ctx context.Context, storeID uuid.UUID, params pagination.Params) (*Page, error) {
	cursor, err := pagination.Parse(params.Cursor)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid cursor")
	}
	limit := pagination.NormalizeLimit(params.Limit)

	rows, err := s.repo.ListByStore(ctx, storeID, cursor, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return buildPage(rows, limit), nil
}

func buildPage(rows []models.Order, limit int) *Page {
	page := &Page{Items: make([]OrderDTO, 0, len(rows))}
	if len(rows) > limit {
		last := rows[limit-1]
		page.NextCursor = pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}.Encode()
		rows = rows[:limit]
	}
	for i := range rows {
		page.Items = append(page.Items, *FromModel(&rows[i]))
	}
	return page
}

// SetStatus applies an admin status transition. Confirmation is only valid
// from pending; cancellation from pending or confirmed.
func (s *service) SetStatus(ctx context.Context, storeID, orderID uuid.UUID, status enums.OrderStatus) (*OrderDTO, error) {
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid status")
	}

	order, err := s.loadOrder(ctx, storeID, orderID)
	if err != nil {
		return nil, err
	}

	if !transitionAllowed(order.Status, status) {
		return nil, pkgerrors.New(pkgerrors.CodeConflict,
			fmt.Sprintf("cannot move order from %s to %s", order.Status, status))
	}

	if err := s.repo.UpdateStatus(ctx, order.ID, status); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
	}
	order.Status = status
	return FromModel(order), nil
}

func transitionAllowed(from, to enums.OrderStatus) bool {
	switch from {
	case enums.OrderStatusPending:
		return to == enums.OrderStatusConfirmed || to == enums.OrderStatusCancelled
	case enums.OrderStatusConfirmed:
		return to == enums.OrderStatusCancelled
	default:
		return false
	}
}
