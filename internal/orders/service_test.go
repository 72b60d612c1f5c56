package orders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/matjara-app/matjara-backend/internal/delivery"
	"github.com/matjara-app/matjara-backend/internal/stores"
	"github.com/matjara-app/matjara-backend/internal/wholesale"
	"github.com/matjara-app/matjara-backend/pkg/db/models"
	"github.com/matjara-app/matjara-backend/pkg/enums"
	pkgerrors "github.com/matjara-app/matjara-backend/pkg/errors"
	"github.com/matjara-app/matjara-backend/pkg/pagination"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func dec(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

type stubOrderRepo struct {
	rows map[uuid.UUID]*models.Order
	now  time.Time
}

func newStubOrderRepo() *stubOrderRepo {
	return &stubOrderRepo{
		rows: make(map[uuid.UUID]*models.Order),
		now:  time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC),
	}
}

func (s *stubOrderRepo) CreateWithTx(tx *gorm.DB, order *models.Order) error {
	order.ID = uuid.New()
	order.CreatedAt = s.now
	s.now = s.now.Add(time.Minute)
	for i := range order.LineItems {
		order.LineItems[i].ID = uuid.New()
		order.LineItems[i].OrderID = order.ID
	}
	s.rows[order.ID] = order
	return nil
}

func (s *stubOrderRepo) FindByID(ctx context.Context, storeID, id uuid.UUID) (*models.Order, error) {
	row, ok := s.rows[id]
	if !ok || row.StoreID != storeID {
		return nil, gorm.ErrRecordNotFound
	}
	return row, nil
}

func (s *stubOrderRepo) ListByCustomer(ctx context.Context, storeID, customerID uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.Order, error) {
	var rows []models.Order
	for _, row := range s.rows {
		if row.StoreID == storeID && row.CustomerID == customerID {
			rows = append(rows, *row)
		}
	}
	return rows, nil
}

func (s *stubOrderRepo) ListByStore(ctx context.Context, storeID uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.Order, error) {
	var rows []models.Order
	for _, row := range s.rows {
		if row.StoreID == storeID {
			rows = append(rows, *row)
		}
	}
	return rows, nil
}

func (s *stubOrderRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.OrderStatus) error {
	if row, ok := s.rows[id]; ok {
		row.Status = status
	}
	return nil
}

type stubCatalog struct {
	products map[uuid.UUID]models.Product
}

func (s *stubCatalog) FindManyForSale(ctx context.Context, storeID uuid.UUID, ids []uuid.UUID) ([]models.Product, error) {
	var rows []models.Product
	for _, id := range ids {
		if p, ok := s.products[id]; ok && p.StoreID == storeID && p.IsActive {
			rows = append(rows, p)
		}
	}
	return rows, nil
}

type stubWholesale struct {
	status wholesale.Status
}

func (s *stubWholesale) Resolve(ctx context.Context, customerID, storeID uuid.UUID, asOf time.Time) (wholesale.Status, error) {
	return s.status, nil
}

type stubStores struct {
	store stores.StoreDTO
}

func (s *stubStores) GetByID(ctx context.Context, id uuid.UUID) (*stores.StoreDTO, error) {
	if id != s.store.ID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "store not found")
	}
	store := s.store
	return &store, nil
}

type stubDelivery struct {
	methods map[uuid.UUID]delivery.MethodDTO
}

func (s *stubDelivery) GetActive(ctx context.Context, storeID, id uuid.UUID) (*delivery.MethodDTO, error) {
	method, ok := s.methods[id]
	if !ok || method.StoreID != storeID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "delivery method not found")
	}
	return &method, nil
}

type passthroughTx struct{}

func (passthroughTx) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type fixture struct {
	svc       Service
	repo      *stubOrderRepo
	wholesale *stubWholesale
	storeID   uuid.UUID
	customer  uuid.UUID
	productID uuid.UUID
	methodID  uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	storeID := uuid.New()
	productID := uuid.New()
	methodID := uuid.New()

	repo := newStubOrderRepo()
	ws := &stubWholesale{status: wholesale.Inactive}

	svc, err := NewService(ServiceParams{
		OrderRepo: repo,
		ProductCatalog: &stubCatalog{products: map[uuid.UUID]models.Product{
			productID: {
				ID: productID, StoreID: storeID, Title: "Olive Oil 1L",
				BasePrice: dec("100"), Currency: enums.CurrencyILS, IsActive: true,
			},
		}},
		WholesaleSvc: ws,
		StoreService: &stubStores{store: stores.StoreDTO{
			ID: storeID, Slug: "dukkan", Name: "Dukkan",
			Currency: enums.CurrencyILS, DiscountRate: dec("0.1"), IsActive: true,
		}},
		DeliveryService: &stubDelivery{methods: map[uuid.UUID]delivery.MethodDTO{
			methodID: {ID: methodID, StoreID: storeID, Label: "Courier", Fee: dec("15"), IsActive: true},
		}},
		TxRunner: passthroughTx{},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	return &fixture{
		svc:       svc,
		repo:      repo,
		wholesale: ws,
		storeID:   storeID,
		customer:  uuid.New(),
		productID: productID,
		methodID:  methodID,
	}
}

func (f *fixture) request(quantity int) CheckoutRequest {
	return CheckoutRequest{
		StoreID:    f.storeID,
		CustomerID: f.customer,
		Lines:      []CheckoutLine{{ProductID: f.productID, Quantity: quantity}},
	}
}

func TestQuote_StoreDiscountForRegularCustomer(t *testing.T) {
	f := newFixture(t)

	quote, err := f.svc.Quote(context.Background(), f.request(1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !quote.Lines[0].UnitPrice.Equal(dec("90.00")) {
		t.Fatalf("expected 90.00, got %s", quote.Lines[0].UnitPrice)
	}
	if quote.WholesalePricing {
		t.Fatal("expected retail pricing")
	}
	if !quote.Total.Equal(dec("90.00")) {
		t.Fatalf("expected total 90.00, got %s", quote.Total)
	}
}

func TestQuote_WholesalerDiscountReplacesStoreDiscount(t *testing.T) {
	f := newFixture(t)
	f.wholesale.status = wholesale.Status{Active: true, DiscountRate: dec("0.2")}

	quote, err := f.svc.Quote(context.Background(), f.request(2))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !quote.Lines[0].UnitPrice.Equal(dec("80.00")) {
		t.Fatalf("expected 80.00 per unit, got %s", quote.Lines[0].UnitPrice)
	}
	if !quote.Subtotal.Equal(dec("160.00")) {
		t.Fatalf("expected subtotal 160.00, got %s", quote.Subtotal)
	}
	if !quote.WholesalePricing {
		t.Fatal("expected wholesale pricing flag")
	}
}

func TestPlace_PersistsSnapshotWithDeliveryFee(t *testing.T) {
	f := newFixture(t)

	req := f.request(2)
	req.DeliveryMethodID = &f.methodID

	order, err := f.svc.Place(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order.Status != enums.OrderStatusPending {
		t.Fatalf("expected pending, got %s", order.Status)
	}
	if !order.Subtotal.Equal(dec("180.00")) || !order.DeliveryFee.Equal(dec("15")) || !order.Total.Equal(dec("195.00")) {
		t.Fatalf("unexpected totals: %s / %s / %s", order.Subtotal, order.DeliveryFee, order.Total)
	}
	if len(order.LineItems) != 1 || !order.LineItems[0].BasePrice.Equal(dec("100")) {
		t.Fatalf("expected base price snapshot, got %+v", order.LineItems)
	}

	stored, err := f.svc.GetForCustomer(context.Background(), f.storeID, f.customer, order.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !stored.Total.Equal(order.Total) {
		t.Fatalf("expected stored order to match, got %s", stored.Total)
	}
}

func TestPlace_QuoteAndPlaceAgree(t *testing.T) {
	f := newFixture(t)
	f.wholesale.status = wholesale.Status{Active: true, DiscountRate: dec("0.2")}

	quote, err := f.svc.Quote(context.Background(), f.request(3))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	order, err := f.svc.Place(context.Background(), f.request(3))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !order.Total.Equal(quote.Total) || order.WholesalePricing != quote.WholesalePricing {
		t.Fatalf("quote %s and order %s disagree", quote.Total, order.Total)
	}
}

func TestCheckout_Validation(t *testing.T) {
	f := newFixture(t)

	cases := []struct {
		name string
		req  CheckoutRequest
	}{
		{name: "no lines", req: CheckoutRequest{StoreID: f.storeID, CustomerID: f.customer}},
		{name: "zero quantity", req: f.request(0)},
		{
			name: "unknown product",
			req: CheckoutRequest{
				StoreID: f.storeID, CustomerID: f.customer,
				Lines: []CheckoutLine{{ProductID: uuid.New(), Quantity: 1}},
			},
		},
		{
			name: "duplicate lines",
			req: CheckoutRequest{
				StoreID: f.storeID, CustomerID: f.customer,
				Lines: []CheckoutLine{
					{ProductID: f.productID, Quantity: 1},
					{ProductID: f.productID, Quantity: 2},
				},
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.Quote(context.Background(), tc.req)
			appErr := pkgerrors.As(err)
			if appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestCheckout_UnknownDeliveryMethod(t *testing.T) {
	f := newFixture(t)

	unknown := uuid.New()
	req := f.request(1)
	req.DeliveryMethodID = &unknown

	_, err := f.svc.Quote(context.Background(), req)
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestGetForCustomer_HidesForeignOrders(t *testing.T) {
	f := newFixture(t)

	order, err := f.svc.Place(context.Background(), f.request(1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = f.svc.GetForCustomer(context.Background(), f.storeID, uuid.New(), order.ID)
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestSetStatus_Transitions(t *testing.T) {
	f := newFixture(t)

	order, err := f.svc.Place(context.Background(), f.request(1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	confirmed, err := f.svc.SetStatus(context.Background(), f.storeID, order.ID, enums.OrderStatusConfirmed)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if confirmed.Status != enums.OrderStatusConfirmed {
		t.Fatalf("expected confirmed, got %s", confirmed.Status)
	}

	// Confirmed orders can still be cancelled, but never re-confirmed.
	if _, err := f.svc.SetStatus(context.Background(), f.storeID, order.ID, enums.OrderStatusConfirmed); err == nil {
		t.Fatal("expected conflict on re-confirm")
	}

	cancelled, err := f.svc.SetStatus(context.Background(), f.storeID, order.ID, enums.OrderStatusCancelled)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cancelled.Status != enums.OrderStatusCancelled {
		t.Fatalf("expected cancelled, got %s", cancelled.Status)
	}

	_, err = f.svc.SetStatus(context.Background(), f.storeID, order.ID, enums.OrderStatusConfirmed)
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict from cancelled, got %v", err)
	}
}
