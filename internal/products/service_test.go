package products

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/matjara-app/matjara-backend/pkg/db/models"
	pkgerrors "github.com/matjara-app/matjara-backend/pkg/errors"
	"github.com/matjara-app/matjara-backend/pkg/pagination"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type stubProductRepo struct {
	rows map[uuid.UUID]*models.Product
	now  time.Time
}

func newStubProductRepo() *stubProductRepo {
	return &stubProductRepo{
		rows: make(map[uuid.UUID]*models.Product),
		now:  time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC),
	}
}

func (s *stubProductRepo) Create(ctx context.Context, dto CreateProductDTO) (*models.Product, error) {
	for _, row := range s.rows {
		if row.StoreID == dto.StoreID && row.Slug == dto.Slug {
			return nil, &pgconn.PgError{Code: "23505", ConstraintName: "products_store_slug_uniq"}
		}
	}
	product := dto.ToModel()
	product.ID = uuid.New()
	product.CreatedAt = s.now
	s.now = s.now.Add(time.Minute)
	s.rows[product.ID] = product
	return product, nil
}

func (s *stubProductRepo) FindByID(ctx context.Context, storeID, id uuid.UUID) (*models.Product, error) {
	row, ok := s.rows[id]
	if !ok || row.StoreID != storeID {
		return nil, gorm.ErrRecordNotFound
	}
	return row, nil
}

func (s *stubProductRepo) FindBySlug(ctx context.Context, storeID uuid.UUID, slug string) (*models.Product, error) {
	for _, row := range s.rows {
		if row.StoreID == storeID && row.Slug == slug && row.IsActive {
			return row, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubProductRepo) FindManyForSale(ctx context.Context, storeID uuid.UUID, ids []uuid.UUID) ([]models.Product, error) {
	var rows []models.Product
	for _, id := range ids {
		if row, ok := s.rows[id]; ok && row.StoreID == storeID && row.IsActive {
			rows = append(rows, *row)
		}
	}
	return rows, nil
}

func (s *stubProductRepo) ListByStore(ctx context.Context, storeID uuid.UUID, categoryID *uuid.UUID, onlyActive bool, cursor *pagination.Cursor, limit int) ([]models.Product, error) {
	var rows []models.Product
	for _, row := range s.rows {
		if row.StoreID != storeID {
			continue
		}
		if onlyActive && !row.IsActive {
			continue
		}
		if categoryID != nil && (row.CategoryID == nil || *row.CategoryID != *categoryID) {
			continue
		}
		rows = append(rows, *row)
	}
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].CreatedAt.After(rows[j].CreatedAt)
	})
	if cursor != nil {
		var after []models.Product
		for _, row := range rows {
			if row.CreatedAt.Before(cursor.CreatedAt) {
				after = append(after, row)
			}
		}
		rows = after
	}
	fetch := pagination.FetchLimit(limit)
	if len(rows) > fetch {
		rows = rows[:fetch]
	}
	return rows, nil
}

func (s *stubProductRepo) Update(ctx context.Context, product *models.Product) error {
	s.rows[product.ID] = product
	return nil
}

func createDTO(storeID uuid.UUID, title string) CreateProductDTO {
	return CreateProductDTO{
		StoreID:   storeID,
		Title:     title,
		BasePrice: decimal.RequireFromString("19.90"),
	}
}

func TestCreate_DerivesSlugAndDefaults(t *testing.T) {
	svc, _ := NewService(newStubProductRepo())

	created, err := svc.Create(context.Background(), createDTO(uuid.New(), "Olive Oil 1L"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.Slug != "olive-oil-1l" {
		t.Fatalf("expected derived slug, got %q", created.Slug)
	}
	if !created.IsActive {
		t.Fatal("expected new product active")
	}
}

func TestCreate_DuplicateSlugScopedToStore(t *testing.T) {
	svc, _ := NewService(newStubProductRepo())
	storeID := uuid.New()

	if _, err := svc.Create(context.Background(), createDTO(storeID, "Olive Oil 1L")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err := svc.Create(context.Background(), createDTO(storeID, "Olive Oil 1L"))
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}

	if _, err := svc.Create(context.Background(), createDTO(uuid.New(), "Olive Oil 1L")); err != nil {
		t.Fatalf("expected cross-store reuse to succeed, got %v", err)
	}
}

func TestCreate_RejectsNegativePrice(t *testing.T) {
	svc, _ := NewService(newStubProductRepo())

	dto := createDTO(uuid.New(), "Olive Oil 1L")
	dto.BasePrice = decimal.RequireFromString("-1")

	_, err := svc.Create(context.Background(), dto)
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestList_PaginatesNewestFirst(t *testing.T) {
	svc, _ := NewService(newStubProductRepo())
	storeID := uuid.New()

	titles := []string{"One", "Two", "Three", "Four", "Five"}
	for _, title := range titles {
		if _, err := svc.Create(context.Background(), createDTO(storeID, title)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	first, err := svc.List(context.Background(), storeID, ListFilter{OnlyActive: true}, pagination.Params{Limit: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(first.Items) != 2 || first.NextCursor == "" {
		t.Fatalf("expected full page with cursor, got %d items", len(first.Items))
	}
	if first.Items[0].Title != "Five" {
		t.Fatalf("expected newest first, got %q", first.Items[0].Title)
	}

	second, err := svc.List(context.Background(), storeID, ListFilter{OnlyActive: true}, pagination.Params{Limit: 2, Cursor: first.NextCursor})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(second.Items) != 2 || second.Items[0].Title != "Three" {
		t.Fatalf("unexpected second page: %+v", second.Items)
	}

	third, err := svc.List(context.Background(), storeID, ListFilter{OnlyActive: true}, pagination.Params{Limit: 2, Cursor: second.NextCursor})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(third.Items) != 1 || third.NextCursor != "" {
		t.Fatalf("expected final page of 1 with no cursor, got %d items cursor=%q", len(third.Items), third.NextCursor)
	}
}

func TestList_RejectsGarbageCursor(t *testing.T) {
	svc, _ := NewService(newStubProductRepo())

	_, err := svc.List(context.Background(), uuid.New(), ListFilter{}, pagination.Params{Cursor: "!!!"})
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDeactivate_HidesFromSlugLookup(t *testing.T) {
	svc, _ := NewService(newStubProductRepo())
	storeID := uuid.New()

	created, _ := svc.Create(context.Background(), createDTO(storeID, "Olive Oil 1L"))
	if err := svc.Deactivate(context.Background(), storeID, created.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err := svc.GetBySlug(context.Background(), storeID, "olive-oil-1l")
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}

	// Admin lookup by ID still works.
	if _, err := svc.GetByID(context.Background(), storeID, created.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
