package products

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/matjara-app/matjara-backend/internal/categories"
	"github.com/matjara-app/matjara-backend/pkg/db"
	"github.com/matjara-app/matjara-backend/pkg/db/models"
	pkgerrors "github.com/matjara-app/matjara-backend/pkg/errors"
	"github.com/matjara-app/matjara-backend/pkg/pagination"
	"gorm.io/gorm"
)

const slugConstraint = "products_store_slug_uniq"

type productRepository interface {
	Create(ctx context.Context, dto CreateProductDTO) (*models.Product, error)
	FindByID(ctx context.Context, storeID, id uuid.UUID) (*models.Product, error)
	FindBySlug(ctx context.Context, storeID uuid.UUID, slug string) (*models.Product, error)
	FindManyForSale(ctx context.Context, storeID uuid.UUID, ids []uuid.UUID) ([]models.Product, error)
	ListByStore(ctx context.Context, storeID uuid.UUID, categoryID *uuid.UUID, onlyActive bool, cursor *pagination.Cursor, limit int) ([]models.Product, error)
	Update(ctx context.Context, product *models.Product) error
}

// ListFilter narrows a product listing.
type ListFilter struct {
	CategoryID *uuid.UUID
	OnlyActive bool
}

// Service exposes product operations.
type Service interface {
	Create(ctx context.Context, dto CreateProductDTO) (*ProductDTO, error)
	GetByID(ctx context.Context, storeID, id uuid.UUID) (*ProductDTO, error)
	GetBySlug(ctx context.Context, storeID uuid.UUID, slug string) (*ProductDTO, error)
	List(ctx context.Context, storeID uuid.UUID, filter ListFilter, params pagination.Params) (*Page, error)
	Update(ctx context.Context, storeID, id uuid.UUID, input UpdateProductInput) (*ProductDTO, error)
	Deactivate(ctx context.Context, storeID, id uuid.UUID) error
}

type service struct {
	repo productRepository
}

// NewService builds a product service with the provided repository.
func NewService(repo productRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Create(ctx context.Context, dto CreateProductDTO) (*ProductDTO, error) {
	if dto.StoreID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store id is required")
	}
	if strings.TrimSpace(dto.Title) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title is required")
	}
	if dto.BasePrice.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "base price must not be negative")
	}
	if dto.Currency != "" && !dto.Currency.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unsupported currency")
	}
	if dto.Slug == "" {
		dto.Slug = categories.Slugify(dto.Title)
	}
	if dto.Slug == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title yields an empty slug")
	}

	product, err := s.repo.Create(ctx, dto)
	if err != nil {
		if db.IsUniqueViolation(err, slugConstraint) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "product slug already in use")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
	}
	return FromModel(product), nil
}

func (s *service) GetByID(ctx context.Context, storeID, id uuid.UUID) (*ProductDTO, error) {
	product, err := s.repo.FindByID(ctx, storeID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return FromModel(product), nil
}

func (s *service) GetBySlug(ctx context.Context, storeID uuid.UUID, slug string) (*ProductDTO, error) {
	product, err := s.repo.FindBySlug(ctx, storeID, strings.ToLower(strings.TrimSpace(slug)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return FromModel(product), nil
}

func (s *service) List(ctx context.Context, storeID uuid.UUID, filter ListFilter, params pagination.Params) (*Page, error) {
	cursor, err := pagination.Parse(params.Cursor)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid cursor")
	}
	limit := pagination.NormalizeLimit(params.Limit)

	rows, err := s.repo.ListByStore(ctx, storeID, filter.CategoryID, filter.OnlyActive, cursor, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}

	page := &Page{Items: make([]ProductDTO, 0, len(rows))}
	if len(rows) > limit {
		last := rows[limit-1]
		page.NextCursor = pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}.Encode()
		rows = rows[:limit]
	}
	for i := range rows {
		page.Items = append(page.Items, *FromModel(&rows[i]))
	}
	return page, nil
}

func (s *service) Update(ctx context.Context, storeID, id uuid.UUID, input UpdateProductInput) (*ProductDTO, error) {
	product, err := s.repo.FindByID(ctx, storeID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}

	if input.Title != nil {
		if strings.TrimSpace(*input.Title) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "title is required")
		}
		product.Title = *input.Title
	}
	if input.CategoryID != nil {
		product.CategoryID = input.CategoryID
	}
	if input.Description != nil {
		product.Description = input.Description
	}
	if input.BasePrice != nil {
		if input.BasePrice.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "base price must not be negative")
		}
		product.BasePrice = *input.BasePrice
	}
	if input.IsActive != nil {
		product.IsActive = *input.IsActive
	}

	if err := s.repo.Update(ctx, product); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product")
	}
	return FromModel(product), nil
}

// Deactivate hides the product from listings and checkout without deleting
// the row; placed orders keep referencing it.
func (s *service) Deactivate(ctx context.Context, storeID, id uuid.UUID) error {
	inactive := false
	_, err := s.Update(ctx, storeID, id, UpdateProductInput{IsActive: &inactive})
	return err
}
