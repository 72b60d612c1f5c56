package stores

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/matjara-app/matjara-backend/pkg/db"
	"github.com/matjara-app/matjara-backend/pkg/db/models"
	pkgerrors "github.com/matjara-app/matjara-backend/pkg/errors"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const slugConstraint = "stores_slug_uniq"

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

type storeRepository interface {
	Create(ctx context.Context, dto CreateStoreDTO) (*models.Store, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Store, error)
	FindBySlug(ctx context.Context, slug string) (*models.Store, error)
	Update(ctx context.Context, store *models.Store) error
}

// Service exposes store operations.
type Service interface {
	Create(ctx context.Context, dto CreateStoreDTO) (*StoreDTO, error)
	GetByID(ctx context.Context, id uuid.UUID) (*StoreDTO, error)
	GetBySlug(ctx context.Context, slug string) (*StoreDTO, error)
	Update(ctx context.Context, storeID uuid.UUID, input UpdateStoreInput) (*StoreDTO, error)
}

type service struct {
	repo storeRepository
}

// NewService builds a store service with the provided repository.
func NewService(repo storeRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("store repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Create(ctx context.Context, dto CreateStoreDTO) (*StoreDTO, error) {
	dto.Slug = strings.ToLower(strings.TrimSpace(dto.Slug))
	if !slugPattern.MatchString(dto.Slug) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid slug")
	}
	if strings.TrimSpace(dto.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if err := validateDiscountRate(dto.DiscountRate); err != nil {
		return nil, err
	}
	if dto.Currency != "" && !dto.Currency.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unsupported currency")
	}

	store, err := s.repo.Create(ctx, dto)
	if err != nil {
		if db.IsUniqueViolation(err, slugConstraint) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "slug already in use")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create store")
	}
	return FromModel(store), nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*StoreDTO, error) {
	store, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "store not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load store")
	}
	return FromModel(store), nil
}

func (s *service) GetBySlug(ctx context.Context, slug string) (*StoreDTO, error) {
	store, err := s.repo.FindBySlug(ctx, strings.ToLower(strings.TrimSpace(slug)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "store not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load store")
	}
	return FromModel(store), nil
}

func (s *service) Update(ctx context.Context, storeID uuid.UUID, input UpdateStoreInput) (*StoreDTO, error) {
	store, err := s.repo.FindByID(ctx, storeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "store not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load store")
	}

	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
		}
		store.Name = *input.Name
	}
	if input.Description != nil {
		store.Description = input.Description
	}
	if input.Email != nil {
		store.Email = input.Email
	}
	if input.Phone != nil {
		store.Phone = input.Phone
	}
	if input.DiscountRate != nil {
		if err := validateDiscountRate(*input.DiscountRate); err != nil {
			return nil, err
		}
		store.DiscountRate = *input.DiscountRate
	}
	if input.IsActive != nil {
		store.IsActive = *input.IsActive
	}

	if err := s.repo.Update(ctx, store); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update store")
	}
	return FromModel(store), nil
}

func validateDiscountRate(rate decimal.Decimal) error {
	if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(1)) {
		return pkgerrors.New(pkgerrors.CodeValidation, "discount rate must be between 0 and 1")
	}
	return nil
}
