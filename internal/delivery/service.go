package delivery

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/matjara-app/matjara-backend/pkg/db/models"
	pkgerrors "github.com/matjara-app/matjara-backend/pkg/errors"
	"gorm.io/gorm"
)

type methodRepository interface {
	Create(ctx context.Context, dto CreateMethodDTO) (*models.DeliveryMethod, error)
	FindByID(ctx context.Context, storeID, id uuid.UUID) (*models.DeliveryMethod, error)
	ListByStore(ctx context.Context, storeID uuid.UUID, onlyActive bool) ([]models.DeliveryMethod, error)
	Update(ctx context.Context, method *models.DeliveryMethod) error
}

// Service exposes delivery method operations.
type Service interface {
	Create(ctx context.Context, dto CreateMethodDTO) (*MethodDTO, error)
	GetActive(ctx context.Context, storeID, id uuid.UUID) (*MethodDTO, error)
	ListByStore(ctx context.Context, storeID uuid.UUID, onlyActive bool) ([]MethodDTO, error)
	Update(ctx context.Context, storeID, id uuid.UUID, input UpdateMethodInput) (*MethodDTO, error)
}

type service struct {
	repo methodRepository
}

// NewService builds a delivery service with the provided repository.
func NewService(repo methodRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("delivery method repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Create(ctx context.Context, dto CreateMethodDTO) (*MethodDTO, error) {
	if dto.StoreID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store id is required")
	}
	if strings.TrimSpace(dto.Label) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "label is required")
	}
	if dto.Fee.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "fee must not be negative")
	}

	method, err := s.repo.Create(ctx, dto)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create delivery method")
	}
	return FromModel(method), nil
}

// GetActive loads a method usable at checkout. Deactivated methods are
// indistinguishable from missing ones on purpose.
func (s *service) GetActive(ctx context.Context, storeID, id uuid.UUID) (*MethodDTO, error) {
	method, err := s.repo.FindByID(ctx, storeID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "delivery method not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load delivery method")
	}
	if !method.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "delivery method not found")
	}
	return FromModel(method), nil
}

func (s *service) ListByStore(ctx context.Context, storeID uuid.UUID, onlyActive bool) ([]MethodDTO, error) {
	rows, err := s.repo.ListByStore(ctx, storeID, onlyActive)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list delivery methods")
	}
	dtos := make([]MethodDTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, *FromModel(&rows[i]))
	}
	return dtos, nil
}

func (s *service) Update(ctx context.Context, storeID, id uuid.UUID, input UpdateMethodInput) (*MethodDTO, error) {
	method, err := s.repo.FindByID(ctx, storeID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "delivery method not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load delivery method")
	}

	if input.Label != nil {
		if strings.TrimSpace(*input.Label) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "label is required")
		}
		method.Label = *input.Label
	}
	if input.Fee != nil {
		if input.Fee.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "fee must not be negative")
		}
		method.Fee = *input.Fee
	}
	if input.IsActive != nil {
		method.IsActive = *input.IsActive
	}

	if err := s.repo.Update(ctx, method); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update delivery method")
	}
	return FromModel(method), nil
}
