package categories

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
	"gorm.io/gorm"
)

const slugConstraint = "categories_store_slug_uniq"

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

type categoryRepository interface {
	Create(ctx context.Context, dto CreateCategoryDTO) (*models.Category, error)
	FindByID(ctx context.Context, storeID, id uuid.UUID) (*models.Category, error)
	ListByStore(ctx context.Context, storeID uuid.UUID) ([]models.Category, error)
	Update(ctx context.Context, category *models.Category) error
	Delete(ctx context.Context, storeID, id uuid.UUID) error
	CountProducts(ctx context.Context, categoryID uuid.UUID) (int64, error)
}

// Service exposes category operations.
type Service interface {
	Create(ctx context.Context, dto CreateCategoryDTO) (*CategoryDTO, error)
	GetByID(ctx context.Context, storeID, id uuid.UUID) (*CategoryDTO, error)
	ListByStore(ctx context.Context, storeID uuid.UUID) ([]CategoryDTO, error)
	Rename(ctx context.Context, storeID, id uuid.UUID, name string) (*CategoryDTO, error)
	Delete(ctx context.Context, storeID, id uuid.UUID) error
}

type service struct {
	repo categoryRepository
}

// NewService builds a category service with the provided repository.
func NewService(repo categoryRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("category repository required")
	}
	return &service{repo: repo}, nil
}

// Slugify converts a display name into a URL-safe slug.
func Slugify(name string) string {
	slug := nonSlugChars.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "-")
	return strings.Trim(slug, "-")
}

func (s *service) Create(ctx context.Context, dto CreateCategoryDTO) (*CategoryDTO, error) {
	if dto.StoreID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store id is required")
	}
	if strings.TrimSpace(dto.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if dto.Slug == "" {
		dto.Slug = Slugify(dto.Name)
	}
	if dto.Slug == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name yields an empty slug")
	}

	category, err := s.repo.Create(ctx, dto)
	if err != nil {
		if db.IsUniqueViolation(err, slugConstraint) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "category slug already in use")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create category")
	}
	return FromModel(category), nil
}

func (s *service) GetByID(ctx context.Context, storeID, id uuid.UUID) (*CategoryDTO, error) {
	category, err := s.repo.FindByID(ctx, storeID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load category")
	}
	return FromModel(category), nil
}

func (s *service) ListByStore(ctx context.Context, storeID uuid.UUID) ([]CategoryDTO, error) {
	rows, err := s.repo.ListByStore(ctx, storeID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list categories")
	}
	dtos := make([]CategoryDTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, *FromModel(&rows[i]))
	}
	return dtos, nil
}

// Rename changes the display name; the slug stays stable so product URLs
// keep working.
func (s *service) Rename(ctx context.Context, storeID, id uuid.UUID, name string) (*CategoryDTO, error) {
	if strings.TrimSpace(name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}

	category, err := s.repo.FindByID(ctx, storeID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load category")
	}

	category.Name = name
	if err := s.repo.Update(ctx, category); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update category")
	}
	return FromModel(category), nil
}

func (s *service) Delete(ctx context.Context, storeID, id uuid.UUID) error {
	count, err := s.repo.CountProducts(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count category products")
	}
	if count > 0 {
		return pkgerrors.New(pkgerrors.CodeConflict, "category still has products")
	}

	if err := s.repo.Delete(ctx, storeID, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete category")
	}
	return nil
}
