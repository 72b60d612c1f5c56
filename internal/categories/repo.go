package categories

import (
	"context"

	"github.com/google/uuid"
	"github.com/matjara-app/matjara-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository handles category persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to category operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create persists a new category row.
func (r *Repository) Create(ctx context.Context, dto CreateCategoryDTO) (*models.Category, error) {
	category := dto.ToModel()
	if err := r.db.WithContext(ctx).Create(category).Error; err != nil {
		return nil, err
	}
	return category, nil
}

// FindByID loads a category scoped to its store.
func (r *Repository) FindByID(ctx context.Context, storeID, id uuid.UUID) (*models.Category, error) {
	var category models.Category
	err := r.db.WithContext(ctx).
		First(&category, "id = ? AND store_id = ?", id, storeID).Error
	if err != nil {
		return nil, err
	}
	return &category, nil
}

// ListByStore returns every category of a store ordered by name.
func (r *Repository) ListByStore(ctx context.Context, storeID uuid.UUID) ([]models.Category, error) {
	var rows []models.Category
	err := r.db.WithContext(ctx).
		Where("store_id = ?", storeID).
		Order("name ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// Update saves the provided category.
func (r *Repository) Update(ctx context.Context, category *models.Category) error {
	return r.db.WithContext(ctx).Save(category).Error
}

// Delete removes a category scoped to its store.
func (r *Repository) Delete(ctx context.Context, storeID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Delete(&models.Category{}, "id = ? AND store_id = ?", id, storeID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// CountProducts reports how many products still reference the category.
func (r *Repository) CountProducts(ctx context.Context, categoryID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("category_id = ?", categoryID).
		Count(&count).Error
	return count, err
}
