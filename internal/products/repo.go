package products

import (
	"context"

	"github.com/google/uuid"
	"github.com/matjara-app/matjara-backend/internal/repo"
	"github.com/matjara-app/matjara-backend/pkg/db/models"
	"github.com/matjara-app/matjara-backend/pkg/pagination"
	"gorm.io/gorm"
)

// Repository handles product persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to product operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create persists a new product row.
func (r *Repository) Create(ctx context.Context, dto CreateProductDTO) (*models.Product, error) {
	product := dto.ToModel()
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

// FindByID loads a product scoped to its store.
func (r *Repository) FindByID(ctx context.Context, storeID, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		First(&product, "id = ? AND store_id = ?", id, storeID).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// FindBySlug loads an active product by its per-store slug.
func (r *Repository) FindBySlug(ctx context.Context, storeID uuid.UUID, slug string) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		First(&product, "store_id = ? AND slug = ? AND is_active = ?", storeID, slug, true).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// FindManyForSale loads the active products behind a set of IDs, scoped to
// the store. Callers compare the result length to detect missing lines.
func (r *Repository) FindManyForSale(ctx context.Context, storeID uuid.UUID, ids []uuid.UUID) ([]models.Product, error) {
	var rows []models.Product
	err := r.db.WithContext(ctx).
		Where("store_id = ? AND is_active = ? AND id IN ?", storeID, true, ids).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ListByStore returns one keyset page of a store's products, newest first.
func (r *Repository) ListByStore(ctx context.Context, storeID uuid.UUID, categoryID *uuid.UUID, onlyActive bool, cursor *pagination.Cursor, limit int) ([]models.Product, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("store_id = ?", storeID)
	if categoryID != nil {
		query = query.Where("category_id = ?", *categoryID)
	}
	if onlyActive {
		query = query.Where("is_active = ?", true)
	}

	var rows []models.Product
	if err := repo.Keyset(query, cursor, limit).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Update saves the provided product.
func (r *Repository) Update(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Save(product).Error
}
