package delivery

import (
	"context"

	"github.com/google/uuid"
	"github.com/matjara-app/matjara-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository handles delivery method persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to delivery method operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create persists a new method row.
func (r *Repository) Create(ctx context.Context, dto CreateMethodDTO) (*models.DeliveryMethod, error) {
	method := dto.ToModel()
	if err := r.db.WithContext(ctx).Create(method).Error; err != nil {
		return nil, err
	}
	return method, nil
}

// FindByID loads a method scoped to its store.
func (r *Repository) FindByID(ctx context.Context, storeID, id uuid.UUID) (*models.DeliveryMethod, error) {
	var method models.DeliveryMethod
	err := r.db.WithContext(ctx).
		First(&method, "id = ? AND store_id = ?", id, storeID).Error
	if err != nil {
		return nil, err
	}
	return &method, nil
}

// ListByStore returns a store's methods, optionally active-only.
func (r *Repository) ListByStore(ctx context.Context, storeID uuid.UUID, onlyActive bool) ([]models.DeliveryMethod, error) {
	query := r.db.WithContext(ctx).Where("store_id = ?", storeID)
	if onlyActive {
		query = query.Where("is_active = ?", true)
	}
	var rows []models.DeliveryMethod
	if err := query.Order("created_at ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Update saves the provided method.
func (r *Repository) Update(ctx context.Context, method *models.DeliveryMethod) error {
	return r.db.WithContext(ctx).Save(method).Error
}
