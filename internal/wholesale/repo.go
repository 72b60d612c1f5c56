package wholesale

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/matjara-app/matjara-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository handles wholesaler agreement persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to agreement operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new agreement. A second open-ended agreement for the same
// (store, customer) trips the partial unique index.
func (r *Repository) Create(ctx context.Context, agreement *models.WholesalerAgreement) error {
	return r.db.WithContext(ctx).Create(agreement).Error
}

// FindForScope returns every agreement for (store, customer), newest created
// first. The resolver walks this list; it is small by construction since
// writes close the previous agreement before opening the next.
func (r *Repository) FindForScope(ctx context.Context, storeID, customerID uuid.UUID) ([]models.WholesalerAgreement, error) {
	var rows []models.WholesalerAgreement
	err := r.db.WithContext(ctx).
		Where("store_id = ? AND customer_id = ?", storeID, customerID).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// CloseOpen ends any open-ended agreement for the scope at the given time.
func (r *Repository) CloseOpen(ctx context.Context, storeID, customerID uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.WholesalerAgreement{}).
		Where("store_id = ? AND customer_id = ? AND active_to IS NULL", storeID, customerID).
		Update("active_to", at).Error
}

// FindByID loads a single agreement.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.WholesalerAgreement, error) {
	var row models.WholesalerAgreement
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// ListByStore returns every agreement belonging to a store.
func (r *Repository) ListByStore(ctx context.Context, storeID uuid.UUID) ([]models.WholesalerAgreement, error) {
	var rows []models.WholesalerAgreement
	err := r.db.WithContext(ctx).
		Where("store_id = ?", storeID).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
