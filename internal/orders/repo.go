package orders

import (
	"context"

	"github.com/google/uuid"
	"github.com/matjara-app/matjara-backend/internal/repo"
	"github.com/matjara-app/matjara-backend/pkg/db/models"
	"github.com/matjara-app/matjara-backend/pkg/enums"
	"github.com/matjara-app/matjara-backend/pkg/pagination"
	"gorm.io/gorm"
)

// Repository handles order persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to order operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateWithTx inserts the order and its line items inside the caller's
// transaction.
func (r *Repository) CreateWithTx(tx *gorm.DB, order *models.Order) error {
	if tx == nil {
		return gorm.ErrInvalidTransaction
	}
	return tx.Create(order).Error
}

// FindByID loads an order with its line items, scoped to the store.
func (r *Repository) FindByID(ctx context.Context, storeID, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("LineItems").
		First(&order, "id = ? AND store_id = ?", id, storeID).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// ListByCustomer returns one keyset page of a customer's orders in a store.
func (r *Repository) ListByCustomer(ctx context.Context, storeID, customerID uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.Order, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Preload("LineItems").
		Where("store_id = ? AND customer_id = ?", storeID, customerID)

	var rows []models.Order
	if err := repo.Keyset(query, cursor, limit).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ListByStore returns one keyset page of every order in a store.
func (r *Repository) ListByStore(ctx context.Context, storeID uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.Order, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Preload("LineItems").
		Where("store_id = ?", storeID)

	var rows []models.Order
	if err := repo.Keyset(query, cursor, limit).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// UpdateStatus moves the order to a new status.
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.OrderStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", id).
		Update("status", status).Error
}
