package payments

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/matjara-app/matjara-backend/pkg/db/models"
	"github.com/matjara-app/matjara-backend/pkg/enums"
	"gorm.io/gorm"
)

// Repository handles payment persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to payment operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create persists a new payment row. The reference unique index rejects a
// second attempt with the same gateway reference.
func (r *Repository) Create(ctx context.Context, payment *models.Payment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

// FindByReference loads a payment by its gateway reference.
func (r *Repository) FindByReference(ctx context.Context, reference string) (*models.Payment, error) {
	var payment models.Payment
	if err := r.db.WithContext(ctx).First(&payment, "reference = ?", reference).Error; err != nil {
		return nil, err
	}
	return &payment, nil
}

// FindByOrder returns every payment attempt for an order, newest first.
func (r *Repository) FindByOrder(ctx context.Context, orderID uuid.UUID) ([]models.Payment, error) {
	var rows []models.Payment
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// MarkSettled records the terminal status together with the raw webhook
// payload for later audits.
func (r *Repository) MarkSettled(ctx context.Context, id uuid.UUID, status enums.PaymentStatus, payload json.RawMessage) error {
	return r.db.WithContext(ctx).
		Model(&models.Payment{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":      status,
			"raw_payload": payload,
		}).Error
}
