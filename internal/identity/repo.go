package identity

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/matjara-app/matjara-backend/internal/repo"
	"github.com/matjara-app/matjara-backend/pkg/db/models"
	"github.com/matjara-app/matjara-backend/pkg/enums"
	"github.com/matjara-app/matjara-backend/pkg/pagination"
	"gorm.io/gorm"
)

// Repository handles identity persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to identity operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts the identity row. Duplicate active scope keys surface as a
// unique violation from the partial index, not from an application check.
func (r *Repository) Create(ctx context.Context, dto ReserveDTO) (*models.Identity, error) {
	row := dto.ToModel()
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

// FindActiveByKey loads the active identity holding the scope key, if any.
func (r *Repository) FindActiveByKey(ctx context.Context, key ScopeKey) (*models.Identity, error) {
	var row models.Identity
	err := r.db.WithContext(ctx).
		Where("store_id = ? AND lower(email) = ? AND role = ? AND status = ?",
			key.StoreID, key.Email, key.Role, enums.IdentityStatusActive).
		First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// FindByID loads an identity by its UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Identity, error) {
	var row models.Identity
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// ListByStore returns one keyset page of a store's identities with the given
// role, newest first.
func (r *Repository) ListByStore(ctx context.Context, storeID uuid.UUID, role enums.IdentityRole, cursor *pagination.Cursor, limit int) ([]models.Identity, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Identity{}).
		Where("store_id = ? AND role = ?", storeID, role)

	var rows []models.Identity
	if err := repo.Keyset(query, cursor, limit).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// SetEmailVerified flips the verification flag.
func (r *Repository) SetEmailVerified(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Identity{}).
		Where("id = ?", id).
		Update("email_verified", true).Error
}

// RecordLogin stamps the last successful login time.
func (r *Repository) RecordLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.Identity{}).
		Where("id = ?", id).
		Update("last_login_at", at).Error
}

// UpdatePasswordHash replaces the stored password hash.
func (r *Repository) UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error {
	return r.db.WithContext(ctx).
		Model(&models.Identity{}).
		Where("id = ?", id).
		Update("password_hash", hash).Error
}

// UpdateStatus moves the identity between active and disabled. Disabling
// drops the row out of the partial unique index and frees its scope key.
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.IdentityStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.Identity{}).
		Where("id = ?", id).
		Update("status", status).Error
}
