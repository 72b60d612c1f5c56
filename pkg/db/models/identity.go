package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/matjara-app/matjara-backend/pkg/enums"
)

// Identity is a (store, email, role) scoped account. The same email may be a
// customer in one store and an admin in another, or both within one store.
// Uniqueness of active identities per scope key is enforced by a partial
// unique index over (store_id, lower(email), role); see the migrations.
type Identity struct {
	ID            uuid.UUID            `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	StoreID       uuid.UUID            `gorm:"column:store_id;type:uuid;not null;index"`
	Email         string               `gorm:"column:email;not null"`
	Role          enums.IdentityRole   `gorm:"column:role;not null"`
	Status        enums.IdentityStatus `gorm:"column:status;not null;default:'active'"`
	PasswordHash  string               `gorm:"column:password_hash;not null"`
	FirstName     string               `gorm:"column:first_name;not null"`
	LastName      string               `gorm:"column:last_name;not null"`
	Phone         *string              `gorm:"column:phone"`
	EmailVerified bool                 `gorm:"column:email_verified;not null;default:false"`
	LastLoginAt   *time.Time           `gorm:"column:last_login_at"`
	CreatedAt     time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}
