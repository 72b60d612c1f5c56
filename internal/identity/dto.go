package identity

import (
	"time"

	"github.com/google/uuid"
	"github.com/matjara-app/matjara-backend/pkg/db/models"
	"github.com/matjara-app/matjara-backend/pkg/enums"
)

// IdentityDTO is the service-level view of an identity. The password hash
// never leaves the repository layer through this type.
type IdentityDTO struct {
	ID            uuid.UUID            `json:"id"`
	StoreID       uuid.UUID            `json:"store_id"`
	Email         string               `json:"email"`
	Role          enums.IdentityRole   `json:"role"`
	Status        enums.IdentityStatus `json:"status"`
	FirstName     string               `json:"first_name"`
	LastName      string               `json:"last_name"`
	Phone         *string              `json:"phone,omitempty"`
	EmailVerified bool                 `json:"email_verified"`
	LastLoginAt   *time.Time           `json:"last_login_at,omitempty"`
	CreatedAt     time.Time            `json:"created_at"`
}

func FromModel(m *models.Identity) *IdentityDTO {
	if m == nil {
		return nil
	}
	return &IdentityDTO{
		ID:            m.ID,
		StoreID:       m.StoreID,
		Email:         m.Email,
		Role:          m.Role,
		Status:        m.Status,
		FirstName:     m.FirstName,
		LastName:      m.LastName,
		Phone:         m.Phone,
		EmailVerified: m.EmailVerified,
		LastLoginAt:   m.LastLoginAt,
		CreatedAt:     m.CreatedAt,
	}
}

// Page is one keyset page of identities.
type Page struct {
	Items      []IdentityDTO `json:"items"`
	NextCursor string        `json:"next_cursor,omitempty"`
}

// ReserveDTO carries everything needed to claim a scope key and create the
// identity row behind it in one write.
type ReserveDTO struct {
	Key          ScopeKey
	PasswordHash string
	FirstName    string
	LastName     string
	Phone        *string
}

func (d ReserveDTO) ToModel() *models.Identity {
	return &models.Identity{
		StoreID:      d.Key.StoreID,
		Email:        d.Key.Email,
		Role:         d.Key.Role,
		Status:       enums.IdentityStatusActive,
		PasswordHash: d.PasswordHash,
		FirstName:    d.FirstName,
		LastName:     d.LastName,
		Phone:        d.Phone,
	}
}
