package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/matjara-app/matjara-backend/pkg/db"
	"github.com/matjara-app/matjara-backend/pkg/db/models"
	"github.com/matjara-app/matjara-backend/pkg/enums"
	pkgerrors "github.com/matjara-app/matjara-backend/pkg/errors"
	"github.com/matjara-app/matjara-backend/pkg/pagination"
	"gorm.io/gorm"
)

// scopeKeyConstraint must match the partial unique index name in the
// migrations; it is how a lost reservation race is recognized.
const scopeKeyConstraint = "identities_scope_key_uniq"

type identityRepository interface {
	Create(ctx context.Context, dto ReserveDTO) (*models.Identity, error)
	FindActiveByKey(ctx context.Context, key ScopeKey) (*models.Identity, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Identity, error)
	SetEmailVerified(ctx context.Context, id uuid.UUID) error
	ListByStore(ctx context.Context, storeID uuid.UUID, role enums.IdentityRole, cursor *pagination.Cursor, limit int) ([]models.Identity, error)
	RecordLogin(ctx context.Context, id uuid.UUID, at time.Time) error
	UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status enums.IdentityStatus) error
}

// Service exposes identity operations.
type Service interface {
	Reserve(ctx context.Context, dto ReserveDTO) (*IdentityDTO, error)
	GetByID(ctx context.Context, id uuid.UUID) (*IdentityDTO, error)
	GetActiveByKey(ctx context.Context, key ScopeKey) (*models.Identity, error)
	ListCustomers(ctx context.Context, storeID uuid.UUID, params pagination.Params) (*Page, error)
	MarkEmailVerified(ctx context.Context, id uuid.UUID) error
	RecordLogin(ctx context.Context, id uuid.UUID, at time.Time) error
	Disable(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo identityRepository
}

// NewService builds an identity service with the provided repository.
func NewService(repo identityRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("identity repository required")
	}
	return &service{repo: repo}, nil
}

// Reserve claims the scope key and creates the identity in one write. The
// database unique index is the arbiter under concurrency: of N simultaneous
// reservations for the same key exactly one insert succeeds, the rest come
// back as unique violations and are reported as Conflict.
func (s *service) Reserve(ctx context.Context, dto ReserveDTO) (*IdentityDTO, error) {
	if dto.PasswordHash == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "password hash is required")
	}

	row, err := s.repo.Create(ctx, dto)
	if err != nil {
		if db.IsUniqueViolation(err, scopeKeyConstraint) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "identity already exists for this store and role")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create identity")
	}
	return FromModel(row), nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*IdentityDTO, error) {
	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "identity not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load identity")
	}
	return FromModel(row), nil
}

// GetActiveByKey returns the raw model because login needs the password
// hash, which the DTO deliberately omits.
func (s *service) GetActiveByKey(ctx context.Context, key ScopeKey) (*models.Identity, error) {
	row, err := s.repo.FindActiveByKey(ctx, key)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "identity not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load identity")
	}
	return row, nil
}

func (s *service) ListCustomers(ctx context.Context, storeID uuid.UUID, params pagination.Params) (*Page, error) {
	cursor, err := pagination.Parse(params.Cursor)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid cursor")
	}
	limit := pagination.NormalizeLimit(params.Limit)

	rows, err := s.repo.ListByStore(ctx, storeID, enums.IdentityRoleCustomer, cursor, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list customers")
	}

	page := &Page{Items: make([]IdentityDTO, 0, len(rows))}
	if len(rows) > limit {
		last := rows[limit-1]
		page.NextCursor = pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}.Encode()
		rows = rows[:limit]
	}
	for i := range rows {
		page.Items = append(page.Items, *FromModel(&rows[i]))
	}
	return page, nil
}

func (s *service) MarkEmailVerified(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.SetEmailVerified(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark email verified")
	}
	return nil
}

func (s *service) RecordLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	if err := s.repo.RecordLogin(ctx, id, at); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record login")
	}
	return nil
}

func (s *service) Disable(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.UpdateStatus(ctx, id, enums.IdentityStatusDisabled); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "disable identity")
	}
	return nil
}
