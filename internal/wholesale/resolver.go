package wholesale

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/matjara-app/matjara-backend/pkg/db"
	"github.com/matjara-app/matjara-backend/pkg/db/models"
	pkgerrors "github.com/matjara-app/matjara-backend/pkg/errors"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const openAgreementConstraint = "wholesaler_agreements_open_uniq"

type agreementRepository interface {
	Create(ctx context.Context, agreement *models.WholesalerAgreement) error
	FindForScope(ctx context.Context, storeID, customerID uuid.UUID) ([]models.WholesalerAgreement, error)
	CloseOpen(ctx context.Context, storeID, customerID uuid.UUID, at time.Time) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.WholesalerAgreement, error)
	ListByStore(ctx context.Context, storeID uuid.UUID) ([]models.WholesalerAgreement, error)
}

// Service resolves wholesaler status and manages agreements.
type Service interface {
	Resolve(ctx context.Context, customerID, storeID uuid.UUID, asOf time.Time) (Status, error)
	Grant(ctx context.Context, input GrantInput) (*AgreementDTO, error)
	Revoke(ctx context.Context, storeID, agreementID uuid.UUID, at time.Time) error
	ListByStore(ctx context.Context, storeID uuid.UUID) ([]AgreementDTO, error)
}

type service struct {
	repo agreementRepository
}

// NewService builds a wholesale service with the provided repository.
func NewService(repo agreementRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("agreement repository required")
	}
	return &service{repo: repo}, nil
}

// Resolve reports whether the customer holds an active agreement with the
// store at the given instant. Missing records resolve to Inactive, never to
// an error. A zero asOf means "now".
func (s *service) Resolve(ctx context.Context, customerID, storeID uuid.UUID, asOf time.Time) (Status, error) {
	if asOf.IsZero() {
		asOf = time.Now().UTC()
	}

	rows, err := s.repo.FindForScope(ctx, storeID, customerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Inactive, nil
		}
		return Inactive, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load agreements")
	}

	return selectActive(rows, asOf), nil
}

// selectActive picks the agreement whose [ActiveFrom, ActiveTo) window
// contains asOf. Overlapping windows are a write-path anomaly; when they
// occur anyway the most recently created agreement wins, and rows arrive
// already ordered by created_at DESC.
func selectActive(rows []models.WholesalerAgreement, asOf time.Time) Status {
	for i := range rows {
		row := &rows[i]
		if asOf.Before(row.ActiveFrom) {
			continue
		}
		if row.ActiveTo != nil && !asOf.Before(*row.ActiveTo) {
			continue
		}
		id := row.ID
		return Status{
			Active:       true,
			DiscountRate: row.DiscountRate,
			AgreementID:  &id,
		}
	}
	return Inactive
}

// Grant closes any open agreement for the scope, then opens a new one. The
// partial unique index backstops the close-then-insert sequence against a
// concurrent grant for the same customer.
func (s *service) Grant(ctx context.Context, input GrantInput) (*AgreementDTO, error) {
	if input.StoreID == uuid.Nil || input.CustomerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store and customer are required")
	}
	if input.DiscountRate.IsNegative() || input.DiscountRate.GreaterThan(decimal.NewFromInt(1)) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "discount rate must be between 0 and 1")
	}

	activeFrom := input.ActiveFrom
	if activeFrom.IsZero() {
		activeFrom = time.Now().UTC()
	}

	if err := s.repo.CloseOpen(ctx, input.StoreID, input.CustomerID, activeFrom); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "close open agreement")
	}

	agreement := &models.WholesalerAgreement{
		StoreID:      input.StoreID,
		CustomerID:   input.CustomerID,
		DiscountRate: input.DiscountRate,
		ActiveFrom:   activeFrom,
	}
	if err := s.repo.Create(ctx, agreement); err != nil {
		if db.IsUniqueViolation(err, openAgreementConstraint) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "customer already has an open agreement")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create agreement")
	}
	return FromModel(agreement), nil
}

// Revoke ends an agreement at the given time.
func (s *service) Revoke(ctx context.Context, storeID, agreementID uuid.UUID, at time.Time) error {
	agreement, err := s.repo.FindByID(ctx, agreementID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "agreement not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load agreement")
	}
	if agreement.StoreID != storeID {
		return pkgerrors.New(pkgerrors.CodeNotFound, "agreement not found")
	}
	if agreement.ActiveTo != nil {
		return pkgerrors.New(pkgerrors.CodeConflict, "agreement already ended")
	}

	if at.IsZero() {
		at = time.Now().UTC()
	}
	if err := s.repo.CloseOpen(ctx, agreement.StoreID, agreement.CustomerID, at); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "end agreement")
	}
	return nil
}

func (s *service) ListByStore(ctx context.Context, storeID uuid.UUID) ([]AgreementDTO, error) {
	rows, err := s.repo.ListByStore(ctx, storeID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list agreements")
	}
	dtos := make([]AgreementDTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, *FromModel(&rows[i]))
	}
	return dtos, nil
}
