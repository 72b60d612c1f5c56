package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/matjara-app/matjara-backend/api/middleware"
	"github.com/matjara-app/matjara-backend/api/responses"
	"github.com/matjara-app/matjara-backend/api/validators"
	"github.com/matjara-app/matjara-backend/internal/wholesale"
	pkgerrors "github.com/matjara-app/matjara-backend/pkg/errors"
	"github.com/matjara-app/matjara-backend/pkg/logger"
)

type agreementGrantRequest struct {
	CustomerID   uuid.UUID       `json:"customer_id" validate:"required"`
	DiscountRate decimal.Decimal `json:"discount_rate" validate:"required"`
	ActiveFrom   *time.Time      `json:"active_from,omitempty"`
}

// AgreementGrant opens a wholesaler agreement for a customer. A previous open
// agreement for the same customer is closed first.
func AgreementGrant(svc wholesale.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "wholesale service unavailable"))
			return
		}

		var body agreementGrantRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := wholesale.GrantInput{
			StoreID:      middleware.StoreIDFromContext(r.Context()),
			CustomerID:   body.CustomerID,
			DiscountRate: body.DiscountRate,
		}
		if body.ActiveFrom != nil {
			input.ActiveFrom = *body.ActiveFrom
		}

		created, err := svc.Grant(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, created)
	}
}

// AgreementRevoke ends an agreement now. Future resolutions see the customer
// as a regular shopper.
func AgreementRevoke(svc wholesale.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "wholesale service unavailable"))
			return
		}

		id, err := parseUUIDParam(r, "agreementId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Revoke(r.Context(), middleware.StoreIDFromContext(r.Context()), id, time.Now().UTC()); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]bool{"revoked": true})
	}
}

// AgreementList returns every agreement of the operator's store, newest first.
func AgreementList(svc wholesale.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "wholesale service unavailable"))
			return
		}

		items, err := svc.ListByStore(r.Context(), middleware.StoreIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, items)
	}
}

type wholesaleStatusResponse struct {
	Active       bool            `json:"active"`
	DiscountRate decimal.Decimal `json:"discount_rate"`
}

// CustomerWholesaleStatus reports whether the signed-in customer currently
// gets wholesale pricing in this store.
func CustomerWholesaleStatus(svc wholesale.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "wholesale service unavailable"))
			return
		}

		status, err := svc.Resolve(
			r.Context(),
			middleware.IdentityIDFromContext(r.Context()),
			middleware.StoreIDFromContext(r.Context()),
			time.Time{},
		)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, wholesaleStatusResponse{
			Active:       status.Active,
			DiscountRate: status.DiscountRate,
		})
	}
}
