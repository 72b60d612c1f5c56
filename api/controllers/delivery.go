package controllers

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/matjara-app/matjara-backend/api/middleware"
	"github.com/matjara-app/matjara-backend/api/responses"
	"github.com/matjara-app/matjara-backend/api/validators"
	"github.com/matjara-app/matjara-backend/internal/delivery"
	pkgerrors "github.com/matjara-app/matjara-backend/pkg/errors"
	"github.com/matjara-app/matjara-backend/pkg/logger"
)

// StorefrontDeliveryMethods lists the active delivery options shoppers can
// pick at checkout.
func StorefrontDeliveryMethods(svc delivery.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "delivery service unavailable"))
			return
		}

		store := middleware.StoreFromContext(r.Context())
		if store == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "store not found"))
			return
		}

		items, err := svc.ListByStore(r.Context(), store.ID, true)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, items)
	}
}

type deliveryCreateRequest struct {
	Label string          `json:"label" validate:"required,min=1"`
	Fee   decimal.Decimal `json:"fee"`
}

// DeliveryMethodCreate adds a delivery option to the operator's store.
func DeliveryMethodCreate(svc delivery.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "delivery service unavailable"))
			return
		}

		var body deliveryCreateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		created, err := svc.Create(r.Context(), delivery.CreateMethodDTO{
			StoreID: middleware.StoreIDFromContext(r.Context()),
			Label:   body.Label,
			Fee:     body.Fee,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, created)
	}
}

// DeliveryMethodList lists every delivery option, including deactivated ones.
func DeliveryMethodList(svc delivery.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "delivery service unavailable"))
			return
		}

		items, err := svc.ListByStore(r.Context(), middleware.StoreIDFromContext(r.Context()), false)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, items)
	}
}

type deliveryUpdateRequest struct {
	Label    *string          `json:"label,omitempty" validate:"omitempty,min=1"`
	Fee      *decimal.Decimal `json:"fee,omitempty"`
	IsActive *bool            `json:"is_active,omitempty"`
}

// DeliveryMethodUpdate adjusts a delivery option.
func DeliveryMethodUpdate(svc delivery.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "delivery service unavailable"))
			return
		}

		id, err := parseUUIDParam(r, "methodId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body deliveryUpdateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		updated, err := svc.Update(r.Context(), middleware.StoreIDFromContext(r.Context()), id, delivery.UpdateMethodInput{
			Label:    body.Label,
			Fee:      body.Fee,
			IsActive: body.IsActive,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, updated)
	}
}
