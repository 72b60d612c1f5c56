package controllers

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/matjara-app/matjara-backend/api/middleware"
	"github.com/matjara-app/matjara-backend/api/responses"
	"github.com/matjara-app/matjara-backend/api/validators"
	"github.com/matjara-app/matjara-backend/internal/stores"
	"github.com/matjara-app/matjara-backend/pkg/enums"
	pkgerrors "github.com/matjara-app/matjara-backend/pkg/errors"
	"github.com/matjara-app/matjara-backend/pkg/logger"
)

// StorefrontProfile returns the public profile of the store in the URL.
func StorefrontProfile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store := middleware.StoreFromContext(r.Context())
		if store == nil {
			responses.WriteError(r.Context(), nil, w, pkgerrors.New(pkgerrors.CodeNotFound, "store not found"))
			return
		}
		responses.WriteSuccess(w, store)
	}
}

type storeCreateRequest struct {
	Slug         string           `json:"slug" validate:"required"`
	Name         string           `json:"name" validate:"required"`
	Description  *string          `json:"description,omitempty"`
	Email        *string          `json:"email,omitempty" validate:"omitempty,email"`
	Phone        *string          `json:"phone,omitempty"`
	Currency     string           `json:"currency,omitempty"`
	DiscountRate *decimal.Decimal `json:"discount_rate,omitempty"`
}

// StoreCreate provisions a new storefront. Only mounted outside production.
func StoreCreate(svc stores.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "store service unavailable"))
			return
		}

		var body storeCreateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto := stores.CreateStoreDTO{
			Slug:        body.Slug,
			Name:        body.Name,
			Description: body.Description,
			Email:       body.Email,
			Phone:       body.Phone,
			Currency:    enums.Currency(body.Currency),
		}
		if body.DiscountRate != nil {
			dto.DiscountRate = *body.DiscountRate
		}

		created, err := svc.Create(r.Context(), dto)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, created)
	}
}

// StoreProfile returns the operator's store using the store-scoped JWT.
func StoreProfile(svc stores.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "store service unavailable"))
			return
		}

		profile, err := svc.GetByID(r.Context(), middleware.StoreIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, profile)
	}
}

type storeUpdateRequest struct {
	Name         *string          `json:"name,omitempty" validate:"omitempty,min=1"`
	Description  *string          `json:"description,omitempty"`
	Email        *string          `json:"email,omitempty" validate:"omitempty,email"`
	Phone        *string          `json:"phone,omitempty"`
	DiscountRate *decimal.Decimal `json:"discount_rate,omitempty"`
	IsActive     *bool            `json:"is_active,omitempty"`
}

// StoreUpdate adjusts the mutable fields of the operator's store.
func StoreUpdate(svc stores.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "store service unavailable"))
			return
		}

		var body storeUpdateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		updated, err := svc.Update(r.Context(), middleware.StoreIDFromContext(r.Context()), stores.UpdateStoreInput{
			Name:         body.Name,
			Description:  body.Description,
			Email:        body.Email,
			Phone:        body.Phone,
			DiscountRate: body.DiscountRate,
			IsActive:     body.IsActive,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, updated)
	}
}
