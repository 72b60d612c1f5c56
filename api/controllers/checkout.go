package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/matjara-app/matjara-backend/api/middleware"
	"github.com/matjara-app/matjara-backend/api/responses"
	"github.com/matjara-app/matjara-backend/api/validators"
	"github.com/matjara-app/matjara-backend/internal/orders"
	pkgerrors "github.com/matjara-app/matjara-backend/pkg/errors"
	"github.com/matjara-app/matjara-backend/pkg/logger"
)

type checkoutLineRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,min=1"`
}

type checkoutRequest struct {
	DeliveryMethodID *uuid.UUID            `json:"delivery_method_id,omitempty"`
	Lines            []checkoutLineRequest `json:"lines" validate:"required,min=1,dive"`
}

func (c checkoutRequest) toServiceRequest(storeID, customerID uuid.UUID) orders.CheckoutRequest {
	lines := make([]orders.CheckoutLine, 0, len(c.Lines))
	for _, line := range c.Lines {
		lines = append(lines, orders.CheckoutLine{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
		})
	}
	return orders.CheckoutRequest{
		StoreID:          storeID,
		CustomerID:       customerID,
		DeliveryMethodID: c.DeliveryMethodID,
		Lines:            lines,
	}
}

// CheckoutQuote prices a basket without placing an order. The quote applies
// the caller's current wholesale status.
func CheckoutQuote(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		var body checkoutRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		quote, err := svc.Quote(r.Context(), body.toServiceRequest(
			middleware.StoreIDFromContext(r.Context()),
			middleware.IdentityIDFromContext(r.Context()),
		))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, quote)
	}
}

// CheckoutPlace prices the basket and persists the order with its price
// snapshot in one transaction.
func CheckoutPlace(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		var body checkoutRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Place(r.Context(), body.toServiceRequest(
			middleware.StoreIDFromContext(r.Context()),
			middleware.IdentityIDFromContext(r.Context()),
		))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}
