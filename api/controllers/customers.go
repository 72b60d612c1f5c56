package controllers

import (
	"net/http"

	"github.com/matjara-app/matjara-backend/api/middleware"
	"github.com/matjara-app/matjara-backend/api/responses"
	"github.com/matjara-app/matjara-backend/api/validators"
	"github.com/matjara-app/matjara-backend/internal/identity"
	pkgerrors "github.com/matjara-app/matjara-backend/pkg/errors"
	"github.com/matjara-app/matjara-backend/pkg/logger"
)

// CustomerProfile returns the signed-in customer's own identity record.
func CustomerProfile(svc identity.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "identity service unavailable"))
			return
		}

		profile, err := svc.GetByID(r.Context(), middleware.IdentityIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, profile)
	}
}

// AdminCustomers lists the customers of the operator's store, newest first.
func AdminCustomers(svc identity.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "identity service unavailable"))
			return
		}

		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.ListCustomers(r.Context(), middleware.StoreIDFromContext(r.Context()), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, page)
	}
}
