package middleware

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/matjara-app/matjara-backend/api/responses"
	"github.com/matjara-app/matjara-backend/internal/stores"
	pkgerrors "github.com/matjara-app/matjara-backend/pkg/errors"
	"github.com/matjara-app/matjara-backend/pkg/logger"
)

// StoreResolver loads the storefront named by the {storeSlug} URL parameter
// and injects it into the request context. Deactivated stores are
// indistinguishable from missing ones.
func StoreResolver(svc stores.Service, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			slug := chi.URLParam(r, "storeSlug")
			if slug == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "store not found"))
				return
			}

			store, err := svc.GetBySlug(r.Context(), slug)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			if !store.IsActive {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "store not found"))
				return
			}

			ctx := WithStore(r.Context(), store)
			if logg != nil {
				ctx = logg.WithStoreID(ctx, store.ID.String())
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// StoreScope rejects tokens minted for a different store than the storefront
// being browsed. Tokens are store-scoped, so a mismatch is a forbidden access.
func StoreScope(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			store := StoreFromContext(r.Context())
			if store == nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "store not found"))
				return
			}
			if StoreIDFromContext(r.Context()) != store.ID {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "token not valid for this store"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
