package webhooks

import (
	"io"
	"net/http"

	"github.com/matjara-app/matjara-backend/api/responses"
	"github.com/matjara-app/matjara-backend/internal/payments"
	pkgerrors "github.com/matjara-app/matjara-backend/pkg/errors"
	"github.com/matjara-app/matjara-backend/pkg/logger"
)

// LahzaWebhook receives charge notifications from the payment gateway. The
// raw body must reach the service untouched so the signature can be checked
// against the exact bytes.
func LahzaWebhook(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "webhook service unavailable"))
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read request body"))
			return
		}

		if err := svc.HandleWebhook(ctx, body, r.Header); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]bool{"received": true})
	}
}
