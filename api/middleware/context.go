package middleware

import (
	"context"

	"github.com/google/uuid"

	"github.com/matjara-app/matjara-backend/internal/stores"
)

type contextKey string

const (
	ctxIdentityID contextKey = "identity_id"
	ctxRole       contextKey = "actor_role"
	ctxStoreID    contextKey = "store_id"
	ctxAccessID   contextKey = "access_id"
	ctxStore      contextKey = "store"
)

func IdentityIDFromContext(ctx context.Context) uuid.UUID {
	if ctx == nil {
		return uuid.Nil
	}
	if v, ok := ctx.Value(ctxIdentityID).(uuid.UUID); ok {
		return v
	}
	return uuid.Nil
}

func RoleFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxRole).(string); ok {
		return v
	}
	return ""
}

// StoreIDFromContext returns the store scope of the authenticated token.
func StoreIDFromContext(ctx context.Context) uuid.UUID {
	if ctx == nil {
		return uuid.Nil
	}
	if v, ok := ctx.Value(ctxStoreID).(uuid.UUID); ok {
		return v
	}
	return uuid.Nil
}

// AccessIDFromContext returns the jti of the presented access token.
func AccessIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxAccessID).(string); ok {
		return v
	}
	return ""
}

// StoreFromContext returns the storefront resolved from the URL slug.
func StoreFromContext(ctx context.Context) *stores.StoreDTO {
	if ctx == nil {
		return nil
	}
	if v, ok := ctx.Value(ctxStore).(*stores.StoreDTO); ok {
		return v
	}
	return nil
}

// WithIdentityID injects the identity identifier into the context.
func WithIdentityID(ctx context.Context, id uuid.UUID) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxIdentityID, id)
}

// WithStoreID injects the token's store scope into the context.
func WithStoreID(ctx context.Context, id uuid.UUID) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxStoreID, id)
}

// WithStore injects the resolved storefront for downstream handlers.
func WithStore(ctx context.Context, store *stores.StoreDTO) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxStore, store)
}
