package repo

import (
	"context"

	"github.com/matjara-app/matjara-backend/pkg/pagination"
	"gorm.io/gorm"
)

// Base provides a shared foundation for domain repositories.
type Base struct {
	db *gorm.DB
}

// NewBase constructs a Base repository backed by the provided GORM connection.
func NewBase(db *gorm.DB) Base {
	return Base{db: db}
}

// DB returns the GORM connection bound to the supplied context (if any).
func (b Base) DB(ctx context.Context) *gorm.DB {
	if ctx == nil {
		return b.db
	}
	return b.db.WithContext(ctx)
}

// Keyset applies the standard (created_at DESC, id DESC) listing window to a
// query. A nil cursor starts from the newest row.
func Keyset(query *gorm.DB, cursor *pagination.Cursor, limit int) *gorm.DB {
	if cursor != nil {
		query = query.Where(
			"(created_at, id) < (?, ?)",
			cursor.CreatedAt, cursor.ID,
		)
	}
	return query.Order("created_at DESC, id DESC").Limit(pagination.FetchLimit(limit))
}
