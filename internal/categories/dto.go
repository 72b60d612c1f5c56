package categories

import (
	"time"

	"github.com/google/uuid"
	"github.com/matjara-app/matjara-backend/pkg/db/models"
)

// CategoryDTO is the service-level view of a category.
type CategoryDTO struct {
	ID        uuid.UUID `json:"id"`
	StoreID   uuid.UUID `json:"store_id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"created_at"`
}

func FromModel(m *models.Category) *CategoryDTO {
	if m == nil {
		return nil
	}
	return &CategoryDTO{
		ID:        m.ID,
		StoreID:   m.StoreID,
		Name:      m.Name,
		Slug:      m.Slug,
		CreatedAt: m.CreatedAt,
	}
}

// CreateCategoryDTO carries the fields accepted when creating a category.
type CreateCategoryDTO struct {
	StoreID uuid.UUID
	Name    string
	Slug    string
}

func (d CreateCategoryDTO) ToModel() *models.Category {
	return &models.Category{
		StoreID: d.StoreID,
		Name:    d.Name,
		Slug:    d.Slug,
	}
}
