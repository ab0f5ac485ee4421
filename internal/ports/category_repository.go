package ports

import (
	"context"
	"daily-routine-service/internal/domain"
)

// Port: a boundary for storing the user's category definitions.
type CategoryRepository interface {
	// Return all categories in display order.
	ListCategories(ctx context.Context) ([]domain.Category, error)
	GetCategory(ctx context.Context, id string) (domain.Category, error)
	// Insert or fully replace a category and its locations.
	SaveCategory(ctx context.Context, c domain.Category) error
	DeleteCategory(ctx context.Context, id string) error
	// Replace every stored category with the given set.
	ReplaceAll(ctx context.Context, categories []domain.Category) error
}
