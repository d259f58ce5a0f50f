package ports

import (
	"context"

	"github.com/nutritrack/calorie-api/internal/core/domain"
)

// MealRepository defines persistence operations for meal records.
type MealRepository interface {
	// FindByUser returns all meals owned by the given user name.
	FindByUser(ctx context.Context, userName string) ([]*domain.Meal, error)
	// RemoveMany deletes the given meals. Used by the delete cascade.
	RemoveMany(ctx context.Context, meals []*domain.Meal) error
}
