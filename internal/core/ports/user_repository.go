package ports

import (
	"context"

	"github.com/nutritrack/calorie-api/internal/core/domain"
)

// UserRepository defines persistence operations for the user directory.
type UserRepository interface {
	// FindByUserName retrieves an account by its unique user name.
	FindByUserName(ctx context.Context, userName string) (*domain.User, error)
	// FindPage returns a page of accounts ordered by user name ascending.
	// The password hash is not populated on listed records.
	FindPage(ctx context.Context, skip, limit int) ([]*domain.User, error)
	// CountAll returns the total number of accounts in the directory.
	CountAll(ctx context.Context) (int64, error)
	// Create inserts a new account. Returns domain.ErrUserExists when the
	// user name is already taken.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	// Save persists changes to an existing account.
	Save(ctx context.Context, user *domain.User) (*domain.User, error)
	// Remove deletes an account by user name.
	Remove(ctx context.Context, userName string) error
}
