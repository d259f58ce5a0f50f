package ports

import (
	"context"

	"github.com/nutritrack/calorie-api/internal/core/domain"
)

// CreateUserInput carries the data for a new directory account.
type CreateUserInput struct {
	UserName      string
	Password      string
	Name          string
	Role          domain.Role // "" = default (plain user)
	CalorieTarget int         // <= 0 = use the configured default
}

// ListUsersInput carries pagination parameters for the directory listing.
type ListUsersInput struct {
	Page  int // 1-based; values below 1 are floored to 1
	Limit int // capped at 100 by the service
}

// ListUsersResult is a directory page plus the unpaginated total.
type ListUsersResult struct {
	Users []*domain.User
	Total int64
	Page  int
	Limit int
}

// UserService defines the user lifecycle use cases. Every operation takes
// the acting principal; authorization decisions are delegated to the
// policy engine in the domain package.
type UserService interface {
	Create(ctx context.Context, input CreateUserInput, actor domain.Principal) (*domain.User, error)
	Get(ctx context.Context, userName string, actor domain.Principal) (*domain.User, error)
	List(ctx context.Context, input ListUsersInput) (*ListUsersResult, error)
	Update(ctx context.Context, changes domain.ProfileChanges, actor domain.Principal) (*domain.User, error)
	Delete(ctx context.Context, userName string, actor domain.Principal) error
}
