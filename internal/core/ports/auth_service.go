package ports

import (
	"context"

	"github.com/nutritrack/calorie-api/internal/core/domain"
)

// AuthService verifies credentials and mints session tokens.
type AuthService interface {
	// Login validates a user name/password pair and returns a signed
	// session token plus the public view of the account. Unknown user and
	// wrong password both yield domain.ErrInvalidCredentials so the error
	// text cannot be used to enumerate accounts.
	Login(ctx context.Context, userName, password string) (string, *domain.User, error)
}
