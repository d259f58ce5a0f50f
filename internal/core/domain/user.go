package domain

import (
	"errors"
	"time"
)

// Role is the access level of a directory account. Roles form an ordered
// hierarchy: anonymous < user < manager < admin. RoleAnonymous is a
// transient "no session" marker and is never persisted.
type Role string

const (
	RoleAnonymous Role = "anonymous"
	RoleUser      Role = "user"
	RoleManager   Role = "manager"
	RoleAdmin     Role = "admin"
)

// roleRank orders the hierarchy for comparisons. Anonymous is excluded on
// purpose: it is not a persistable role.
var roleRank = map[Role]int{
	RoleUser:    1,
	RoleManager: 2,
	RoleAdmin:   3,
}

// Valid reports whether r is a persistable role.
func (r Role) Valid() bool {
	_, ok := roleRank[r]
	return ok
}

// AtLeast reports whether r sits at or above other in the hierarchy.
func (r Role) AtLeast(other Role) bool {
	return roleRank[r] >= roleRank[other]
}

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrForbidden          = errors.New("unauthorized request")
	ErrNothingToUpdate    = errors.New("no updatable field supplied")
	ErrTooManyAttempts    = errors.New("too many login attempts")
)

// Message catalog surfaced through the response envelope. Clients key on
// these strings, so they are part of the API contract.
const (
	MsgResourceNotFound   = "RESOURCE_NOT_FOUND"
	MsgResourceFound      = "RESOURCE_FOUND"
	MsgSuccess            = "SUCCESS"
	MsgBadRequest         = "BAD_REQUEST"
	MsgUnauthorized       = "UNAUTHORIZED_REQUEST"
	MsgInvalidCredentials = "INVALID_CREDENTIALS"
	MsgDuplicateResource  = "DUPLICATE_RESOURCE"
	MsgTooManyAttempts    = "TOO_MANY_ATTEMPTS"
)

// User is a directory account with its daily calorie target.
type User struct {
	ID            string    `json:"id"`
	UserName      string    `json:"user_name"`
	Name          string    `json:"name"`
	PasswordHash  string    `json:"-"`
	Role          Role      `json:"role"`
	CalorieTarget int       `json:"calorie_target"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Principal is the authenticated identity making the current call,
// extracted from a verified session token.
type Principal struct {
	UserName string
	Role     Role
}

// Anonymous is the principal used for unauthenticated self-service calls.
func Anonymous() Principal {
	return Principal{Role: RoleAnonymous}
}
