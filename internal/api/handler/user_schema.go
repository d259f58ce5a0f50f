package handler

import (
	"github.com/nutritrack/calorie-api/internal/core/domain"
)

// --- Request types ---

type loginRequest struct {
	UserName string `json:"user_name" validate:"required"`
	Password string `json:"password"  validate:"required"`
}

// createUserRequest covers both self-service sign-up and manager/admin
// creation. Password is deliberately not validated here: a missing
// password must surface as INVALID_CREDENTIALS from the service, not as a
// schema error.
type createUserRequest struct {
	UserName      string `json:"user_name" validate:"required"`
	Password      string `json:"password"`
	Name          string `json:"name"`
	Role          string `json:"role"           validate:"omitempty,oneof=user manager admin"`
	CalorieTarget int    `json:"calorie_target"`
}

type updateUserRequest struct {
	UserName      string `json:"user_name" validate:"required"`
	Password      string `json:"password"`
	Name          string `json:"name"`
	Role          string `json:"role"           validate:"omitempty,oneof=user manager admin"`
	CalorieTarget int    `json:"calorie_target"`
}

// --- Response types ---

// userResponse is the public projection of an account. The password hash
// never appears here.
type userResponse struct {
	ID            string `json:"id"`
	UserName      string `json:"user_name"`
	Name          string `json:"name"`
	Role          string `json:"role"`
	CalorieTarget int    `json:"calorie_target"`
}

func toUserResponse(u *domain.User) userResponse {
	return userResponse{
		ID:            u.ID,
		UserName:      u.UserName,
		Name:          u.Name,
		Role:          string(u.Role),
		CalorieTarget: u.CalorieTarget,
	}
}

type loginResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}
