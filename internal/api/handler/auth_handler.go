package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/nutritrack/calorie-api/internal/api/metrics"
	"github.com/nutritrack/calorie-api/internal/api/respond"
	"github.com/nutritrack/calorie-api/internal/core/domain"
	"github.com/nutritrack/calorie-api/internal/core/ports"
)

// AuthHandler handles login and self-service sign-up.
type AuthHandler struct {
	authService ports.AuthService
	userService ports.UserService
}

func NewAuthHandler(authService ports.AuthService, userService ports.UserService) *AuthHandler {
	return &AuthHandler{authService: authService, userService: userService}
}

// Login authenticates a user and returns a signed session token.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest      true  "Login credentials"
// @Success      200   {object}  respond.Envelope
// @Failure      401   {object}  respond.Envelope
// @Failure      429   {object}  respond.Envelope
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	token, user, err := h.authService.Login(c.Request().Context(), req.UserName, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidCredentials):
			metrics.LoginsTotal.WithLabelValues("invalid_credentials").Inc()
		case errors.Is(err, domain.ErrTooManyAttempts):
			metrics.LoginsTotal.WithLabelValues("throttled").Inc()
		default:
			metrics.LoginsTotal.WithLabelValues("error").Inc()
		}
		return err
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	return respond.Success(c, http.StatusOK, loginResponse{Token: token, User: toUserResponse(user)}, domain.MsgSuccess, 1)
}

// SignUp creates a self-service account. The role is always forced to the
// plain user role regardless of the payload.
//
// @Summary      Sign up
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      createUserRequest  true  "Account details"
// @Success      201   {object}  respond.Envelope
// @Failure      401   {object}  respond.Envelope
// @Failure      409   {object}  respond.Envelope
// @Router       /auth/signup [post]
func (h *AuthHandler) SignUp(c echo.Context) error {
	var req createUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := h.userService.Create(c.Request().Context(), ports.CreateUserInput{
		UserName:      req.UserName,
		Password:      req.Password,
		Name:          req.Name,
		Role:          domain.Role(req.Role),
		CalorieTarget: req.CalorieTarget,
	}, domain.Anonymous())
	if err != nil {
		return err
	}

	metrics.UsersCreatedTotal.WithLabelValues(string(user.Role)).Inc()
	return respond.Success(c, http.StatusCreated, toUserResponse(user), domain.MsgSuccess, 1)
}
