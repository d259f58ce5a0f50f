package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/nutritrack/calorie-api/internal/api/metrics"
	"github.com/nutritrack/calorie-api/internal/api/respond"
	"github.com/nutritrack/calorie-api/internal/core/domain"
	"github.com/nutritrack/calorie-api/internal/core/ports"
)

// UserHandler handles HTTP requests for the user directory.
type UserHandler struct {
	service ports.UserService
}

func NewUserHandler(service ports.UserService) *UserHandler {
	return &UserHandler{service: service}
}

// List handles GET /v1/users.
//
// @Summary      List users
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        page   query     int  false  "Page (1-based)"
// @Param        limit  query     int  false  "Page size (max 100)"
// @Success      200    {object}  respond.Envelope
// @Failure      404    {object}  respond.Envelope
// @Router       /v1/users [get]
func (h *UserHandler) List(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	result, err := h.service.List(c.Request().Context(), ports.ListUsersInput{Page: page, Limit: limit})
	if err != nil {
		return err
	}

	users := make([]userResponse, 0, len(result.Users))
	for _, u := range result.Users {
		users = append(users, toUserResponse(u))
	}

	return respond.Success(c, http.StatusOK, users, domain.MsgResourceFound, result.Total)
}

// Get handles GET /v1/users/:userName. Plain users always receive their
// own profile, whatever name they ask for.
//
// @Summary      Get a user by user name
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        userName  path      string  true  "User name"
// @Success      200       {object}  respond.Envelope
// @Failure      404       {object}  respond.Envelope
// @Router       /v1/users/{userName} [get]
func (h *UserHandler) Get(c echo.Context) error {
	actor, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	user, err := h.service.Get(c.Request().Context(), c.Param("userName"), actor)
	if err != nil {
		return err
	}

	return respond.Success(c, http.StatusOK, toUserResponse(user), domain.MsgResourceFound, 1)
}

// Create handles POST /v1/users (manager/admin initiated creation).
//
// @Summary      Create a user
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createUserRequest  true  "Account details"
// @Success      201   {object}  respond.Envelope
// @Failure      401   {object}  respond.Envelope
// @Failure      409   {object}  respond.Envelope
// @Router       /v1/users [post]
func (h *UserHandler) Create(c echo.Context) error {
	actor, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	var req createUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := h.service.Create(c.Request().Context(), ports.CreateUserInput{
		UserName:      req.UserName,
		Password:      req.Password,
		Name:          req.Name,
		Role:          domain.Role(req.Role),
		CalorieTarget: req.CalorieTarget,
	}, actor)
	if err != nil {
		return err
	}

	metrics.UsersCreatedTotal.WithLabelValues(string(user.Role)).Inc()
	return respond.Success(c, http.StatusCreated, toUserResponse(user), domain.MsgSuccess, 1)
}

// Update handles PUT /v1/users.
//
// @Summary      Update a user
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      updateUserRequest  true  "Sparse change set"
// @Success      200   {object}  respond.Envelope
// @Failure      400   {object}  respond.Envelope
// @Failure      403   {object}  respond.Envelope
// @Failure      404   {object}  respond.Envelope
// @Router       /v1/users [put]
func (h *UserHandler) Update(c echo.Context) error {
	actor, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	var req updateUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := h.service.Update(c.Request().Context(), domain.ProfileChanges{
		UserName:      req.UserName,
		Password:      req.Password,
		Name:          req.Name,
		Role:          domain.Role(req.Role),
		CalorieTarget: req.CalorieTarget,
	}, actor)
	if err != nil {
		if errors.Is(err, domain.ErrForbidden) {
			metrics.PolicyDenialsTotal.WithLabelValues(string(actor.Role), "update").Inc()
		}
		return err
	}

	return respond.Success(c, http.StatusOK, toUserResponse(user), domain.MsgSuccess, 1)
}

// Delete handles DELETE /v1/users/:userName. Removes the account's meals
// first, then the account itself.
//
// @Summary      Delete a user
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        userName  path      string  true  "User name"
// @Success      200       {object}  respond.Envelope
// @Failure      403       {object}  respond.Envelope
// @Failure      404       {object}  respond.Envelope
// @Router       /v1/users/{userName} [delete]
func (h *UserHandler) Delete(c echo.Context) error {
	actor, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	if err := h.service.Delete(c.Request().Context(), c.Param("userName"), actor); err != nil {
		if errors.Is(err, domain.ErrForbidden) {
			metrics.PolicyDenialsTotal.WithLabelValues(string(actor.Role), "delete").Inc()
		}
		return err
	}

	metrics.UsersDeletedTotal.Inc()
	return respond.Success(c, http.StatusOK, nil, domain.MsgSuccess, 1)
}
