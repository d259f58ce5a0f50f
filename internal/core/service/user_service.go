package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/nutritrack/calorie-api/internal/core/domain"
	"github.com/nutritrack/calorie-api/internal/core/ports"
)

// UserService orchestrates the user lifecycle: create, read, update and
// delete against the directory, delegating authorization to the policy
// engine and cascading deletes to the owner's meals.
type UserService struct {
	users         ports.UserRepository
	meals         ports.MealRepository
	audit         ports.AuditRecorder
	defaultTarget int
	logger        zerolog.Logger
}

const (
	defaultPageLimit = 10
	maxPageLimit     = 100
)

// NewUserService builds a UserService. defaultTarget is the calorie target
// applied when an account is created without one.
func NewUserService(
	users ports.UserRepository,
	meals ports.MealRepository,
	audit ports.AuditRecorder,
	defaultTarget int,
	logger zerolog.Logger,
) *UserService {
	return &UserService{
		users:         users,
		meals:         meals,
		audit:         audit,
		defaultTarget: defaultTarget,
		logger:        logger,
	}
}

// Create registers a new directory account. Self-service sign-ups and
// manager-created accounts always get the plain user role; only admins may
// assign a role at creation.
func (s *UserService) Create(ctx context.Context, input ports.CreateUserInput, actor domain.Principal) (*domain.User, error) {
	if _, err := s.users.FindByUserName(ctx, input.UserName); err == nil {
		return nil, domain.ErrUserExists
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	if input.Password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	role := input.Role
	if actor.Role != domain.RoleAdmin || !role.Valid() {
		role = domain.RoleUser
	}

	target := input.CalorieTarget
	if target <= 0 {
		target = s.defaultTarget
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &domain.User{
		UserName:      input.UserName,
		Name:          input.Name,
		PasswordHash:  string(hash),
		Role:          role,
		CalorieTarget: target,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	created, err := s.users.Create(ctx, user)
	if err != nil {
		return nil, err
	}

	s.audit.Record(ports.AuditEntry{Actor: actor.UserName, Action: "create", Target: created.UserName, At: now})
	s.logger.Info().Str("user_name", created.UserName).Str("role", string(created.Role)).Msg("user created")

	return created, nil
}

// Get returns a single account. Plain users can only ever fetch their own
// profile: the requested name is replaced by the caller's before lookup.
func (s *UserService) Get(ctx context.Context, userName string, actor domain.Principal) (*domain.User, error) {
	if actor.Role == domain.RoleUser {
		userName = actor.UserName
	}
	return s.users.FindByUserName(ctx, userName)
}

// List returns a directory page ordered by user name ascending, plus the
// unpaginated total. An empty page yields ErrUserNotFound even when the
// directory is non-empty (page overflow).
func (s *UserService) List(ctx context.Context, input ports.ListUsersInput) (*ports.ListUsersResult, error) {
	page := input.Page
	if page < 1 {
		page = 1
	}
	limit := input.Limit
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	users, err := s.users.FindPage(ctx, (page-1)*limit, limit)
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, domain.ErrUserNotFound
	}

	total, err := s.users.CountAll(ctx)
	if err != nil {
		return nil, err
	}

	return &ports.ListUsersResult{Users: users, Total: total, Page: page, Limit: limit}, nil
}

// Update applies a sparse change proposal to the target account under
// policy engine control. Nothing is persisted when any field is rejected.
func (s *UserService) Update(ctx context.Context, changes domain.ProfileChanges, actor domain.Principal) (*domain.User, error) {
	// Plain users may only ever target themselves; the substitution happens
	// before lookup so a foreign user name cannot select the record.
	if actor.Role == domain.RoleUser {
		changes.UserName = actor.UserName
	}

	target, err := s.users.FindByUserName(ctx, changes.UserName)
	if err != nil {
		return nil, err
	}

	plan, err := domain.DecideUpdate(actor, *target, changes)
	if err != nil {
		return nil, err
	}

	if plan.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(plan.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		target.PasswordHash = string(hash)
	}
	if plan.CalorieTarget > 0 {
		target.CalorieTarget = plan.CalorieTarget
	}
	if plan.Name != "" {
		target.Name = plan.Name
	}
	if plan.Role != "" {
		target.Role = plan.Role
	}
	target.UpdatedAt = time.Now().UTC()

	updated, err := s.users.Save(ctx, target)
	if err != nil {
		return nil, err
	}

	s.audit.Record(ports.AuditEntry{Actor: actor.UserName, Action: "update", Target: updated.UserName, At: target.UpdatedAt})
	s.logger.Info().Str("user_name", updated.UserName).Str("actor", actor.UserName).Msg("user updated")

	return updated, nil
}

// Delete removes an account and cascades to its meals. Managers may delete
// plain users, admins anyone but themselves. The existence check runs
// before the meals query so a missing user never triggers the cascade, and
// meals are removed before the user record to avoid orphaned references.
func (s *UserService) Delete(ctx context.Context, userName string, actor domain.Principal) error {
	target, err := s.users.FindByUserName(ctx, userName)
	if err != nil {
		return err
	}

	if !domain.CanDelete(actor, *target) {
		return domain.ErrForbidden
	}

	meals, err := s.meals.FindByUser(ctx, target.UserName)
	if err != nil {
		return err
	}
	if len(meals) > 0 {
		if err := s.meals.RemoveMany(ctx, meals); err != nil {
			return err
		}
	}

	if err := s.users.Remove(ctx, target.UserName); err != nil {
		return err
	}

	s.audit.Record(ports.AuditEntry{Actor: actor.UserName, Action: "delete", Target: target.UserName, At: time.Now().UTC()})
	s.logger.Info().Str("user_name", target.UserName).Str("actor", actor.UserName).Int("meals_removed", len(meals)).Msg("user deleted")

	return nil
}
