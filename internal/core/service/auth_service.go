package service

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/nutritrack/calorie-api/internal/core/domain"
	"github.com/nutritrack/calorie-api/internal/core/ports"
)

// AuthService verifies credentials and mints signed session tokens.
type AuthService struct {
	users     ports.UserRepository
	throttle  ports.LoginThrottle
	audit     ports.AuditRecorder
	jwtSecret string
	tokenTTL  time.Duration
	logger    zerolog.Logger
}

func NewAuthService(
	users ports.UserRepository,
	throttle ports.LoginThrottle,
	audit ports.AuditRecorder,
	jwtSecret string,
	tokenTTL time.Duration,
	logger zerolog.Logger,
) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &AuthService{
		users:     users,
		throttle:  throttle,
		audit:     audit,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
		logger:    logger,
	}
}

// Login validates the user name/password pair and returns a signed session
// token plus the account. Unknown user and wrong password collapse into
// the same ErrInvalidCredentials so the error cannot be used to enumerate
// accounts. Throttle failures are logged and ignored: a broken counter
// must not lock everyone out.
func (s *AuthService) Login(ctx context.Context, userName, password string) (string, *domain.User, error) {
	if userName == "" || password == "" {
		return "", nil, domain.ErrInvalidCredentials
	}

	if blocked, err := s.throttle.TooMany(ctx, userName); err != nil {
		s.logger.Warn().Err(err).Str("user_name", userName).Msg("login throttle check failed, proceeding")
	} else if blocked {
		return "", nil, domain.ErrTooManyAttempts
	}

	user, err := s.users.FindByUserName(ctx, userName)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			s.recordFailure(ctx, userName)
			return "", nil, domain.ErrInvalidCredentials
		}
		return "", nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		s.recordFailure(ctx, userName)
		return "", nil, domain.ErrInvalidCredentials
	}

	if err := s.throttle.Reset(ctx, userName); err != nil {
		s.logger.Warn().Err(err).Str("user_name", userName).Msg("failed to reset login throttle")
	}

	token, err := s.generateToken(user)
	if err != nil {
		return "", nil, err
	}

	s.audit.Record(ports.AuditEntry{Actor: user.UserName, Action: "login", Target: user.UserName, At: time.Now().UTC()})
	s.logger.Info().Str("user_name", user.UserName).Msg("login succeeded")

	return token, user, nil
}

func (s *AuthService) recordFailure(ctx context.Context, userName string) {
	if err := s.throttle.Fail(ctx, userName); err != nil {
		s.logger.Warn().Err(err).Str("user_name", userName).Msg("failed to record login failure")
	}
}

// generateToken mints the session claim: user name, role, issue and
// expiry timestamps, signed with HS256.
func (s *AuthService) generateToken(user *domain.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"user_name": user.UserName,
		"role":      string(user.Role),
		"iat":       now.Unix(),
		"exp":       now.Add(s.tokenTTL).Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.jwtSecret))
}
