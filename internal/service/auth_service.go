package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"clubboard/internal/models"
	"clubboard/internal/observability"
	"clubboard/internal/repository"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
)

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 6

const revokedKeyPrefix = "blacklist:"

// AuthService manages accounts and revoked access tokens.
type AuthService struct {
	users repository.UserRepository
	rdb   *redis.Client
}

func NewAuthService(users repository.UserRepository, rdb *redis.Client) *AuthService {
	return &AuthService{users: users, rdb: rdb}
}

// SignUp registers an account. The caller is not signed in afterwards.
func (s *AuthService) SignUp(ctx context.Context, email, password string) (*models.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, models.NewValidationError("Email and password are required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, models.NewValidationError("Invalid email address")
	}
	if len(password) < MinPasswordLength {
		return nil, models.NewValidationError(fmt.Sprintf("Password should be at least %d characters", MinPasswordLength))
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	user := &models.User{Email: email, Password: string(hashed)}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Authenticate checks email and password and returns the account.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, models.NewValidationError("Email and password are required")
	}
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, models.NewUnauthorizedError("Invalid login credentials")
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, models.NewUnauthorizedError("Invalid login credentials")
	}
	return user, nil
}

// Revoke marks a token id as unusable until it would have expired anyway.
// Without Redis revocation is not possible and Revoke is a no-op.
func (s *AuthService) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	if s.rdb == nil || tokenID == "" {
		return nil
	}
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	if err := s.rdb.Set(ctx, revokedKeyPrefix+tokenID, "1", ttl).Err(); err != nil {
		observability.RedisErrorRate.WithLabelValues("revoke").Inc()
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

// IsRevoked reports whether tokenID was revoked. Redis errors fail open.
func (s *AuthService) IsRevoked(ctx context.Context, tokenID string) bool {
	if s.rdb == nil || tokenID == "" {
		return false
	}
	n, err := s.rdb.Exists(ctx, revokedKeyPrefix+tokenID).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			observability.RedisErrorRate.WithLabelValues("revoke_check").Inc()
		}
		return false
	}
	return n > 0
}

// Account returns the account behind a member id.
func (s *AuthService) Account(ctx context.Context, memberID string) (*models.User, error) {
	user, err := s.users.GetByID(ctx, memberID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, models.NewUnauthorizedError("Session is no longer valid")
		}
		return nil, err
	}
	return user, nil
}
