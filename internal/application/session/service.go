package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/trip-planner-nosql/internal/domain"
	"github.com/trip-planner-nosql/internal/pkg/validate"
	"golang.org/x/crypto/bcrypt"
)

const invalidCredentials = "Invalid email or password"

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Service issues and revokes bearer tokens.
type Service interface {
	Login(ctx context.Context, req LoginRequest) (string, error)
	Logout(ctx context.Context, token string) error
}

type userStore interface {
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

type tokenIssuer interface {
	Sign(userID string) (string, error)
	ExpiryOf(token string) (time.Time, error)
}

type revocationStore interface {
	Revoke(ctx context.Context, token string, expiresAt time.Time) error
}

type service struct {
	users       userStore
	tokens      tokenIssuer
	revocations revocationStore
}

type ServiceDeps struct {
	UserRepo    userStore
	JWTProvider tokenIssuer
	Revocations revocationStore
}

func NewService(deps ServiceDeps) Service {
	return &service{
		users:       deps.UserRepo,
		tokens:      deps.JWTProvider,
		revocations: deps.Revocations,
	}
}

func (s *service) Login(ctx context.Context, req LoginRequest) (string, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := validate.Struct(req); err != nil {
		return "", fmt.Errorf("%s: %w", invalidCredentials, domain.ErrBadRequest)
	}
	u, err := s.users.GetByEmail(ctx, req.Email)
	if errors.Is(err, domain.ErrNotFound) {
		return "", fmt.Errorf("%s: %w", invalidCredentials, domain.ErrBadRequest)
	}
	if err != nil {
		return "", fmt.Errorf("login lookup: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		return "", fmt.Errorf("%s: %w", invalidCredentials, domain.ErrBadRequest)
	}
	token, err := s.tokens.Sign(u.UserID)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return token, nil
}

// Logout adds token to the revocation list until its own expiry. The
// signature is not checked, so any holder can revoke a token.
func (s *service) Logout(ctx context.Context, token string) error {
	if token == "" {
		return fmt.Errorf("No token provided: %w", domain.ErrBadRequest)
	}
	exp, err := s.tokens.ExpiryOf(token)
	if err != nil {
		return fmt.Errorf("Invalid token: %w", err)
	}
	if err := s.revocations.Revoke(ctx, token, exp); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}
