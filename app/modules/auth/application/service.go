package authservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Black-And-White-Club/frolf-club/pkg/jwt"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/crypto/bcrypt"
)

// service implements the Service interface.
type service struct {
	tokens       jwt.Service
	passwordHash []byte
	logger       *slog.Logger
	tracer       trace.Tracer
}

// NewService creates a new auth service. passwordHash is a bcrypt hash; when empty
// every login fails with ErrNotConfigured.
func NewService(tokens jwt.Service, passwordHash string, logger *slog.Logger, tracer trace.Tracer) Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &service{
		tokens:       tokens,
		passwordHash: []byte(passwordHash),
		logger:       logger,
		tracer:       tracer,
	}
}

// HashPassword returns the bcrypt hash to put in ADMIN_PASSWORD_HASH.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", errors.New("password cannot be empty")
	}
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(h), nil
}

func (s *service) Login(ctx context.Context, password string) (*LoginResponse, error) {
	ctx, span := s.tracer.Start(ctx, "AuthService.Login")
	defer span.End()

	if len(s.passwordHash) == 0 {
		s.logger.WarnContext(ctx, "Admin login attempted without a configured password hash")
		return nil, ErrNotConfigured
	}
	if err := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password)); err != nil {
		s.logger.WarnContext(ctx, "Admin login rejected")
		return nil, ErrInvalidCredentials
	}

	token, expiresAt, err := s.tokens.GenerateToken("admin")
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to generate admin token", slog.Any("error", err))
		return nil, fmt.Errorf("%w: %v", ErrGenerateToken, err)
	}

	s.logger.InfoContext(ctx, "Admin logged in", slog.Time("expires_at", expiresAt))
	return &LoginResponse{Token: token, ExpiresAt: expiresAt}, nil
}

func (s *service) Authorize(ctx context.Context, token string) (bool, error) {
	if token == "" {
		return false, ErrMissingToken
	}
	claims, err := s.tokens.ValidateToken(token)
	if err != nil {
		s.logger.DebugContext(ctx, "Admin token rejected", slog.Any("error", err))
		return false, err
	}
	return claims.IsAdmin(), nil
}
