package authservice

import (
	"context"
	"time"
)

// Service authenticates the league admin.
type Service interface {
	// Login checks the shared admin password and mints a session token.
	Login(ctx context.Context, password string) (*LoginResponse, error)

	// Authorize reports whether token belongs to a valid admin session.
	Authorize(ctx context.Context, token string) (bool, error)
}

type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}
