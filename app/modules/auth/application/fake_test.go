package authservice

import (
	"time"

	"github.com/Black-And-White-Club/frolf-club/pkg/jwt"
)

// FakeTokens is a programmable jwt.Service.
type FakeTokens struct {
	trace []string

	GenerateTokenFunc func(subject string) (string, time.Time, error)
	ValidateTokenFunc func(token string) (*jwt.AdminClaims, error)
}

func (f *FakeTokens) GenerateToken(subject string) (string, time.Time, error) {
	f.trace = append(f.trace, "GenerateToken")
	if f.GenerateTokenFunc != nil {
		return f.GenerateTokenFunc(subject)
	}
	return "token-" + subject, time.Time{}, nil
}

func (f *FakeTokens) ValidateToken(token string) (*jwt.AdminClaims, error) {
	f.trace = append(f.trace, "ValidateToken")
	if f.ValidateTokenFunc != nil {
		return f.ValidateTokenFunc(token)
	}
	return &jwt.AdminClaims{Role: string(jwt.RoleAdmin)}, nil
}

func (f *FakeTokens) Trace() []string { return f.trace }

var _ jwt.Service = (*FakeTokens)(nil)
