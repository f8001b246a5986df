package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type Service interface {
	GenerateToken(subject string) (token string, expiresAt time.Time, err error)
	ValidateToken(tokenString string) (*AdminClaims, error)
}

type service struct {
	secret   []byte
	leagueID string
	ttl      time.Duration
	now      func() time.Time
}

// NewService signs HS256 admin tokens scoped to one league.
func NewService(secret, leagueID string, ttl time.Duration) Service {
	return newService(secret, leagueID, ttl, time.Now)
}

func newService(secret, leagueID string, ttl time.Duration, now func() time.Time) *service {
	return &service{
		secret:   []byte(secret),
		leagueID: leagueID,
		ttl:      ttl,
		now:      now,
	}
}

func (s *service) GenerateToken(subject string) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(s.ttl)
	claims := &AdminClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		League: s.leagueID,
		Role:   string(RoleAdmin),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}

	return signedToken, expiresAt, nil
}

func (s *service) ValidateToken(tokenString string) (*AdminClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &AdminClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidSignature
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		if errors.Is(err, jwt.ErrTokenSignatureInvalid) {
			return nil, ErrInvalidSignature
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*AdminClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.League != s.leagueID {
		return nil, ErrWrongLeague
	}

	return claims, nil
}
