package jwt

import "github.com/golang-jwt/jwt/v5"

// AdminClaims identifies a holder of the shared admin secret.
type AdminClaims struct {
	jwt.RegisteredClaims
	League string `json:"league"`
	Role   string `json:"role"`
}

type Role string

const RoleAdmin Role = "admin"

// IsAdmin reports whether the claims carry the admin role.
func (c *AdminClaims) IsAdmin() bool {
	return c != nil && Role(c.Role) == RoleAdmin
}
