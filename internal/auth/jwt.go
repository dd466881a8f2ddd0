// Package auth issues and verifies the bearer tokens used by the API.
package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/erazemk/labstock/internal/model"
)

// Claims carries the identity the API needs on every request. Group is the
// user's duty team and gates check submission.
type Claims struct {
	UserID      int64  `json:"user_id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	Group       string `json:"group"`
	Role        string `json:"role"`
	jwt.RegisteredClaims
}

// IsAdmin reports whether the token holder is an administrator.
func (c *Claims) IsAdmin() bool {
	return c.Role == model.RoleAdmin
}

// Actor returns the identity recorded on order transitions.
func (c *Claims) Actor() model.Actor {
	name := c.DisplayName
	if name == "" {
		name = c.Username
	}
	return model.Actor{Name: name, Group: c.Group, IsAdmin: c.IsAdmin()}
}

// TokenExpiry is the default token lifetime.
const TokenExpiry = 7 * 24 * time.Hour

// Issuer is written into every token and required on validation.
const Issuer = "labstock"

// GenerateToken creates a signed token for user with a unique JTI. A
// non-positive ttl uses TokenExpiry.
func GenerateToken(secret string, user *model.User, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = TokenExpiry
	}
	now := time.Now()

	claims := Claims{
		UserID:      user.ID,
		Username:    user.Username,
		DisplayName: user.DisplayName,
		Group:       user.GroupName,
		Role:        user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    Issuer,
			Subject:   fmt.Sprintf("%d", user.ID),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// ValidateToken parses and validates a JWT, returning the claims.
func ValidateToken(secret, tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	}, jwt.WithIssuer(Issuer), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("parsing token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	if claims.ID == "" {
		return nil, fmt.Errorf("token has no id")
	}

	return claims, nil
}
