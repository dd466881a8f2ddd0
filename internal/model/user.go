package model

import (
	"fmt"
	"time"
)

// User is an account. Its group is one of the configured team names.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	DisplayName  string    `json:"display_name"`
	GroupName    string    `json:"group_name"`
	Role         string    `json:"role"`
	Approved     bool      `json:"approved"`
	Email        string    `json:"email,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Name returns the display name, falling back to the username.
func (u *User) Name() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Username
}

// Roles.
const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// ValidRole reports whether role is known.
func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleMember
}

// RoleAtLeast checks if role meets or exceeds the minimum required role.
func RoleAtLeast(role, minimum string) bool {
	levels := map[string]int{
		RoleAdmin:  2,
		RoleMember: 1,
	}
	have, ok := levels[role]
	if !ok {
		return false
	}
	want, ok := levels[minimum]
	if !ok {
		return false
	}
	return have >= want
}

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 8

// ValidatePassword checks password strength rules.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return fmt.Errorf("password must be at least %d characters", MinPasswordLength)
	}
	return nil
}
