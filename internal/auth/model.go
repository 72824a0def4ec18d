package auth

import (
	"fmt"
	"strings"
	"time"
)

type Role string

const (
	RoleStudent Role = "Student"
	RoleTeacher Role = "Teacher"
	RoleAdmin   Role = "Admin"
)

var roles = []Role{RoleStudent, RoleTeacher, RoleAdmin}

// ParseRole decodes a role name from the wire. Matching is case-insensitive;
// the canonical spelling is returned. Unknown names are rejected.
func ParseRole(s string) (Role, error) {
	for _, r := range roles {
		if strings.EqualFold(s, string(r)) {
			return r, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidRole, s)
}

// Valid reports whether r is one of the canonical role names.
func (r Role) Valid() bool {
	for _, known := range roles {
		if r == known {
			return true
		}
	}
	return false
}

// User is a credential record. PasswordHash never leaves the process.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}
