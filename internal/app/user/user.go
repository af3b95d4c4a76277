/*
Package user holds AuthenticatedUser, the identity derived from a successful
credential exchange. Its lifetime is bound to the credential's.
*/
package user

import (
	"mentorlink/internal/app/mapping"
	"mentorlink/internal/pkg/auth/jwt"
)

// Role is the marketplace role of a user.
type Role string

const (
	RoleMentor Role = "mentor"
	RoleMentee Role = "mentee"
)

// ParseRole maps a backend role string to a Role, defaulting to mentee.
func ParseRole(s string) Role {
	if Role(s) == RoleMentor {
		return RoleMentor
	}
	return RoleMentee
}

// User is the authenticated caller.
type User struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Role   Role   `json:"role"`
	Avatar string `json:"avatar,omitempty"`
}

// FromPayload derives a User from token claims.
func FromPayload(p *jwt.Payload) User {
	return User{
		ID:     p.UserID(),
		Name:   p.Name,
		Role:   ParseRole(p.Role),
		Avatar: p.Avatar,
	}
}

// FromRecord derives a User from a record reshaped with mapping.User.
func FromRecord(rec mapping.Record) User {
	str := func(key string) string {
		s, _ := rec[key].(string)
		return s
	}

	return User{
		ID:     str("id"),
		Name:   str("name"),
		Role:   ParseRole(str("role")),
		Avatar: str("avatar"),
	}
}
