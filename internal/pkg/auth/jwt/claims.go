package jwt

import "github.com/golang-jwt/jwt"

// Payload is the set of claims mentorlink reads from a bearer credential.
// The backend issues the token; the gateway and client only read it.
type Payload struct {
	jwt.StandardClaims

	// ID is the authenticated user's identifier.
	ID string `json:"id"`

	// Name is the user's display name.
	Name string `json:"name,omitempty"`

	// Role is "mentor" or "mentee".
	Role string `json:"role,omitempty"`

	// Avatar is a reference to the user's profile photo.
	Avatar string `json:"avatar,omitempty"`
}

// UserID returns ID, falling back to the standard subject claim.
func (p *Payload) UserID() string {
	if p.ID != "" {
		return p.ID
	}
	return p.Subject
}
