package auth

import (
	"errors"
	"time"
)

var (
	// ErrInvalidCredentials indicates a login failure. Unknown username and
	// wrong password both map here so the caller cannot tell them apart.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUsernameTaken signals a duplicate username registration.
	ErrUsernameTaken = errors.New("username already taken")
	// ErrUserNotFound indicates a missing identity record.
	ErrUserNotFound = errors.New("user not found")
	// ErrTokenExpired means the token's expiry is in the past.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenMalformed means the token could not be parsed, or is not of
	// the kind expected by the caller.
	ErrTokenMalformed = errors.New("token malformed")
	// ErrTokenSignature means the token's signature does not verify under
	// the current secret.
	ErrTokenSignature = errors.New("token signature invalid")
	// ErrInvalidRole indicates the provided role name is not supported.
	ErrInvalidRole = errors.New("invalid role")
	// ErrInvalidInput marks request validation failures. Handlers report
	// these to the client verbatim; anything not wrapped in a domain error
	// stays server-side.
	ErrInvalidInput = errors.New("invalid input")
)

// Role identifies a privilege granted to an identity.
type Role string

const (
	// RoleUser is the default role assigned at registration.
	RoleUser Role = "USER"
	// RoleAdmin marks administrative identities.
	RoleAdmin Role = "ADMIN"
)

// User models the identity persisted in storage.
type User struct {
	ID           string
	Username     string
	Email        string
	Roles        []Role
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// HasRole reports whether the user holds the given role.
func (u *User) HasRole(role Role) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// RoleNames returns the role set as plain strings for response payloads.
func (u *User) RoleNames() []string {
	names := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		names = append(names, string(r))
	}
	return names
}

// Credentials captures raw credential input for login. Instances live only
// for the duration of the call and must never be logged or persisted.
type Credentials struct {
	Username string
	Password string
}
