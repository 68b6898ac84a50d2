package auth

import "errors"

// Role is an account's permission tier. It travels verbatim in tokens and
// request bodies.
type Role string

const (
	RoleSuperAdmin Role = "SUPER_ADMIN"
	RoleAdmin      Role = "ADMIN"
	RoleUser       Role = "USER"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleSuperAdmin, RoleAdmin, RoleUser:
		return true
	}
	return false
}

// Principal is the identity reconstructed from a verified token. It is derived
// fresh on every request and never persisted by the consuming service.
type Principal struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// User is a credential record as stored by the user directory service.
// PasswordHash is a bcrypt hash and is serialized under "password" to match
// the directory's wire format; it must never be returned to end users.
type User struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	PasswordHash string `json:"password,omitempty"`
	Role         Role   `json:"role"`
}

// Principal returns the principal view of a credential record.
func (u *User) Principal() Principal {
	return Principal{ID: u.ID, Email: u.Email, Role: u.Role}
}

var (
	// ErrInvalidCredentials covers every login failure: unknown email, wrong
	// password, and upstream lookup errors. Collapsing them is deliberate so
	// the response never reveals whether an account exists.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrMissingToken indicates an absent or malformed Authorization header.
	ErrMissingToken = errors.New("authorization token missing")

	// ErrInvalidToken indicates a token that failed signature, expiry, or
	// payload validation.
	ErrInvalidToken = errors.New("invalid or expired token")
)
