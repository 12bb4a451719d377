package core

import "fmt"

// Role classifies an identity. The set is closed: handlers switch
// exhaustively over it, and ParseRole rejects anything else.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleSupport  Role = "support"
	RoleAdmin    Role = "admin"
)

// ParseRole validates a raw role string.
func ParseRole(raw string) (Role, error) {
	switch Role(raw) {
	case RoleCustomer, RoleSupport, RoleAdmin:
		return Role(raw), nil
	default:
		return "", fmt.Errorf("unknown role %q", raw)
	}
}

// IsStaff reports whether the role may act on behalf of the support desk.
func (r Role) IsStaff() bool {
	return r == RoleSupport || r == RoleAdmin
}

// Identity is an authenticated user as seen by the core layer.
type Identity struct {
	ID    string
	Name  string
	Email string
	Role  Role
}
