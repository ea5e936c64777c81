package auth

import "github.com/google/uuid"

type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

func (r Role) Valid() bool {
	return r == RoleCustomer || r == RoleAdmin
}

// Principal is the authenticated caller as seen by the services.
type Principal struct {
	UserID uuid.UUID
	Role   Role
}

func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// RequireRole fails with ErrForbidden unless the principal holds exactly role.
func RequireRole(p Principal, role Role) error {
	if p.Role != role {
		return ErrForbidden
	}
	return nil
}
