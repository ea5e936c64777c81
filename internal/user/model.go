package user

import (
	"time"

	"velora-api/internal/address"
	"velora-api/internal/auth"

	"github.com/google/uuid"
)

type User struct {
	ID        uuid.UUID
	Name      string
	Email     string
	Password  string // bcrypt hash
	Role      auth.Role
	Phone     *string
	Address   *address.Address
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (u *User) Principal() auth.Principal {
	return auth.Principal{UserID: u.ID, Role: u.Role}
}

type RegisterInput struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"min=6,maxbytes=72"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// ProfilePatch holds the fields a user may change on their own account.
// Empty values leave the stored field untouched.
type ProfilePatch struct {
	Name     string           `json:"name"`
	Email    string           `json:"email" validate:"omitempty,email"`
	Phone    string           `json:"phone"`
	Address  *address.Address `json:"address" validate:"-"`
	Password string           `json:"password" validate:"omitempty,min=6,maxbytes=72"`
}

// AuthResult is returned by every operation that issues a token.
type AuthResult struct {
	Token string
	User  *User
}

type AdminSeed struct {
	Name     string
	Email    string
	Password string
	Phone    string
}
