package user

import (
	"time"

	"velora-api/internal/address"
	"velora-api/internal/auth"

	"github.com/google/uuid"
)

// PublicUser is the read shape of a user; the password hash never leaves the service.
type PublicUser struct {
	ID        uuid.UUID        `json:"id"`
	Name      string           `json:"name"`
	Email     string           `json:"email"`
	Role      auth.Role        `json:"role"`
	Phone     *string          `json:"phone,omitempty"`
	Address   *address.Address `json:"address,omitempty"`
	CreatedAt time.Time        `json:"createdAt"`
}

type AuthResponse struct {
	ID      uuid.UUID        `json:"id"`
	Name    string           `json:"name"`
	Email   string           `json:"email"`
	Role    auth.Role        `json:"role"`
	Phone   *string          `json:"phone,omitempty"`
	Address *address.Address `json:"address,omitempty"`
	Token   string           `json:"token"`
}

func ToPublic(u *User) *PublicUser {
	if u == nil {
		return nil
	}
	return &PublicUser{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		Phone:     u.Phone,
		Address:   u.Address,
		CreatedAt: u.CreatedAt,
	}
}

func ToPublicList(users []*User) []*PublicUser {
	out := make([]*PublicUser, 0, len(users))
	for _, u := range users {
		out = append(out, ToPublic(u))
	}
	return out
}

func ToAuthResponse(r *AuthResult) *AuthResponse {
	if r == nil || r.User == nil {
		return nil
	}
	return &AuthResponse{
		ID:      r.User.ID,
		Name:    r.User.Name,
		Email:   r.User.Email,
		Role:    r.User.Role,
		Phone:   r.User.Phone,
		Address: r.User.Address,
		Token:   r.Token,
	}
}
