package review

import (
	"time"

	"github.com/google/uuid"
)

type Review struct {
	ID        uuid.UUID
	UserID    *uuid.UUID
	UserName  string
	Rating    int
	Comment   string
	CreatedAt time.Time
}

// CreateInput is accepted from anyone. User may be omitted.
type CreateInput struct {
	User    *uuid.UUID `json:"user"`
	Rating  *int       `json:"rating" validate:"required,gte=0,lte=5"`
	Comment string     `json:"comment" validate:"required"`
}

const (
	DefaultRecentLimit = 10
	MaxRecentLimit     = 100
)
