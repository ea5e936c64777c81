package review

import (
	"time"

	"github.com/google/uuid"
)

type UserRef struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name,omitempty"`
}

type Response struct {
	ID        uuid.UUID `json:"id"`
	User      *UserRef  `json:"user"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"createdAt"`
}

func ToResponse(r *Review) *Response {
	out := &Response{
		ID:        r.ID,
		Rating:    r.Rating,
		Comment:   r.Comment,
		CreatedAt: r.CreatedAt,
	}
	if r.UserID != nil {
		out.User = &UserRef{ID: *r.UserID, Name: r.UserName}
	}
	return out
}

func ToResponseList(reviews []*Review) []*Response {
	out := make([]*Response, 0, len(reviews))
	for _, r := range reviews {
		out = append(out, ToResponse(r))
	}
	return out
}
