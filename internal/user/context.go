package user

import "context"

type ctxKey string

const userKey ctxKey = "user"

// NewContext attaches the authenticated user to ctx.
func NewContext(ctx context.Context, u *User) context.Context {
	return context.WithValue(ctx, userKey, u)
}

func FromContext(ctx context.Context) (*User, bool) {
	u, ok := ctx.Value(userKey).(*User)
	return u, ok && u != nil
}
