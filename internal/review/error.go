package review

import "errors"

var (
	ErrUnknownUser = errors.New("review references an unknown user")

	PgForeignKeyViolation = "23503"
)
