package user

import "errors"

var (
	ErrNotFound           = errors.New("user not found")
	ErrEmailExists        = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrCannotDeleteAdmin  = errors.New("admin accounts cannot be deleted")

	PgUniqueViolation = "23505"
)

// CredentialError is a failed login. Callers see ErrInvalidCredentials
// regardless of Reason; Reason only feeds metrics and logs.
type CredentialError struct {
	Reason string
}

func (e *CredentialError) Error() string {
	return ErrInvalidCredentials.Error()
}

func (e *CredentialError) Is(target error) bool {
	return target == ErrInvalidCredentials
}
