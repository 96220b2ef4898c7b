package access

import "errors"

// Failure kinds reported to callers. Each operation either returns a
// success value or one of these; callers composing operations stop at
// the first failure.
var (
	ErrMissingToken       = errors.New("access: missing token")
	ErrSessionNotFound    = errors.New("access: session not found")
	ErrAccountNotFound    = errors.New("access: account not found")
	ErrInvalidCredentials = errors.New("access: invalid credentials")
	ErrNotFound           = errors.New("access: not found")
	ErrAccountConflict    = errors.New("access: account belongs to another identity source")
	ErrPermissionDenied   = errors.New("access: permission denied")
	ErrNoMembership       = errors.New("access: account has no group membership")
	ErrInvalidInput       = errors.New("access: invalid input")
	ErrConflict           = errors.New("access: resource conflict")
)

func isNotFound(err error) bool { return errors.Is(err, ErrNotFound) }
