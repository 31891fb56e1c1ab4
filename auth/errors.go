package auth

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthorized: no usable credential (unknown token, or no token
	// while a static secret is configured).
	ErrUnauthorized = errors.New("auth: invalid or missing credential")

	// ErrForbidden: the credential is real but access has been revoked,
	// either for the student or for the whole classroom.
	ErrForbidden = errors.New("auth: access revoked")
)

// RateLimitError reports an exhausted per-student quota. It carries the
// classroom's limit so the client can tell the student what it was.
type RateLimitError struct {
	Limit int
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("auth: request limit of %d reached", e.Limit)
}
