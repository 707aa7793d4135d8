package domain

import "errors"

// ErrNotFound signals that an owner-scoped lookup matched nothing. The
// condition is a normal negative result, not a system failure; callers
// match it with errors.Is.
var ErrNotFound = errors.New("not found")

// ValidationError reports malformed caller input. It is surfaced
// synchronously and never retried.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}
