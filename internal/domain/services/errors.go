package services

import (
	"errors"
	"fmt"

	"github.com/buildtrack/buildtrack/internal/domain/repositories"
)

// Error taxonomy shared by every service. Handlers map these to HTTP statuses.
var (
	ErrNotFound          = errors.New("not found")
	ErrForbidden         = errors.New("access denied")
	ErrValidation        = errors.New("validation failed")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrUpstream          = errors.New("upstream service failure")
	ErrConflict          = errors.New("conflict")
	ErrInvalidTransition = errors.New("invalid status transition")
)

// validationError wraps ErrValidation with a field-level message.
func validationError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// translate converts repository lookup failures into ErrNotFound and leaves other errors wrapped.
func translate(err error, op string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, repositories.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}
