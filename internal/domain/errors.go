package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for the registry boundary. Callers branch with
// errors.Is; the wrapped text carries the specifics.
var (
	ErrValidation = errors.New("invalid target spec")
	ErrNotFound   = errors.New("target not found")
)

func ValidationErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrValidation}, args...)...)
}

func NotFoundError(id TargetID) error {
	return fmt.Errorf("%w: %s", ErrNotFound, id)
}
