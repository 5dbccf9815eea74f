package domain

import (
	"errors"
	"fmt"
)

var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
	ErrForbidden  = errors.New("access forbidden")

	ErrUserNotFound   = fmt.Errorf("user %w", ErrNotFound)
	ErrTargetNotFound = fmt.Errorf("caregiver or hospital %w", ErrNotFound)
	ErrVitalsNotFound = fmt.Errorf("health data %w", ErrNotFound)
	ErrBmiNotFound    = fmt.Errorf("bmi data %w", ErrNotFound)

	ErrDuplicateRequest = errors.New("request already sent")
	ErrAlreadyLinked    = fmt.Errorf("patient already linked: %w", ErrDuplicateRequest)

	ErrNoActiveSimulation = errors.New("no simulation running")

	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Invalid wraps ErrValidation with a field-level message.
func Invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// SimulationError reports a simulation run that could not be persisted.
type SimulationError struct {
	UserID string
	Err    error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("simulation for user %s: %v", e.UserID, e.Err)
}

func (e *SimulationError) Unwrap() error {
	return e.Err
}
