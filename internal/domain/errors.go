package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is matched by every NotFoundError through errors.Is.
var ErrNotFound = errors.New("not found")

// ValidationError reports malformed or inconsistent input. It is raised
// before any store access and is never retried.
type ValidationError struct {
	Field   string
	Message string
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation failed: " + e.Message
	}
	return fmt.Sprintf("validation failed: %s %s", e.Field, e.Message)
}

// ConflictError carries the reservations that overlap a candidate range.
type ConflictError struct {
	VehicleID string
	Conflicts []Reservation
}

func (e *ConflictError) Error() string {
	ids := make([]string, 0, len(e.Conflicts))
	for _, c := range e.Conflicts {
		ids = append(ids, c.ID)
	}
	return fmt.Sprintf("vehicle %s is not available for the selected dates (conflicts: %s)", e.VehicleID, strings.Join(ids, ", "))
}

// InUseError reports a vehicle change refused because reservations still
// reference the vehicle.
type InUseError struct {
	VehicleID      string
	ReservationIDs []string
}

func (e *InUseError) Error() string {
	return fmt.Sprintf("vehicle %s is referenced by reservations: %s", e.VehicleID, strings.Join(e.ReservationIDs, ", "))
}

type NotFoundError struct {
	Entity string
	ID     string
}

func NewNotFoundError(entity, id string) *NotFoundError {
	return &NotFoundError{Entity: entity, ID: id}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// IsValidation reports whether err wraps a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// AsConflict returns the ConflictError wrapped by err, if any.
func AsConflict(err error) (*ConflictError, bool) {
	var ce *ConflictError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

// AsInUse returns the InUseError wrapped by err, if any.
func AsInUse(err error) (*InUseError, bool) {
	var ie *InUseError
	if errors.As(err, &ie) {
		return ie, true
	}
	return nil, false
}
