package domain

import (
	"errors"
	"fmt"
)

// Error kinds returned by stores and services. Match them with errors.Is.
var (
	// ErrDeletedReference reports access to a record that no longer exists.
	ErrDeletedReference = errors.New("deleted reference")
	// ErrUniqueConstraint reports a duplicate film name, login or seat.
	ErrUniqueConstraint = errors.New("unique constraint broken")
	// ErrSchedulingConflict reports a seance placement rejected by the schedule.
	ErrSchedulingConflict = errors.New("scheduling conflict")
	// ErrInvalid reports a value rejected by manipulation-level validation.
	ErrInvalid = errors.New("invalid value")
	// ErrNotFound reports a lookup by id or login that matched nothing.
	ErrNotFound = errors.New("not found")
)

// Error carries a human readable reason alongside an error kind.
type Error struct {
	Kind   error
	Entity EntityType
	ID     int
	Reason string
}

// NewError builds an Error with a formatted reason.
func NewError(kind error, entity EntityType, id int, format string, args ...any) *Error {
	return &Error{Kind: kind, Entity: entity, ID: id, Reason: fmt.Sprintf(format, args...)}
}

func (e *Error) Error() string {
	switch {
	case e.Entity != "" && e.ID > 0:
		return fmt.Sprintf("%s %d: %s", e.Entity, e.ID, e.Reason)
	case e.Entity != "":
		return fmt.Sprintf("%s: %s", e.Entity, e.Reason)
	default:
		return e.Reason
	}
}

func (e *Error) Unwrap() error { return e.Kind }

// DeletedReference reports that entity id is gone.
func DeletedReference(entity EntityType, id int) *Error {
	return NewError(ErrDeletedReference, entity, id, "record no longer exists")
}
