package core

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is wrapped by every lookup that misses a PR, project, handover,
// supplier, inventory item or spares request.
var ErrNotFound = errors.New("not found")

// ValidationError collects every missing or malformed field of a command.
// Nothing is applied when it is returned.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Problems, "; ")
}

// add records a problem; used while checking a command.
func (e *ValidationError) add(format string, args ...any) {
	e.Problems = append(e.Problems, fmt.Sprintf(format, args...))
}

// orNil returns e when problems were recorded, nil otherwise.
func (e *ValidationError) orNil() error {
	if len(e.Problems) == 0 {
		return nil
	}
	return e
}

// PreconditionError reports an action attempted outside its legal state.
type PreconditionError struct {
	Entity string
	ID     int
	Action string
	Status string
	Reason string
}

func (e *PreconditionError) Error() string {
	msg := fmt.Sprintf("%s %d cannot %s: status is %s", e.Entity, e.ID, e.Action, e.Status)
	if e.Reason != "" {
		msg += " (" + e.Reason + ")"
	}
	return msg
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsPrecondition reports whether err is (or wraps) a PreconditionError.
func IsPrecondition(err error) bool {
	var pe *PreconditionError
	return errors.As(err, &pe)
}

func notFound(entity string, id any) error {
	return fmt.Errorf("%s %v: %w", entity, id, ErrNotFound)
}
