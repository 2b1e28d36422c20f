package person

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrStorage wraps every failure originating in the storage engine.
	ErrStorage = errors.New("person: storage fault")

	// ErrValidation is matched by every *ValidationError.
	ErrValidation = errors.New("person: validation failed")

	// ErrNameRequired is returned when the full name is empty after trimming.
	ErrNameRequired = errors.New("full name is required")
)

// ValidationError carries the per-field messages that blocked a write.
type ValidationError struct {
	Fields FieldErrors
}

// Error lists the failing fields in a stable order.
func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+": "+e.Fields[name])
	}
	return ErrValidation.Error() + ": " + strings.Join(parts, "; ")
}

// Is reports whether target is ErrValidation.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// wrapStorage attaches ErrStorage and the failing operation to err.
func wrapStorage(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStorage, op, err)
}
