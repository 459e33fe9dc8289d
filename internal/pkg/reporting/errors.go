package reporting

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound means the operation targeted a report id that does not exist.
	ErrNotFound = errors.New("report not found")
	// ErrInvalidTransition means the requested status change is not in the
	// lifecycle's transition table.
	ErrInvalidTransition = errors.New("status transition not allowed")
)

// ValidationError carries the submission fields that failed validation. No
// record is created when it is returned.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid submission: %s", strings.Join(e.Fields, ", "))
}

// IsValidationError reports whether err is (or wraps) a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
