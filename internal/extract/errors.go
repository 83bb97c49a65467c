package extract

import (
	"errors"
	"fmt"
)

// ErrInvalidContentType indicates a content type outside xls, xlsx and csv.
var ErrInvalidContentType = errors.New("content type must be one of 'xls', 'xlsx', or 'csv'")

// ErrUnreadableInput indicates the input could not be parsed in its declared format.
var ErrUnreadableInput = errors.New("unreadable input")

// UnreadableError wraps the parser failure for an input that could not be read.
// errors.Is(err, ErrUnreadableInput) holds for every UnreadableError.
type UnreadableError struct {
	Format ContentType
	Err    error
}

func (e *UnreadableError) Error() string {
	return fmt.Sprintf("unreadable %s input: %v", e.Format, e.Err)
}

func (e *UnreadableError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrUnreadableInput.
func (e *UnreadableError) Is(target error) bool {
	return target == ErrUnreadableInput
}

func unreadable(format ContentType, err error) error {
	return &UnreadableError{Format: format, Err: err}
}
