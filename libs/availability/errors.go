package availability

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidRange    = errors.New("range start is after end")
	ErrInvalidInterval = errors.New("invalid session interval")
)

// ParseError reports a date/time literal that does not match DateTimeLayout.
type ParseError struct {
	Value string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %q: %v", e.Value, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// InvalidRangeError reports a range whose start is after its end.
type InvalidRangeError struct {
	Start time.Time
	End   time.Time
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("%v: %s > %s", ErrInvalidRange, e.Start.Format(DateTimeLayout), e.End.Format(DateTimeLayout))
}

func (e *InvalidRangeError) Is(target error) bool {
	return target == ErrInvalidRange
}
