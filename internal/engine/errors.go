package engine

import (
	"errors"
	"fmt"
)

// Failure taxonomy. A frame without a face is not a failure and never
// appears here; it only lowers the face detection rate.
var (
	// ErrAnalysisTimeout aborts a run whose deadline expired. Partial
	// results are discarded.
	ErrAnalysisTimeout = errors.New("analysis timed out")

	// ErrUpstreamUnavailable means the eye detector backend is down or
	// unreachable, as opposed to merely returning no usable signal.
	ErrUpstreamUnavailable = errors.New("eye detector unavailable")
)

// DecodeError marks input that could not be read as video or image data.
// It maps to a client error, not a server fault.
type DecodeError struct {
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("decode: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("decode: %s", e.Reason)
}

func (e *DecodeError) Unwrap() error { return e.Err }

func NewDecodeError(reason string) *DecodeError {
	return &DecodeError{Reason: reason}
}

func IsDecodeError(err error) bool {
	var de *DecodeError
	return errors.As(err, &de)
}
