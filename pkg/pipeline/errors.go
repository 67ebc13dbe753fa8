package pipeline

import (
	"context"
	"errors"
	"fmt"
)

// Error taxonomy. All errors are terminal for the job that raised them.
var (
	// ErrSourceUnreadable is returned when the container cannot be read or parsed.
	ErrSourceUnreadable = errors.New("source unreadable")
	// ErrUnsupportedFormat is returned when no decoder exists for the container/codec pair.
	ErrUnsupportedFormat = errors.New("unsupported format")
	// ErrUnsupportedOutputFormat is returned when no encoder exists for the requested output.
	ErrUnsupportedOutputFormat = errors.New("unsupported output format")
	// ErrInvalidCropBounds is returned when a crop box exceeds the source or a scale collapses it.
	ErrInvalidCropBounds = errors.New("invalid crop bounds")
	// ErrInvalidTimeRange is returned for an empty, inverted or out-of-range trim.
	ErrInvalidTimeRange = errors.New("invalid time range")
	// ErrSeekOutOfRange is returned when a sample timestamp lies outside the source.
	ErrSeekOutOfRange = errors.New("seek out of range")
	// ErrEncodeFailure wraps any downstream codec error.
	ErrEncodeFailure = errors.New("encode failure")
	// ErrCancelled is returned when a job is cancelled before completion.
	ErrCancelled = errors.New("cancelled")

	// ErrInvalidSpeed is returned for a non-positive playback speed.
	ErrInvalidSpeed = errors.New("invalid playback speed")
	// ErrInvalidColorMatrix is returned for a color matrix that is not 4x4 or 4x5.
	ErrInvalidColorMatrix = errors.New("invalid color matrix")
	// ErrInvalidRequest is returned for structurally invalid job descriptions.
	ErrInvalidRequest = errors.New("invalid request")
)

var kinds = []error{
	ErrSourceUnreadable,
	ErrUnsupportedFormat,
	ErrUnsupportedOutputFormat,
	ErrInvalidCropBounds,
	ErrInvalidTimeRange,
	ErrSeekOutOfRange,
	ErrEncodeFailure,
	ErrCancelled,
	ErrInvalidSpeed,
	ErrInvalidColorMatrix,
	ErrInvalidRequest,
}

var callerErrors = []error{
	ErrInvalidCropBounds,
	ErrInvalidTimeRange,
	ErrSeekOutOfRange,
	ErrUnsupportedOutputFormat,
	ErrInvalidSpeed,
	ErrInvalidColorMatrix,
	ErrInvalidRequest,
}

// IsCallerError reports whether err stems from a bad job description rather
// than from the environment (codec, platform, I/O).
func IsCallerError(err error) bool {
	for _, target := range callerErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// Cancelled converts a context error into ErrCancelled, keeping the cause.
func Cancelled(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrCancelled) {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", ErrCancelled, err)
	}
	return err
}

// Kind returns the taxonomy sentinel err matches, or nil.
func Kind(err error) error {
	for _, k := range kinds {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}

// Classify gives err a taxonomy kind. Context errors become ErrCancelled,
// errors that already carry a kind are returned as is, and anything else is
// wrapped in kind with msg as context.
func Classify(err, kind error, msg string) error {
	if err == nil {
		return nil
	}
	if c := Cancelled(err); errors.Is(c, ErrCancelled) {
		return c
	}
	if Kind(err) != nil {
		return fmt.Errorf("%s: %w", msg, err)
	}
	return fmt.Errorf("%w: %s: %v", kind, msg, err)
}
