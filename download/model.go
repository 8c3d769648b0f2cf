package download

import (
	"errors"
	"fmt"
)

var (
	// ErrUnexpectedStatus is the sentinel wrapped by [StatusError].
	ErrUnexpectedStatus = errors.New("unexpected response status")

	// ErrAlreadyExists indicates the destination file exists and neither
	// overwrite nor skip-existing was requested.
	ErrAlreadyExists = errors.New("destination already exists")

	// ErrLengthMismatch indicates the byte count did not match the
	// server's Content-Length.
	ErrLengthMismatch = errors.New("content length mismatch")

	// ErrChecksumMismatch indicates the downloaded bytes did not hash to
	// the expected checksum.
	ErrChecksumMismatch = errors.New("checksum mismatch")

	// ErrCancelled indicates the download was cancelled via context.
	ErrCancelled = errors.New("download cancelled")

	// ErrQueueShutdown indicates the download queue was shut down before
	// the work started.
	ErrQueueShutdown = errors.New("download queue shut down")
)

// Error attaches human-readable detail to one of the package
// sentinels.
type Error struct {
	Err    error
	Detail string
}

func (e *Error) Error() string {
	return e.Err.Error() + ": " + e.Detail
}

func (e *Error) Unwrap() error { return e.Err }

// StatusError reports a download request answered with a non-success
// status code. Body carries a capped prefix of the response body for
// diagnostics.
type StatusError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: got %d with body %q", e.Err, e.StatusCode, e.Body)
}

func (e *StatusError) Unwrap() error { return e.Err }
