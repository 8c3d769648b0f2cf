package fetch

import "errors"

// maxErrBodySize caps the amount of response body read when
// building an error for an unexpected download status. This prevents
// unbounded memory usage when a large response arrives with a
// wrong status.
const maxErrBodySize = 4 << 10 // 4KB

var (
	// ErrInvalidURL indicates the request URL is missing, relative, or
	// not http(s). Returned before any network I/O.
	ErrInvalidURL = errors.New("invalid url")

	// ErrInvalidMethod indicates the request method is outside the
	// supported set. Returned before any network I/O.
	ErrInvalidMethod = errors.New("invalid http method")

	// ErrTimeout indicates the effective deadline expired before the
	// exchange completed. Wraps [context.DeadlineExceeded].
	ErrTimeout = errors.New("request timed out")

	// ErrConnectionFailed indicates the request never produced a
	// response: DNS failure, refused connection, broken transport.
	ErrConnectionFailed = errors.New("connection failed")

	// ErrSerialization indicates a body could not be JSON-encoded on
	// the way out, or decoded via [Response.Decode] on the way back.
	ErrSerialization = errors.New("serialization failed")
)
