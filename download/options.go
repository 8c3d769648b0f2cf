package download

import (
	"errors"
	"fmt"
	"hash"
	"time"
)

// Options identifies what to fetch and where to place it.
type Options struct {
	// URL is the absolute http(s) address of the file.
	URL string `json:"url"`

	// FileName names the destination file. When empty the name is
	// derived from the response: Content-Disposition first, then the
	// last URL path segment, then a deterministic fallback. It must be
	// a bare name without path separators.
	FileName string `json:"file_name" validate:"omitempty,barename"`

	// OutputDir is the destination directory, which must already
	// exist. Empty means the current directory.
	OutputDir string `json:"output_dir"`

	// Overwrite replaces an existing destination file. When false an
	// existing file fails with [ErrAlreadyExists] before any byte is
	// transferred.
	Overwrite bool `json:"overwrite"`

	// SkipExisting keeps an existing destination file untouched and
	// reports it as the result without contacting the server.
	// Mutually exclusive with Overwrite.
	SkipExisting bool `json:"skip_existing" validate:"excluded_with=Overwrite"`

	// Timeout bounds the whole download, connect through rename.
	// Zero means the client's default.
	Timeout time.Duration `json:"timeout" validate:"min=0"`
}

// Option defines optional engine settings for a single download.
type Option func(*options) error

type options struct {
	sink     Sink
	checksum *digest
	queue    *Queue
}

// parse applies optFns over the defaults. The noop sink keeps the write
// path free of nil checks.
func parse(optFns []Option) (options, error) {
	opts := options{sink: nopSink{}}
	for _, opt := range optFns {
		if err := opt(&opts); err != nil {
			return options{}, fmt.Errorf("applying download option: %w", err)
		}
	}

	return opts, nil
}

// WithProgress streams the running byte count into sink after every
// written chunk.
func WithProgress(sink Sink) Option {
	return func(opts *options) error {
		if sink == nil {
			return errors.New("progress sink must not be nil")
		}

		opts.sink = sink
		return nil
	}
}

// WithChecksum verifies the downloaded bytes against an expected
// checksum before the file is moved into place. h is a [hash.Hash]
// instance (e.g. sha256.New()) and expected is the hex-encoded sum.
func WithChecksum(h hash.Hash, expected string) Option {
	return func(opts *options) error {
		if h == nil {
			return errors.New("hash must not be nil")
		}
		if expected == "" {
			return errors.New("expected checksum must not be empty")
		}

		opts.checksum = newDigest(h, expected)
		return nil
	}
}

// WithBatch runs the download on a fresh queue allowing maxConcurrent
// simultaneous downloads; further downloads join the batch via
// [Result.Add]. If maxConcurrent <= 0, concurrency is unlimited.
func WithBatch(maxConcurrent int) Option {
	return func(opts *options) error {
		if opts.queue != nil {
			return errors.New("batch already configured")
		}

		opts.queue = NewQueue(maxConcurrent)
		return nil
	}
}

// withQueue pins the download to an existing queue. [Result.Add] uses
// it to keep a batch together, which is why WithBatch cannot be
// combined with Add.
func withQueue(q *Queue) Option {
	return func(opts *options) error {
		opts.queue = q
		return nil
	}
}
