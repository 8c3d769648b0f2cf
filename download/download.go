package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
)

// CheckDest inspects the destination before any byte is transferred.
// skip reports that an existing file should be kept as the result.
// A pre-existing file with neither overwrite nor skip-existing set
// fails with [ErrAlreadyExists].
func CheckDest(destPath string, overwrite, skipExisting bool) (skip bool, err error) {
	if _, err := os.Stat(destPath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}

		return false, fmt.Errorf("checking destination: %w", err)
	}

	switch {
	case skipExisting:
		return true, nil
	case overwrite:
		return false, nil
	default:
		return false, &Error{Err: ErrAlreadyExists, Detail: destPath}
	}
}

// Handle streams body into a temporary file in destPath's directory and
// renames it into place once the transfer fully succeeds. On any
// failure the temporary file is removed, so destPath is either absent
// or complete, never partial.
func Handle(ctx context.Context, body io.Reader, contentLength int64, destPath string, logger *slog.Logger, optFns ...Option) error {
	opts, err := parse(optFns)
	if err != nil {
		return err
	}

	body = &contextReader{ctx: ctx, r: body}

	file, err := os.CreateTemp(filepath.Dir(destPath), ".fetch-dl-*")
	if err != nil {
		return fmt.Errorf("staging temp file: %w", err)
	}

	var committed bool
	defer func() {
		if cerr := file.Close(); cerr != nil && !errors.Is(cerr, os.ErrClosed) {
			logger.Error("closing temp file", "error", cerr)
		}
		if committed {
			return
		}
		if rerr := os.Remove(file.Name()); rerr != nil {
			logger.Error("removing temp file", "error", rerr)
		}
	}()

	var writer io.Writer = file
	if opts.checksum != nil {
		writer = io.MultiWriter(writer, opts.checksum)
	}
	writer = &progressWriter{w: writer, sink: opts.sink, total: contentLength}

	n, err := io.Copy(writer, body)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return fmt.Errorf("%w: %w", ErrCancelled, err)
		}

		return fmt.Errorf("copying response body: %w", err)
	}

	if contentLength >= 0 && n != contentLength {
		return &Error{
			Err:    ErrLengthMismatch,
			Detail: fmt.Sprintf("want %d bytes, wrote %d", contentLength, n),
		}
	}

	if err := opts.checksum.Verify(); err != nil {
		return err
	}

	// Commit: flush, close, then swap into place.
	if err := file.Sync(); err != nil {
		return fmt.Errorf("flushing temp file: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(file.Name(), destPath); err != nil {
		return fmt.Errorf("renaming into place: %w", err)
	}

	committed = true

	return nil
}

// contextReader stops a copy between chunks once ctx ends, so
// cancellation does not have to wait on a stalled read.
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (cr *contextReader) Read(p []byte) (int, error) {
	if err := cr.ctx.Err(); err != nil {
		return 0, err
	}

	return cr.r.Read(p)
}
