// Package download turns HTTP response bodies into files on disk with
// collision control, progress reporting, checksum verification, and
// batched async execution.
//
// # Streaming to Disk
//
// [Handle] writes a response body to a temporary file alongside the
// destination path and atomically renames it on success. A failed or
// cancelled transfer removes the temporary file, so the destination is
// only ever fully absent or fully written:
//
//	err := download.Handle(ctx, resp.Body, resp.ContentLength, destPath, logger,
//		download.WithProgress(sink),
//		download.WithChecksum(sha256.New(), expectedHex),
//	)
//
// # Destination Control
//
// [Options] carries the collision policy: Overwrite replaces an existing
// file, SkipExisting keeps it, and with neither set an existing file
// fails with [ErrAlreadyExists] before any byte is transferred.
// [Filename] derives a destination name from the response when the
// caller did not pick one.
//
// # Progress
//
// A [Sink] receives the running byte count after every written chunk.
// [NewLogSink] adapts a slog logger into a once-per-second progress log.
//
// Most callers should use the root fetch package, which drives the
// request itself and invokes this package for everything after the
// response arrives.
package download
