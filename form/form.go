package form

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// maxBufferedBytes is the total attached file size up to which the
// body is assembled in memory, giving the request a known
// Content-Length. Larger forms stream through a pipe so file contents
// are never fully resident.
const maxBufferedBytes = 1 << 20 // 1MB

var (
	// ErrConsumed is returned by [Data.Build] when the form body was
	// already produced once.
	ErrConsumed = errors.New("form data already consumed")
)

// field is a single form entry. Insertion order is the wire order.
type field struct {
	name  string
	value string

	isFile   bool
	file     *os.File
	fileName string
	size     int64
	mimeType string
}

// Data accumulates form fields for a multipart/form-data body.
// It is single-use and not safe for concurrent use; a Data belongs
// exclusively to the request that sends it.
type Data struct {
	fields   []field
	consumed bool
}

// New returns an empty form builder.
func New() *Data {
	return &Data{}
}

// Text appends a text field. Duplicate names are allowed.
func (d *Data) Text(name, value string) *Data {
	d.fields = append(d.fields, field{name: name, value: value})
	return d
}

// File appends a file field backed by path. The file is opened and its
// size and MIME type resolved immediately, so a bad path fails here
// rather than mid-request. On error the builder is unchanged.
func (d *Data) File(name, path string) (*Data, error) {
	f, err := os.Open(path)
	if err != nil {
		return d, fmt.Errorf("opening form file: %w", err)
	}

	fi, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return d, fmt.Errorf("resolving form file: %w", err)
	}
	if fi.IsDir() {
		_ = f.Close()
		return d, fmt.Errorf("form file %s is a directory", path)
	}

	d.fields = append(d.fields, field{
		name:     name,
		isFile:   true,
		file:     f,
		fileName: filepath.Base(path),
		size:     fi.Size(),
		mimeType: detectMIME(path),
	})

	return d, nil
}

// Build produces the multipart body, its Content-Type (including the
// boundary), and the body length. The length is -1 when the form streams
// through a pipe and the total cannot be known up front. Build consumes
// the Data; a second call fails with [ErrConsumed].
func (d *Data) Build() (io.ReadCloser, string, int64, error) {
	if d.consumed {
		return nil, "", 0, ErrConsumed
	}
	d.consumed = true

	var fileBytes int64
	for _, f := range d.fields {
		if f.isFile {
			fileBytes += f.size
		}
	}

	if fileBytes <= maxBufferedBytes {
		return d.buildBuffered()
	}

	return d.buildStreamed()
}

// Close releases any file handles still held by unsent file fields.
// It is only needed when a built-up Data is abandoned without sending.
func (d *Data) Close() error {
	var errs []error
	for _, f := range d.fields {
		if f.file == nil {
			continue
		}
		if err := f.file.Close(); err != nil && !errors.Is(err, os.ErrClosed) {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// buildBuffered assembles the whole body in memory.
func (d *Data) buildBuffered() (io.ReadCloser, string, int64, error) {
	var buf bytes.Buffer

	mw := multipart.NewWriter(&buf)
	if err := d.writeParts(mw); err != nil {
		return nil, "", 0, err
	}
	if err := mw.Close(); err != nil {
		return nil, "", 0, fmt.Errorf("finalizing form body: %w", err)
	}

	return io.NopCloser(bytes.NewReader(buf.Bytes())), mw.FormDataContentType(), int64(buf.Len()), nil
}

// buildStreamed writes the body through a pipe as the request reads it.
func (d *Data) buildStreamed() (io.ReadCloser, string, int64, error) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		err := d.writeParts(mw)
		if cerr := mw.Close(); err == nil {
			err = cerr
		}
		pw.CloseWithError(err)
	}()

	return pr, mw.FormDataContentType(), -1, nil
}

// writeParts emits every field in insertion order, closing file handles
// as they are drained.
func (d *Data) writeParts(mw *multipart.Writer) error {
	for i := range d.fields {
		f := &d.fields[i]

		if !f.isFile {
			if err := mw.WriteField(f.name, f.value); err != nil {
				return fmt.Errorf("writing form field %s: %w", f.name, err)
			}
			continue
		}

		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`,
			escapeQuotes(f.name), escapeQuotes(f.fileName)))
		h.Set("Content-Type", f.mimeType)

		part, err := mw.CreatePart(h)
		if err != nil {
			return fmt.Errorf("creating form part %s: %w", f.name, err)
		}
		if _, err := io.Copy(part, f.file); err != nil {
			return fmt.Errorf("copying form file %s: %w", f.fileName, err)
		}
		if err := f.file.Close(); err != nil {
			return fmt.Errorf("closing form file %s: %w", f.fileName, err)
		}
	}

	return nil
}

// detectMIME resolves a file's content type: extension table first,
// content sniffing second, octet-stream as the last resort.
func detectMIME(path string) string {
	if mt := mime.TypeByExtension(filepath.Ext(path)); mt != "" {
		return mt
	}

	if mt, err := mimetype.DetectFile(path); err == nil {
		return mt.String()
	}

	return "application/octet-stream"
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
