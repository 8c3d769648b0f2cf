package download

import (
	"mime"
	"net/http"
	"net/url"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Filename derives a destination file name for rawURL from the response
// headers. Preference order: the Content-Disposition filename, the last
// URL path segment, then a deterministic name hashed from the URL so
// repeated downloads of the same resource resolve to the same file.
func Filename(header http.Header, rawURL string) string {
	if cd := header.Get("Content-Disposition"); cd != "" {
		if _, params, err := mime.ParseMediaType(cd); err == nil {
			if name := sanitizeName(params["filename"]); name != "" {
				return name
			}
		}
	}

	if u, err := url.Parse(rawURL); err == nil {
		if name := sanitizeName(path.Base(u.Path)); name != "" {
			return name
		}
	}

	return "download-" + uuid.NewSHA1(uuid.NameSpaceURL, []byte(rawURL)).String()
}

// sanitizeName reduces a candidate to a bare file name, rejecting
// anything that would escape the destination directory.
func sanitizeName(name string) string {
	name = filepath.Base(name)
	switch name {
	case "", ".", "..", "/", `\`:
		return ""
	}

	return name
}

// BareName reports whether name is usable verbatim as a destination
// file name: not empty, not a directory reference, and free of path
// separators. [Options.FileName] is validated against it.
func BareName(name string) bool {
	switch name {
	case "", ".", "..":
		return false
	}

	return !strings.ContainsAny(name, `/\`)
}

