package download

import (
	"net/http"
	"strings"
	"testing"
)

func TestFilename(t *testing.T) {
	tests := []struct {
		name        string
		disposition string
		url         string
		want        string
	}{
		{
			name:        "content disposition wins",
			disposition: `attachment; filename="report.pdf"`,
			url:         "https://example.com/files/data.tar.gz",
			want:        "report.pdf",
		},
		{
			name:        "disposition path stripped to base",
			disposition: `attachment; filename="../../evil.sh"`,
			url:         "https://example.com/files/data.tar.gz",
			want:        "evil.sh",
		},
		{
			name:        "unusable disposition falls back to url",
			disposition: `attachment; filename=".."`,
			url:         "https://example.com/files/data.tar.gz",
			want:        "data.tar.gz",
		},
		{
			name:        "malformed disposition falls back to url",
			disposition: `attachment; filename=`,
			url:         "https://example.com/files/data.tar.gz",
			want:        "data.tar.gz",
		},
		{
			name: "last url segment",
			url:  "https://example.com/release/v2/fetch-linux-amd64",
			want: "fetch-linux-amd64",
		},
		{
			name: "query string excluded",
			url:  "https://example.com/dl?id=3&token=abc",
			want: "dl",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			header := http.Header{}
			if tt.disposition != "" {
				header.Set("Content-Disposition", tt.disposition)
			}

			if got := Filename(header, tt.url); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestFilename_DeterministicFallback(t *testing.T) {
	const rawURL = "https://example.com/"

	first := Filename(http.Header{}, rawURL)
	second := Filename(http.Header{}, rawURL)

	if !strings.HasPrefix(first, "download-") {
		t.Errorf("expected download- prefix, got %q", first)
	}
	if first != second {
		t.Errorf("fallback name is not deterministic: %q vs %q", first, second)
	}

	other := Filename(http.Header{}, "https://example.org/")
	if other == first {
		t.Errorf("different URLs resolved to the same fallback %q", first)
	}
}

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "plain.txt", want: "plain.txt"},
		{in: "dir/nested.txt", want: "nested.txt"},
		{in: "", want: ""},
		{in: ".", want: ""},
		{in: "..", want: ""},
		{in: "/", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := sanitizeName(tt.in); got != tt.want {
				t.Errorf("sanitizeName(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestBareName(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{in: "plain.txt", want: true},
		{in: "file2.bin", want: true},
		{in: "0xF5C.bin", want: true},
		{in: "x.log", want: true},
		{in: "C.dat", want: true},
		{in: "50.bin", want: true},
		{in: "a/b.bin", want: false},
		{in: `a\b.bin`, want: false},
		{in: "/rooted.bin", want: false},
		{in: "", want: false},
		{in: ".", want: false},
		{in: "..", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := BareName(tt.in); got != tt.want {
				t.Errorf("BareName(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
