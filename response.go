package fetch

import (
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
	"strings"
)

// Response captures a completed HTTP exchange. It is built once after
// the body has been read in full and is not modified afterwards.
//
// A response is returned for every status code the server produces;
// a 4xx or 5xx answer is data, not an error. Check Success or
// StatusCode to branch.
type Response struct {
	// StatusCode is the status code the server actually returned.
	StatusCode int

	// Headers holds the response headers, repeated names preserved.
	Headers http.Header

	// Body is the raw response body.
	Body []byte

	// JSON holds the parsed body when the response declares a JSON
	// media type and the body parses cleanly. Otherwise nil.
	JSON any

	// Success reports whether StatusCode is in the 2xx range.
	Success bool
}

func newResponse(resp *http.Response, body []byte) *Response {
	r := &Response{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header.Clone(),
		Body:       body,
		Success:    resp.StatusCode >= 200 && resp.StatusCode <= 299,
	}

	if isJSONMediaType(resp.Header.Get("Content-Type")) && len(body) > 0 {
		var parsed any
		if err := json.Unmarshal(body, &parsed); err == nil {
			r.JSON = parsed
		}
	}

	return r
}

// Decode unmarshals the response body into dest. dest must be a
// pointer. Failures wrap [ErrSerialization].
func (r *Response) Decode(dest any) error {
	if err := json.Unmarshal(r.Body, dest); err != nil {
		return fmt.Errorf("%w: decoding response body: %w", ErrSerialization, err)
	}

	return nil
}

// isJSONMediaType reports whether a Content-Type header names JSON,
// including +json structured syntax suffixes.
func isJSONMediaType(contentType string) bool {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}

	return mt == "application/json" || strings.HasSuffix(mt, "+json")
}
