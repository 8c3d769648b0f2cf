package fetch

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/fetchlib/fetch/form"
	"github.com/fetchlib/fetch/throttle"
)

// ClientOption is a functional option for configuring a [Client] via [Build].
type ClientOption func(*clientOpts) error

type clientOpts struct {
	client            *http.Client
	rt                http.RoundTripper
	userAgent         string
	throttle          *throttle.Config
	timeout           *time.Duration
	noFollowRedirects bool
	logger            *slog.Logger
	tracer            trace.Tracer
}

// WithClient replaces the default [http.Client] used by the [Client].
// The provided client is copied, so the caller's instance keeps its
// own transport.
func WithClient(hc *http.Client) ClientOption {
	return func(c *clientOpts) error {
		if hc == nil {
			return errors.New("nil http client")
		}

		c.client = hc
		return nil
	}
}

// WithTransport sets a custom [http.RoundTripper] as the base transport.
func WithTransport(rt http.RoundTripper) ClientOption {
	return func(c *clientOpts) error {
		if rt == nil {
			return errors.New("nil transport")
		}

		c.rt = rt
		return nil
	}
}

// WithTimeout replaces [DefaultTimeout] as the per-request deadline
// applied when [Options.Timeout] is zero.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *clientOpts) error {
		if d <= 0 {
			return errors.New("timeout must be greater than zero")
		}

		c.timeout = &d
		return nil
	}
}

// WithUserAgent adds a persistent User-Agent header to all outgoing requests.
func WithUserAgent(ua string) ClientOption {
	return func(c *clientOpts) error {
		c.userAgent = ua
		return nil
	}
}

// WithThrottle enables token-bucket rate limiting with the given requests per second and burst capacity.
func WithThrottle(rps, burst int) ClientOption {
	return func(c *clientOpts) error {
		if rps <= 0 || burst <= 0 {
			return fmt.Errorf("rps %d, burst %d: %w", rps, burst, throttle.ErrMustNotBeZero)
		}

		c.throttle = &throttle.Config{RPS: rps, Burst: burst}
		return nil
	}
}

// WithNoFollowRedirects prevents the [Client] from following HTTP redirects.
func WithNoFollowRedirects() ClientOption {
	return func(c *clientOpts) error {
		c.noFollowRedirects = true
		return nil
	}
}

// WithLogger injects a custom [slog.Logger] into the [Client].
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *clientOpts) error {
		c.logger = logger
		return nil
	}
}

// WithTracer records a span for every Send and Download using the
// given tracer. Without it the client uses a noop tracer.
func WithTracer(tracer trace.Tracer) ClientOption {
	return func(c *clientOpts) error {
		if tracer == nil {
			return errors.New("nil tracer")
		}

		c.tracer = tracer
		return nil
	}
}

// uaTransport stamps a fixed User-Agent on every request before
// handing it to the wrapped transport.
type uaTransport struct {
	header string
	next   http.RoundTripper
}

func (ua uaTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	clone := r.Clone(r.Context())
	clone.Header.Set("User-Agent", ua.header)
	return ua.next.RoundTrip(clone)
}

// Options describes a single request for [Client.Send].
type Options struct {
	// URL is the absolute http(s) address to call.
	URL string `json:"url"`

	// Method is the HTTP method, case-insensitive. Empty means GET.
	// Anything outside GET, POST, PUT, PATCH, DELETE, HEAD, OPTIONS
	// fails with [ErrInvalidMethod].
	Method string `json:"method"`

	// Headers are set on the outgoing request after the engine's own
	// defaults, so a caller-provided Content-Type wins.
	Headers map[string]string `json:"headers"`

	// Body is the request payload. A [url.Values] body is sent
	// urlencoded; anything else is JSON-encoded with Content-Type
	// application/json. Ignored when Form is set.
	Body any `json:"-"`

	// Form is a multipart form built with [form.New]. Takes precedence
	// over Body.
	Form *form.Data `json:"-"`

	// Timeout bounds this request, connect through body read.
	// Zero means the client default.
	Timeout time.Duration `json:"timeout" validate:"min=0"`
}

// methods is the closed set of accepted request methods.
var methods = []string{
	http.MethodGet,
	http.MethodPost,
	http.MethodPut,
	http.MethodPatch,
	http.MethodDelete,
	http.MethodHead,
	http.MethodOptions,
}

// parseMethod resolves a method name against the accepted set.
// An empty method means GET.
func parseMethod(method string) (string, error) {
	if method == "" {
		return http.MethodGet, nil
	}

	for _, m := range methods {
		if strings.EqualFold(method, m) {
			return m, nil
		}
	}

	return "", fmt.Errorf("%w: %q", ErrInvalidMethod, method)
}

// parseURL enforces an absolute http(s) URL before any network I/O.
func parseURL(rawURL string) (*url.URL, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidURL, err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: scheme must be http or https, got %q", ErrInvalidURL, u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("%w: missing host", ErrInvalidURL)
	}

	return u, nil
}
