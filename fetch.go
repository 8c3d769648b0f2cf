package fetch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/fetchlib/fetch/download"
	"github.com/fetchlib/fetch/throttle"
)

// DefaultTimeout bounds each request when neither the client nor the
// individual call provides its own timeout.
const DefaultTimeout = 30 * time.Second

// Client executes HTTP requests and streaming downloads on top of the
// std-lib *http.Client. It sets a default *http.Client and
// *http.Transport, which can be customized via optional funcs.
type Client struct {
	hc      *http.Client
	logger  *slog.Logger
	tracer  trace.Tracer
	timeout time.Duration
}

// Build assembles a [Client] from the given options.
func Build(optFns ...ClientOption) (*Client, error) {
	client := &Client{
		hc:      &http.Client{},
		logger:  slog.Default(),
		tracer:  noop.NewTracerProvider().Tracer("no-op tracer"),
		timeout: DefaultTimeout,
	}

	var opts clientOpts
	for _, opt := range optFns {
		if err := opt(&opts); err != nil {
			return nil, fmt.Errorf("applying client option: %w", err)
		}
	}

	if opts.client != nil {
		hc := *opts.client
		client.hc = &hc
	}

	if opts.logger != nil {
		client.logger = opts.logger
	}

	if opts.tracer != nil {
		client.tracer = opts.tracer
	}

	if opts.timeout != nil {
		client.timeout = *opts.timeout
	}

	if opts.noFollowRedirects {
		client.hc.CheckRedirect = func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}

	// Base transport: explicit option first, then the injected
	// client's, else the package default.
	var transport http.RoundTripper
	switch {
	case opts.rt != nil:
		transport = opts.rt
	case opts.client != nil && opts.client.Transport != nil:
		transport = opts.client.Transport
	default:
		transport = http.DefaultTransport
	}
	if opts.userAgent != "" {
		transport = uaTransport{header: opts.userAgent, next: transport}
	}
	if opts.throttle != nil {
		rt, err := throttle.NewRoundTripper(opts.throttle.RPS, opts.throttle.Burst,
			func() *slog.Logger { return client.logger }, transport)
		if err != nil {
			return nil, fmt.Errorf("configuring throttle: %w", err)
		}
		transport = rt
	}
	client.hc.Transport = transport

	return client, nil
}

// Send executes a single HTTP request and reads the response in full.
// The returned [Response] carries whatever status the server produced;
// only a failure to complete the exchange is an error. Exactly one
// attempt is made, no retries.
func (c *Client) Send(ctx context.Context, opts Options) (*Response, error) {
	ctx, span := c.tracer.Start(ctx, "fetch.send")
	defer span.End()

	u, err := parseURL(opts.URL)
	if err != nil {
		return nil, err
	}

	method, err := parseMethod(opts.Method)
	if err != nil {
		return nil, err
	}

	if err := Validate(opts); err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.String("method", method), attribute.String("url", u.String()))

	timeout := c.timeout
	if opts.Timeout > 0 {
		timeout = opts.Timeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	body, contentType, formLength, err := buildBody(opts)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		if closer, ok := body.(io.Closer); ok {
			closer.Close()
		}
		return nil, fmt.Errorf("instantiating request: %w", err)
	}
	if opts.Form != nil {
		req.ContentLength = formLength
	}

	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))
	for k, v := range opts.Headers {
		req.Header.Set(k, v)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, wrapSendErr(err)
	}

	discardBody := true
	defer func() {
		if discardBody {
			if _, err := io.Copy(io.Discard, resp.Body); err != nil {
				c.logger.Error("failed to discard unused body", "error", err)
			}
		}
		if err := resp.Body.Close(); err != nil {
			c.logger.Error("failed to close response body", "error", err)
		}
	}()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %w", ErrTimeout, err)
		}
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	discardBody = false

	span.SetAttributes(attribute.Int("status", resp.StatusCode))

	return newResponse(resp, raw), nil
}

// Download streams the resource at opts.URL to disk and returns the
// final destination path. The destination is fully written or fully
// absent, never partial; see the download package for the destination
// rules and engine options.
func (c *Client) Download(ctx context.Context, opts download.Options, optFns ...download.Option) (string, error) {
	return c.download(ctx, opts, optFns...)
}

// DownloadAsync starts the download in a queue-managed goroutine and
// returns immediately. Options are validated synchronously so malformed
// input surfaces on the spot; everything after that is reported through
// the returned [download.Result]. Combine with [download.WithBatch] and
// [download.Result.Add] to run several downloads as one batch.
func (c *Client) DownloadAsync(ctx context.Context, opts download.Options, optFns ...download.Option) (*download.Result, error) {
	if _, err := parseURL(opts.URL); err != nil {
		return nil, err
	}
	if err := Validate(opts); err != nil {
		return nil, err
	}

	fn := func(ctx context.Context) (string, error) {
		return c.download(ctx, opts, optFns...)
	}

	return download.Run(ctx, fn, c.DownloadAsync, optFns...)
}

func (c *Client) download(ctx context.Context, opts download.Options, optFns ...download.Option) (string, error) {
	ctx, span := c.tracer.Start(ctx, "fetch.download")
	defer span.End()

	u, err := parseURL(opts.URL)
	if err != nil {
		return "", err
	}

	if err := Validate(opts); err != nil {
		return "", err
	}

	span.SetAttributes(attribute.String("url", u.String()))

	outputDir := opts.OutputDir
	if outputDir == "" {
		outputDir = "."
	}

	// An explicit name makes the destination checkable before any
	// network I/O.
	var destPath string
	if opts.FileName != "" {
		destPath = filepath.Join(outputDir, opts.FileName)
		skip, err := download.CheckDest(destPath, opts.Overwrite, opts.SkipExisting)
		if err != nil {
			return "", err
		}
		if skip {
			return destPath, nil
		}
	}

	timeout := c.timeout
	if opts.Timeout > 0 {
		timeout = opts.Timeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", fmt.Errorf("instantiating request: %w", err)
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.hc.Do(req)
	if err != nil {
		return "", wrapDownloadErr(err)
	}

	discardBody := true
	defer func() {
		if discardBody {
			if _, err := io.Copy(io.Discard, resp.Body); err != nil {
				c.logger.Error("failed to discard unused body", "error", err)
			}
		}
		if err := resp.Body.Close(); err != nil {
			c.logger.Error("failed to close response body", "error", err)
		}
	}()

	span.SetAttributes(attribute.Int("status", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, err := io.ReadAll(io.LimitReader(resp.Body, maxErrBodySize))
		if err != nil {
			b = []byte("unable to read body")
		}

		return "", &download.StatusError{
			StatusCode: resp.StatusCode,
			Body:       string(b),
			Err:        download.ErrUnexpectedStatus,
		}
	}

	// A derived name needs the response headers; the collision check
	// still happens before any byte is written.
	if destPath == "" {
		destPath = filepath.Join(outputDir, download.Filename(resp.Header, opts.URL))
		skip, err := download.CheckDest(destPath, opts.Overwrite, opts.SkipExisting)
		if err != nil {
			return "", err
		}
		if skip {
			return destPath, nil
		}
	}

	if err := download.Handle(ctx, resp.Body, resp.ContentLength, destPath, c.logger, optFns...); err != nil {
		discardBody = false
		if errors.Is(err, context.DeadlineExceeded) {
			return "", fmt.Errorf("%w: %w", ErrTimeout, err)
		}
		return "", err
	}
	discardBody = false

	return destPath, nil
}

// buildBody renders Options into a request body. Form beats Body; a
// url.Values Body goes out urlencoded; any other non-nil Body is
// JSON-encoded. formLength is meaningful only on the multipart path,
// -1 when the form streams.
func buildBody(opts Options) (body io.Reader, contentType string, formLength int64, err error) {
	switch {
	case opts.Form != nil:
		body, contentType, size, err := opts.Form.Build()
		if err != nil {
			return nil, "", 0, fmt.Errorf("building multipart form: %w", err)
		}
		return body, contentType, size, nil

	case opts.Body == nil:
		return nil, "", 0, nil
	}

	if values, ok := opts.Body.(url.Values); ok {
		return strings.NewReader(values.Encode()), "application/x-www-form-urlencoded", 0, nil
	}

	var payload bytes.Buffer
	if err := json.NewEncoder(&payload).Encode(opts.Body); err != nil {
		return nil, "", 0, fmt.Errorf("%w: encoding request payload: %w", ErrSerialization, err)
	}

	return &payload, "application/json", 0, nil
}

// wrapSendErr translates transport failures into the package taxonomy.
func wrapSendErr(err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	case errors.Is(err, context.Canceled):
		return fmt.Errorf("request cancelled: %w", err)
	default:
		return fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}
}

// wrapDownloadErr translates transport failures on the download path,
// where cancellation has its own sentinel.
func wrapDownloadErr(err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	case errors.Is(err, context.Canceled):
		return fmt.Errorf("%w: %w", download.ErrCancelled, err)
	default:
		return fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}
}
