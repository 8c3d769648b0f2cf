package throttle

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

var (
	ErrMustNotBeZero = errors.New("must be greater than zero")
	ErrWaitingFailed = errors.New("limiter waiting failed")
	ErrContextEnded  = errors.New("throttle context ended")
)

// Config carries the requests-per-second and burst size for a
// throttled transport.
type Config struct {
	RPS   int
	Burst int
}

// roundTripper restricts outbound calls with the time/rate token
// bucket limiter.
type roundTripper struct {
	limiter *rate.Limiter
	next    http.RoundTripper
	logFn   func() *slog.Logger
	rps     int
	burst   int
}

// NewRoundTripper returns an [http.RoundTripper] that throttles
// outbound requests through a token bucket. logFn is consulted per
// request rather than at construction, so callers can wire logging
// after the transport exists; a nil logFn or a nil-returning logFn
// disables throttle logging. A nil next falls back to
// [http.DefaultTransport].
func NewRoundTripper(rps, burst int, logFn func() *slog.Logger, next http.RoundTripper) (http.RoundTripper, error) {
	if rps <= 0 || burst <= 0 {
		return nil, fmt.Errorf("rps %d, burst %d: %w", rps, burst, ErrMustNotBeZero)
	}

	if next == nil {
		next = http.DefaultTransport
	}

	rt := &roundTripper{
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
		next:    next,
		logFn:   logFn,
		rps:     rps,
		burst:   burst,
	}

	return rt, nil
}

func (t *roundTripper) RoundTrip(r *http.Request) (*http.Response, error) {
	ctx := r.Context()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w before wait: %w", ErrContextEnded, err)
	}

	var logger *slog.Logger
	if t.logFn != nil {
		logger = t.logFn()
	}

	var waited time.Duration
	if logger != nil && !t.limiter.Allow() {
		logger.Info("rate limit reached, waiting", "rate", t.rps, "burst", t.burst, "path", r.URL.Path)

		defer func() {
			logger.Info("rate limit wait over", "waited", waited.String(), "rate", t.rps, "burst", t.burst)
		}()
	}

	start := time.Now()

	err := t.limiter.Wait(ctx)
	waited = time.Since(start)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrWaitingFailed, err)
	}

	if err := ctx.Err(); err != nil { // The deadline may have passed during the wait.
		return nil, fmt.Errorf("%w after wait: %w", ErrContextEnded, err)
	}

	return t.next.RoundTrip(r)
}
