// Package throttle bounds the rate of outbound HTTP requests by
// wrapping any [http.RoundTripper] in a [golang.org/x/time/rate]
// token bucket.
//
// # Usage
//
// Decorate a transport with [NewRoundTripper] and hand the result to
// an [http.Client]:
//
//	rt, err := throttle.NewRoundTripper(10, 5, nil, http.DefaultTransport)
//	httpClient := &http.Client{Transport: rt}
//
// A request arriving with no token available blocks until one frees up
// or its context ends. The logFn parameter lazily resolves a
// [log/slog.Logger] used for wait diagnostics; a nil logFn disables
// that logging. Most callers configure throttling through the root
// package's WithThrottle option rather than using this package
// directly.
package throttle
