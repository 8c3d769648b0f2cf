package download

import (
	"context"
	"testing"
)

// testContext returns a context canceled when the test finishes. It
// stands in for testing.T.Context, which needs a newer Go than this
// toolchain provides.
func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	return ctx
}
