package download

import (
	"fmt"
	"io"
	"log/slog"
	"time"
)

// Sink receives running progress for a single download. Implementations
// are invoked inline after every written chunk and must return quickly.
type Sink interface {
	// OnProgress reports the cumulative bytes written so far and the
	// expected total. The total is -1 when the server sent no length.
	OnProgress(transferred, total int64)
}

// SinkFunc adapts a plain function to a [Sink].
type SinkFunc func(transferred, total int64)

func (f SinkFunc) OnProgress(transferred, total int64) { f(transferred, total) }

// nopSink is installed when no sink is configured.
type nopSink struct{}

func (nopSink) OnProgress(int64, int64) {}

// NewLogSink returns a [Sink] that logs progress through logger at most
// once per second, plus a final entry when the transfer completes.
// Completion is detected against the expected total, so unknown-length
// transfers (total -1) log the running count only and never a
// completion entry. A nil logger falls back to [slog.Default].
func NewLogSink(logger *slog.Logger) Sink {
	if logger == nil {
		logger = slog.Default()
	}

	return &logSink{logger: logger, start: time.Now()}
}

type logSink struct {
	logger  *slog.Logger
	start   time.Time
	lastLog time.Time
}

func (s *logSink) OnProgress(transferred, total int64) {
	done := total >= 0 && transferred == total
	if !done && time.Since(s.lastLog) < time.Second {
		return
	}
	s.lastLog = time.Now()

	msg := "downloading"
	if done {
		msg = "download complete"
	}

	elapsed := time.Since(s.start)
	attrs := []any{
		"elapsed", elapsed.Round(time.Millisecond),
		"transferred", transferred,
		"total", total,
	}
	if total > 0 {
		attrs = append(attrs, "progress", fmt.Sprintf("%.1f%%", float64(transferred)/float64(total)*100))
	}
	if elapsed > 0 {
		attrs = append(attrs, "mbps", fmt.Sprintf("%.2f", float64(transferred)/elapsed.Seconds()/(1024*1024)))
	}

	s.logger.Info(msg, attrs...)
}

// progressWriter counts written bytes and forwards the running total to
// the sink.
type progressWriter struct {
	w           io.Writer
	sink        Sink
	transferred int64
	total       int64
}

func (pw *progressWriter) Write(p []byte) (int, error) {
	n, err := pw.w.Write(p)
	pw.transferred += int64(n)
	pw.sink.OnProgress(pw.transferred, pw.total)

	return n, err
}
