package download

import (
	"context"
)

// Result tracks a single download moving through a batch queue.
type Result struct {
	adder  Adder
	done   chan struct{}
	path   string
	err    error
	cancel context.CancelFunc
	queue  *Queue
}

// Add enqueues another download into the same batch.
// It calls the injected Adder and reuses the existing Queue.
// WithBatch cannot be combined with this method.
//
// Validation errors are recorded in the queue so that [Result.Wait]
// returns them; the caller does not need to check each Add
// individually.
func (r *Result) Add(ctx context.Context, opts Options, optFns ...Option) *Result {
	result, err := r.adder(ctx, opts, append([]Option{withQueue(r.queue)}, optFns...)...)
	if err == nil {
		return result
	}

	// Surface the failure through the normal Result API.
	r.queue.recordErr(err)
	done := make(chan struct{})
	close(done)

	return &Result{
		adder:  r.adder,
		done:   done,
		err:    err,
		cancel: func() {},
		queue:  r.queue,
	}
}

// Done returns a channel that is closed when this download completes.
func (r *Result) Done() <-chan struct{} { return r.done }

// Err waits for this download to finish and returns its terminal
// error, nil on success.
func (r *Result) Err() error {
	<-r.done
	return r.err
}

// Path blocks until this download completes and returns the final
// destination path. It is empty when the download failed.
func (r *Result) Path() string {
	<-r.done
	return r.path
}

// Wait blocks until every download in the batch completes and returns
// their errors joined.
func (r *Result) Wait() error {
	return r.queue.Wait()
}

// Cancel aborts this download by cancelling its context.
func (r *Result) Cancel() {
	r.cancel()
}

// recordErr appends err to the queue's error slice under the mutex.
func (q *Queue) recordErr(err error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.errs = append(q.errs, err)
}
