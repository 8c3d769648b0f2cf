package download

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
)

// WorkFunc performs one download and returns the final destination path.
type WorkFunc func(ctx context.Context) (string, error)

// Adder matches the client's async download signature, letting a
// [Result] enqueue further downloads into its own batch.
type Adder func(ctx context.Context, opts Options, optFns ...Option) (*Result, error)

// Queue runs a batch of downloads with bounded concurrency.
type Queue struct {
	wg       sync.WaitGroup
	mu       sync.Mutex
	sem      chan struct{}
	shutdown atomic.Bool
	errs     []error
}

// NewQueue creates a Queue allowing at most maxConcurrent simultaneous
// downloads. If maxConcurrent <= 0, concurrency is unlimited.
func NewQueue(maxConcurrent int) *Queue {
	q := &Queue{}
	if maxConcurrent > 0 {
		q.sem = make(chan struct{}, maxConcurrent)
	}

	return q
}

// Wait blocks until every download in the queue completes.
// Returns all errors joined via [errors.Join].
func (q *Queue) Wait() error {
	q.wg.Wait()

	q.mu.Lock()
	defer q.mu.Unlock()

	return errors.Join(q.errs...)
}

// Shutdown prevents queued work that has not yet started from running.
func (q *Queue) Shutdown() {
	q.shutdown.Store(true)
}

// Start launches fn in a queue-managed goroutine and returns a Result
// for tracking the individual download.
func (q *Queue) Start(ctx context.Context, fn WorkFunc, adder Adder) *Result {
	ctx, cancel := context.WithCancel(ctx)
	r := &Result{
		adder:  adder,
		done:   make(chan struct{}),
		cancel: cancel,
		queue:  q,
	}

	q.wg.Add(1)
	go func() {
		defer func() {
			cancel()
			close(r.done)
			q.wg.Done()
		}()

		if q.sem != nil {
			select {
			case q.sem <- struct{}{}:
				defer func() {
					<-q.sem
				}()
			case <-ctx.Done():
				r.err = ctx.Err()
				q.recordErr(r.err)
				return
			}
		}

		if q.shutdown.Load() {
			r.err = ErrQueueShutdown
			q.recordErr(r.err)
			return
		}

		r.path, r.err = fn(ctx)
		if r.err != nil {
			q.recordErr(r.err)
		}
	}()

	return r
}

// Run starts fn on the queue configured via [WithBatch], creating a
// single-use unbounded queue when none was requested.
func Run(ctx context.Context, fn WorkFunc, adder Adder, optFns ...Option) (*Result, error) {
	opts, err := parse(optFns)
	if err != nil {
		return nil, err
	}

	q := opts.queue
	if q == nil {
		q = NewQueue(0)
	}

	return q.Start(ctx, fn, adder), nil
}
