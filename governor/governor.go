package governor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// Observer receives queue events. Calls are made from the dispatch loop and
// from Submit, so implementations must be safe for concurrent use.
type Observer interface {
	Queued(depth int)
	Dispatched(attempt int)
	Throttled(attempt int, cooldown time.Duration)
	Settled(attempts int, elapsed time.Duration, err error)
}

type nopObserver struct{}

func (nopObserver) Queued(int)                        {}
func (nopObserver) Dispatched(int)                    {}
func (nopObserver) Throttled(int, time.Duration)      {}
func (nopObserver) Settled(int, time.Duration, error) {}

// request is a queued unit of work. It is owned by the Governor from enqueue
// until its outcome is delivered.
type request struct {
	id       uint64
	ctx      context.Context
	op       func(context.Context) (any, error)
	deliver  func(any, error)
	attempts int
	queuedAt time.Time
}

type attemptResult struct {
	val any
	err error
}

// Governor serializes operations into a paced dispatch stream.
//
// At most one operation runs at a time: the loop waits for each attempt to
// return before admitting the next request. An operation that ignores its
// context therefore holds the whole queue until the attempt timeout
// (WithAttemptTimeout, 30s by default) abandons it. With the timeout
// disabled, it holds the queue until the caller's context is done.
type Governor struct {
	opts options

	mu            sync.Mutex
	pending       []*request
	running       bool
	closed        bool
	lastDispatch  time.Time
	cooldownUntil time.Time

	done   chan struct{}
	closer sync.Once
	nextID atomic.Uint64
}

// New creates a Governor. It starts no goroutine until work is submitted.
func New(opts ...Option) *Governor {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	return &Governor{
		opts: o,
		done: make(chan struct{}),
	}
}

// Submit queues op and returns a Future for its outcome. The context is
// handed to op on every attempt; if it is already done when op reaches the
// head of the queue, the Future settles with the context error and op is not
// called.
func Submit[T any](g *Governor, ctx context.Context, op func(context.Context) (T, error)) *Future[T] {
	f := newFuture[T]()

	r := &request{
		id:  g.nextID.Add(1),
		ctx: ctx,
		op: func(ctx context.Context) (any, error) {
			return op(ctx)
		},
		deliver: func(val any, err error) {
			var out T
			if err == nil {
				out, _ = val.(T)
			}
			f.resolve(out, err)
		},
		queuedAt: time.Now(),
	}

	g.enqueue(r)
	return f
}

// Do submits op and waits for its outcome.
func Do[T any](g *Governor, ctx context.Context, op func(context.Context) (T, error)) (T, error) {
	return Submit(g, ctx, op).Wait(ctx)
}

// Pending returns the number of operations waiting for dispatch.
func (g *Governor) Pending() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.pending)
}

// Close settles every pending operation with ErrClosed. An attempt already in
// flight completes normally unless it is throttled.
func (g *Governor) Close() {
	g.closer.Do(func() {
		g.mu.Lock()
		g.closed = true
		drained := g.pending
		g.pending = nil
		g.mu.Unlock()

		close(g.done)

		for _, r := range drained {
			g.settle(r, nil, ErrClosed)
		}
		if len(drained) > 0 {
			g.opts.logger.Debug().Int("count", len(drained)).Msg("Settled pending requests on close")
		}
	})
}

func (g *Governor) enqueue(r *request) {
	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		g.settle(r, nil, ErrClosed)
		return
	}

	g.pending = append(g.pending, r)
	depth := len(g.pending)
	start := !g.running
	if start {
		g.running = true
	}
	g.mu.Unlock()

	g.opts.observer.Queued(depth)

	if start {
		go g.run()
	}
}

// run is the single dispatch loop. The running flag, set by enqueue under the
// lock, guarantees only one instance is active.
func (g *Governor) run() {
	for {
		r, wait, ok := g.next(time.Now())
		if !ok {
			return
		}
		if wait > 0 {
			g.sleep(wait)
			continue
		}
		g.dispatch(r)
	}
}

// next pops the head of the queue when admission allows it. It returns a
// positive wait when the head must wait, and ok=false when the loop should
// stop.
func (g *Governor) next(now time.Time) (*request, time.Duration, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.closed || len(g.pending) == 0 {
		g.running = false
		return nil, 0, false
	}

	head := g.pending[0]

	// A caller that has given up does not consume a dispatch slot.
	if head.ctx.Err() == nil {
		if wait := g.admissionDelayLocked(now); wait > 0 {
			return nil, wait, true
		}
	}

	g.pending[0] = nil
	g.pending = g.pending[1:]
	return head, 0, true
}

func (g *Governor) admissionDelayLocked(now time.Time) time.Duration {
	var readyAt time.Time
	if !g.lastDispatch.IsZero() {
		readyAt = g.lastDispatch.Add(g.opts.minInterval)
	}
	if g.cooldownUntil.After(readyAt) {
		readyAt = g.cooldownUntil
	}
	return readyAt.Sub(now)
}

func (g *Governor) sleep(d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-t.C:
	case <-g.done:
	}
}

func (g *Governor) dispatch(r *request) {
	if err := r.ctx.Err(); err != nil {
		g.settle(r, nil, err)
		return
	}

	r.attempts++

	g.mu.Lock()
	g.lastDispatch = time.Now()
	g.mu.Unlock()

	g.opts.observer.Dispatched(r.attempts)

	val, err := g.attempt(r)

	var throttled *ThrottledError
	if !errors.As(err, &throttled) {
		g.settle(r, val, err)
		return
	}

	cooldown := g.opts.cooldown
	if throttled.RetryAfter > cooldown {
		cooldown = throttled.RetryAfter
	}

	g.mu.Lock()
	g.cooldownUntil = time.Now().Add(cooldown)
	exhausted := r.attempts >= g.opts.maxAttempts
	closed := g.closed
	if !exhausted && !closed {
		// Retried work goes ahead of new work.
		g.pending = append([]*request{r}, g.pending...)
	}
	g.mu.Unlock()

	g.opts.observer.Throttled(r.attempts, cooldown)

	switch {
	case exhausted:
		g.opts.logger.Warn().
			Uint64("request_id", r.id).
			Int("attempts", r.attempts).
			Msg("Retry budget exhausted, giving up on request")
		g.settle(r, nil, &RetryExhaustedError{Attempts: r.attempts, Last: throttled})
	case closed:
		g.settle(r, nil, ErrClosed)
	default:
		g.opts.logger.Warn().
			Uint64("request_id", r.id).
			Int("attempt", r.attempts).
			Int("max_attempts", g.opts.maxAttempts).
			Dur("cooldown", cooldown).
			Msg("Provider throttled request, pausing dispatch")
	}
}

// attempt runs op once. The loop waits for the attempt to finish, but never
// longer than the attempt timeout: an op that ignores its context is
// abandoned and its late result discarded.
func (g *Governor) attempt(r *request) (any, error) {
	ctx := r.ctx
	if g.opts.attemptTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.opts.attemptTimeout)
		defer cancel()
	}

	results := make(chan attemptResult, 1)
	go func() {
		defer func() {
			if p := recover(); p != nil {
				results <- attemptResult{err: fmt.Errorf("operation panicked: %v", p)}
			}
		}()
		val, err := r.op(ctx)
		results <- attemptResult{val: val, err: err}
	}()

	select {
	case res := <-results:
		return res.val, res.err
	case <-ctx.Done():
		return nil, fmt.Errorf("attempt abandoned: %w", ctx.Err())
	}
}

func (g *Governor) settle(r *request, val any, err error) {
	r.deliver(val, err)
	g.opts.observer.Settled(r.attempts, time.Since(r.queuedAt), err)
}
