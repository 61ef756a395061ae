package schedule

import (
	"sync"
	"time"
)

// Func is a unit of work given to a Timer. A non-nil error is a fault: it ends
// the handle, and a repeating handle never fires again.
type Func func() error

// Handle controls work submitted to a Timer.
type Handle interface {
	// Cancel prevents future firings. A firing already in progress is not
	// interrupted. Cancel returns false if the handle had already finished or
	// was cancelled before.
	Cancel() bool

	// Done is closed once no further firing will happen.
	Done() <-chan struct{}

	// Err returns the fault that terminated the handle, if any.
	Err() error
}

// Timer runs functions after a delay, once or periodically. An implementation
// may run a zero delay firing on the calling goroutine before returning.
type Timer interface {
	RunOnce(fn Func, delay time.Duration) Handle
	RunWithFixedDelay(fn Func, initialDelay, delay time.Duration) Handle
	RunAtFixedRate(fn Func, initialDelay, period time.Duration) Handle
}

// NewTimer returns a Timer that drives every handle from its own goroutine.
func NewTimer() Timer {
	return goTimer{}
}

type goTimer struct{}

func (goTimer) RunOnce(fn Func, delay time.Duration) Handle {
	h := newHandle()
	go h.loop(fn, delay, func(time.Time) time.Duration { return -1 })
	return h
}

func (goTimer) RunWithFixedDelay(fn Func, initialDelay, delay time.Duration) Handle {
	h := newHandle()
	go h.loop(fn, initialDelay, func(time.Time) time.Duration { return delay })
	return h
}

func (goTimer) RunAtFixedRate(fn Func, initialDelay, period time.Duration) Handle {
	h := newHandle()
	next := time.Now().Add(nonNegative(initialDelay))
	go h.loop(fn, initialDelay, func(time.Time) time.Duration {
		next = next.Add(period)
		return nonNegative(time.Until(next))
	})
	return h
}

type handle struct {
	mu        sync.Mutex
	stop      chan struct{}
	done      chan struct{}
	cancelled bool
	finished  bool
	err       error
}

func newHandle() *handle {
	return &handle{
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
}

// loop fires fn after delay, then keeps firing as long as wait returns a
// non-negative pause. wait is called after each firing has completed.
func (h *handle) loop(fn Func, delay time.Duration, wait func(ended time.Time) time.Duration) {
	defer h.finish()

	for {
		t := time.NewTimer(nonNegative(delay))
		select {
		case <-h.stop:
			t.Stop()
			return
		case <-t.C:
		}

		if h.isCancelled() {
			return
		}

		if err := fn(); err != nil {
			h.mu.Lock()
			h.err = err
			h.mu.Unlock()
			return
		}

		delay = wait(time.Now())
		if delay < 0 {
			return
		}
	}
}

func (h *handle) finish() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.finished = true
	close(h.done)
}

func (h *handle) isCancelled() bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.cancelled
}

func (h *handle) Cancel() bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.cancelled || h.finished {
		return false
	}
	h.cancelled = true
	close(h.stop)
	return true
}

func (h *handle) Done() <-chan struct{} {
	return h.done
}

func (h *handle) Err() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.err
}
