package schedule

import (
	"sync"
	"time"
)

// fakeTimer records submitted work. Tests fire it by hand. An inline fakeTimer
// also runs the first firing of zero delay work before returning its handle.
type fakeTimer struct {
	inline bool

	mu   sync.Mutex
	runs []*fakeRun
}

type fakeRun struct {
	kind    string
	fn      Func
	initial time.Duration
	period  time.Duration

	mu        sync.Mutex
	cancels   int
	cancelled bool
	finished  bool
	fired     int
	err       error
	done      chan struct{}
}

func (f *fakeTimer) add(kind string, fn Func, initial, period time.Duration) *fakeRun {
	f.mu.Lock()
	r := &fakeRun{kind: kind, fn: fn, initial: initial, period: period, done: make(chan struct{})}
	f.runs = append(f.runs, r)
	f.mu.Unlock()

	if f.inline && initial <= 0 {
		_, _ = r.fire()
	}
	return r
}

func (f *fakeTimer) RunOnce(fn Func, delay time.Duration) Handle {
	return f.add("once", fn, delay, 0)
}

func (f *fakeTimer) RunWithFixedDelay(fn Func, initialDelay, delay time.Duration) Handle {
	return f.add("delay", fn, initialDelay, delay)
}

func (f *fakeTimer) RunAtFixedRate(fn Func, initialDelay, period time.Duration) Handle {
	return f.add("rate", fn, initialDelay, period)
}

func (f *fakeTimer) all() []*fakeRun {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]*fakeRun(nil), f.runs...)
}

func (f *fakeTimer) last() *fakeRun {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.runs[len(f.runs)-1]
}

// fire runs one firing the way a real timer would: nothing happens once the
// run is cancelled or finished, and a fault finishes it.
func (r *fakeRun) fire() (bool, error) {
	r.mu.Lock()
	if r.cancelled || r.finished {
		r.mu.Unlock()
		return false, nil
	}
	r.fired++
	r.mu.Unlock()

	err := r.fn()

	r.mu.Lock()
	defer r.mu.Unlock()
	if err != nil || r.kind == "once" {
		r.err = err
		r.finish()
	}
	return true, err
}

func (r *fakeRun) finish() {
	if !r.finished {
		r.finished = true
		close(r.done)
	}
}

func (r *fakeRun) Cancel() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.cancels++
	if r.cancelled || r.finished {
		return false
	}
	r.cancelled = true
	r.finish()
	return true
}

func (r *fakeRun) Done() <-chan struct{} { return r.done }

func (r *fakeRun) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.err
}

func (r *fakeRun) isCancelled() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.cancelled
}

func (r *fakeRun) cancelCalls() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.cancels
}
