package schedule

import (
	"sync"
	"sync/atomic"
	"time"
)

// task is a registered operation together with its timer handle.
type task struct {
	key  string
	job  Job
	spec Spec
	plan Plan

	invocations atomic.Int64

	mu       sync.Mutex
	handle   Handle
	released bool
	nextRun  time.Time
	lastRun  time.Time
}

func newTask(key string, job Job, spec Spec, plan Plan, now time.Time) *task {
	return &task{
		key:     key,
		job:     job,
		spec:    spec,
		plan:    plan,
		nextRun: now.Add(plan.InitialDelay),
	}
}

// ran records a completed firing.
func (t *task) ran(started, ended time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.lastRun = started
	if t.plan.Strategy == FixedRate {
		t.nextRun = t.plan.Next(started)
	} else {
		t.nextRun = t.plan.Next(ended)
	}
}

// exhausted reports whether n invocations exceed the task's count. A task with
// Count N is therefore fired N+1 times.
func (t *task) exhausted(n int64) bool {
	return t.spec.Count > 0 && n > int64(t.spec.Count)
}

func (t *task) entry() Entry {
	t.mu.Lock()
	defer t.mu.Unlock()

	return Entry{
		Key:         t.key,
		Strategy:    t.plan.Strategy,
		Period:      t.plan.Period,
		Invocations: t.invocations.Load(),
		NextRun:     t.nextRun,
		LastRun:     t.lastRun,
	}
}

// attach stores the handle returned by the timer. A task removed from the
// registry before its handle arrived has the handle cancelled here instead.
func (t *task) attach(h Handle) {
	t.mu.Lock()
	if !t.released {
		t.handle = h
		t.mu.Unlock()
		return
	}
	t.mu.Unlock()

	h.Cancel()
}

// cancel cancels the task's handle. It must be called once, by whoever removed
// the task from the registry. A handle not yet attached is cancelled by attach.
func (t *task) cancel() bool {
	t.mu.Lock()
	t.released = true
	h := t.handle
	t.mu.Unlock()

	if h == nil {
		return true
	}
	return h.Cancel()
}

// start submits fire to timer according to the task's plan.
func (t *task) start(timer Timer, fire Func) Handle {
	switch t.plan.Strategy {
	case FixedRate:
		return timer.RunAtFixedRate(fire, t.plan.InitialDelay, t.plan.Period)
	case FixedDelay, Hourly, Daily, Weekly:
		return timer.RunWithFixedDelay(fire, t.plan.InitialDelay, t.plan.Period)
	default:
		return timer.RunOnce(fire, t.plan.InitialDelay)
	}
}
