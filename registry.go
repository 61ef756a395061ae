package schedule

import (
	"sort"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// registry maps task keys to running tasks. Whoever removes an entry owns the
// cancellation of its handle, so every handle is cancelled at most once.
type registry struct {
	mu    sync.Mutex
	tasks map[string]*task
	gauge prometheus.Gauge
}

func newRegistry(gauge prometheus.Gauge) *registry {
	return &registry{
		mu:    sync.Mutex{},
		tasks: make(map[string]*task),
		gauge: gauge,
	}
}

// register stores t under key, cancels any task previously bound to key, then
// calls start. start runs without the registry lock held, so a timer may fire
// inline and the firing may release t before its handle is attached. The
// replaced task is returned.
func (r *registry) register(key string, t *task, start func() Handle) *task {
	r.mu.Lock()
	old := r.tasks[key]
	r.tasks[key] = t
	r.gauge.Set(float64(len(r.tasks)))
	r.mu.Unlock()

	if old != nil {
		old.cancel()
	}

	t.attach(start())
	return old
}

// cancel removes and cancels the task under key. It returns false if no task
// is registered under key or its handle had already finished.
func (r *registry) cancel(key string) bool {
	r.mu.Lock()
	t, ok := r.tasks[key]
	if ok {
		delete(r.tasks, key)
		r.gauge.Set(float64(len(r.tasks)))
	}
	r.mu.Unlock()

	if !ok {
		return false
	}
	return t.cancel()
}

// cancelAll removes and cancels every task and returns how many were removed.
func (r *registry) cancelAll() int {
	r.mu.Lock()
	tasks := r.tasks
	r.tasks = make(map[string]*task)
	r.gauge.Set(0)
	r.mu.Unlock()

	for _, t := range tasks {
		t.cancel()
	}
	return len(tasks)
}

// release removes and cancels the entry under key only if it still is t. It
// reports whether t was removed.
func (r *registry) release(key string, t *task) bool {
	r.mu.Lock()
	cur, ok := r.tasks[key]
	ok = ok && cur == t
	if ok {
		delete(r.tasks, key)
		r.gauge.Set(float64(len(r.tasks)))
	}
	r.mu.Unlock()

	if ok {
		t.cancel()
	}
	return ok
}

func (r *registry) get(key string) (*task, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tasks[key]
	return t, ok
}

func (r *registry) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.tasks)
}

// entries returns a snapshot of all tasks ordered by their next run.
func (r *registry) entries() []Entry {
	r.mu.Lock()
	res := make(ByTimeAsc, 0, len(r.tasks))
	for _, t := range r.tasks {
		res = append(res, t.entry())
	}
	r.mu.Unlock()

	sort.Sort(res)
	return res
}
