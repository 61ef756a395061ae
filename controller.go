package schedule

import (
	"reflect"
	"runtime"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Operation is a schedulable operation exposed by a host.
type Operation struct {
	// Name identifies the operation. It is the task key unless Spec.Name is set.
	Name string
	Spec Spec
	Job  Job
}

// Host exposes the operations a Controller schedules.
type Host interface {
	Operations() []Operation
}

// Controller schedules the operations of a host and keeps the registry of
// their running tasks.
type Controller[H Host] struct {
	host H
	*core
}

// core is the host independent part of a Controller.
type core struct {
	cfg      *config
	log      zerolog.Logger
	invoker  invoker
	metrics  *metrics
	registry *registry
}

// New is the constructor for Controller
func New[H Host](host H, opts ...Option) (*Controller[H], error) {
	if isNil(host) {
		return nil, ErrNilHost
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		err := opt(cfg)
		if err != nil {
			return nil, err
		}
	}

	m := newMetrics()
	if cfg.registry != nil {
		if err := m.register(cfg.registry); err != nil {
			return nil, err
		}
	}

	return &Controller[H]{
		host: host,
		core: &core{
			cfg:      cfg,
			log:      cfg.logger,
			invoker:  invoker{retry: cfg.retry},
			metrics:  m,
			registry: newRegistry(m.registered),
		},
	}, nil
}

// Host returns the host object bound to the controller.
func (c *Controller[H]) Host() H {
	return c.host
}

// Schedule registers a task for every operation of the host. Operations
// without a job are skipped. Calling Schedule again registers the operations
// again, replacing the tasks bound to the same keys.
func (c *Controller[H]) Schedule() {
	ops := c.host.Operations()
	for i := range ops {
		if ops[i].Job == nil {
			c.log.Debug().Str("operation", ops[i].Name).Msg("skipping operation without job")
			continue
		}
		c.add(ops[i])
	}
}

// CancelSpecified cancels the task registered under key. It returns false if
// no such task exists. A firing in progress is not interrupted.
func (c *Controller[H]) CancelSpecified(key string) bool {
	ok := c.registry.cancel(key)
	if ok {
		c.metrics.cancellations.WithLabelValues(reasonExplicit).Inc()
		c.log.Info().Str("task", key).Msg("task cancelled")
	}
	return ok
}

// CancelAll cancels every registered task.
func (c *Controller[H]) CancelAll() {
	n := c.registry.cancelAll()
	if n > 0 {
		c.metrics.cancellations.WithLabelValues(reasonAll).Add(float64(n))
		c.log.Info().Int("tasks", n).Msg("all tasks cancelled")
	}
}

// Entries returns a snapshot of the registered tasks ordered by next run.
func (c *Controller[H]) Entries() []Entry {
	return c.registry.entries()
}

// Lookup returns the snapshot of the task registered under key.
func (c *Controller[H]) Lookup(key string) (Entry, bool) {
	t, ok := c.registry.get(key)
	if !ok {
		return Entry{}, false
	}
	return t.entry(), true
}

// Len returns the number of registered tasks.
func (c *Controller[H]) Len() int {
	return c.registry.len()
}

func (c *core) add(op Operation) {
	spec := op.Spec
	key := taskKey(op, spec)
	if override, ok := c.cfg.overrides[key]; ok {
		spec = override
		if spec.Name != "" {
			key = spec.Name
		}
	}

	now := c.cfg.now().In(c.cfg.location)
	plan := NewPlan(now, spec)
	t := newTask(key, op.Job, spec, plan, now)

	old := c.registry.register(key, t, func() Handle {
		return t.start(c.cfg.timer, func() error { return c.fire(t) })
	})
	if old != nil {
		c.metrics.cancellations.WithLabelValues(reasonReplaced).Inc()
		c.log.Warn().Str("task", key).Msg("task replaced")
	}

	c.log.Info().
		Str("task", key).
		Stringer("strategy", plan.Strategy).
		Dur("initial_delay", plan.InitialDelay).
		Dur("period", plan.Period).
		Int("count", spec.Count).
		Msg("task registered")
}

// fire runs one invocation of t. The invocation count is updated and the
// count limit enforced before a failure is reported, so a failing task still
// exhausts. Under FailStop the failure is returned, which ends the schedule.
func (c *core) fire(t *task) error {
	started := time.Now()
	err := c.invoker.call(c.cfg.ctx, t.job)
	ended := time.Now()

	n := t.invocations.Add(1)
	t.ran(started, ended)
	c.metrics.firings.WithLabelValues(t.key).Inc()
	c.metrics.duration.WithLabelValues(t.key).Observe(ended.Sub(started).Seconds())
	c.log.Debug().Str("task", t.key).Int64("invocation", n).Dur("took", ended.Sub(started)).Msg("task fired")

	if t.exhausted(n) && c.registry.release(t.key, t) {
		c.metrics.cancellations.WithLabelValues(reasonExhausted).Inc()
		c.log.Info().Str("task", t.key).Int64("invocations", n).Msg("task exhausted")
	}

	entry := newLog(t.key, n, started)
	entry.Ended = ended

	if err != nil {
		fault := &InvocationError{Key: t.key, Err: err}
		entry.Err = fault
		c.emit(entry)
		c.fail(t, fault)
		if c.cfg.policy == FailStop {
			c.registry.release(t.key, t)
			return fault
		}
	} else {
		c.emit(entry)
	}

	if t.plan.Strategy == Once {
		c.registry.release(t.key, t)
	}
	return nil
}

func (c *core) fail(t *task, fault *InvocationError) {
	c.metrics.failures.WithLabelValues(t.key).Inc()
	c.log.Error().Err(fault.Err).Str("task", t.key).Stringer("policy", c.cfg.policy).Msg("task failed")

	if c.cfg.errors == nil {
		return
	}
	select {
	case c.cfg.errors <- fault:
	default:
	}
}

func (c *core) emit(l Log) {
	if c.cfg.log == nil {
		return
	}
	select {
	case c.cfg.log <- l:
	default:
	}
}

// taskKey returns the key of op: Spec.Name, the operation name, or the
// name of the job function, whichever is set first.
func taskKey(op Operation, spec Spec) string {
	if spec.Name != "" {
		return spec.Name
	}
	if op.Name != "" {
		return op.Name
	}
	name := runtime.FuncForPC(reflect.ValueOf(op.Job).Pointer()).Name()
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	return name
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Func, reflect.Interface, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
