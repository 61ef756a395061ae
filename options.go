package schedule

import (
	"context"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

// Option is a constructor function
type Option func(*config) error

type config struct {
	ctx       context.Context
	timer     Timer
	now       func() time.Time
	location  *time.Location
	logger    zerolog.Logger
	log       chan Log
	errors    chan error
	policy    FailurePolicy
	retry     func() backoff.BackOff
	registry  prometheus.Registerer
	overrides map[string]Spec
}

func defaultConfig() *config {
	return &config{
		ctx:      context.Background(),
		timer:    NewTimer(),
		now:      time.Now,
		location: time.Local,
		logger:   zerolog.Nop(),
		policy:   FailStop,
	}
}

// WithTimer sets the timer facility that fires tasks.
func WithTimer(timer Timer) Option {
	return func(c *config) error {
		if timer == nil {
			return errors.New("timer is nil")
		}
		c.timer = timer
		return nil
	}
}

// WithClock sets the clock used to compute calendar anchors.
func WithClock(now func() time.Time) Option {
	return func(c *config) error {
		if now == nil {
			return errors.New("clock is nil")
		}
		c.now = now
		return nil
	}
}

// WithLocation sets the location.
//
// Location defaults to time.Local.
func WithLocation(location *time.Location) Option {
	return func(c *config) error {
		if location == nil {
			return errors.New("location is nil")
		}
		c.location = location
		return nil
	}
}

// WithContext sets the context passed to every job invocation.
func WithContext(ctx context.Context) Option {
	return func(c *config) error {
		if ctx == nil {
			return errors.New("context is nil")
		}
		c.ctx = ctx
		return nil
	}
}

// WithLogger sets a structured logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *config) error {
		c.logger = logger
		return nil
	}
}

// WithLog sets a log channel. Logs are dropped when the channel is full.
func WithLog(log chan Log) Option {
	return func(c *config) error {
		c.log = log
		return nil
	}
}

// WithError sets an error channel receiving invocation failures. Errors are
// dropped when the channel is full.
func WithError(errors chan error) Option {
	return func(c *config) error {
		c.errors = errors
		return nil
	}
}

// WithFailurePolicy sets what happens to a schedule after a failed invocation.
//
// Policy defaults to FailStop.
func WithFailurePolicy(policy FailurePolicy) Option {
	return func(c *config) error {
		if policy != FailStop && policy != FailOpen {
			return errors.Wrapf(ErrUnknownPolicy, "%d", int(policy))
		}
		c.policy = policy
		return nil
	}
}

// WithRetry retries a failed invocation within the same firing, using a fresh
// backoff from newBackOff each time. The failure policy applies once retries
// are exhausted.
func WithRetry(newBackOff func() backoff.BackOff) Option {
	return func(c *config) error {
		c.retry = newBackOff
		return nil
	}
}

// WithRegisterer registers the controller metrics with reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(c *config) error {
		c.registry = reg
		return nil
	}
}

// WithOverrides replaces the declared Spec of operations whose key is present
// in overrides.
func WithOverrides(overrides map[string]Spec) Option {
	return func(c *config) error {
		c.overrides = overrides
		return nil
	}
}
