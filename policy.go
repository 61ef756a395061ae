package schedule

import (
	"context"
	"strings"

	"github.com/cenkalti/backoff"
	"github.com/pkg/errors"
)

// ErrUnknownPolicy is returned when a failure policy name cannot be parsed.
var ErrUnknownPolicy = errors.New("unknown failure policy")

// FailurePolicy decides what happens to a schedule after a failed invocation.
type FailurePolicy int

const (
	// FailStop raises the failure to the timer, ending all future firings of
	// the schedule.
	FailStop FailurePolicy = iota

	// FailOpen reports the failure and keeps the schedule running.
	FailOpen
)

func (p FailurePolicy) String() string {
	if p == FailOpen {
		return "fail-open"
	}
	return "fail-stop"
}

// ParseFailurePolicy parses "fail-stop" or "fail-open". An empty string is FailStop.
func ParseFailurePolicy(s string) (FailurePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "fail-stop", "failstop", "stop":
		return FailStop, nil
	case "fail-open", "failopen", "continue":
		return FailOpen, nil
	}
	return FailStop, errors.Wrapf(ErrUnknownPolicy, "%q", s)
}

// ExponentialRetry returns a backoff factory retrying up to maxRetries times
// with exponential delays.
func ExponentialRetry(maxRetries uint64) func() backoff.BackOff {
	return func() backoff.BackOff {
		return backoff.WithMaxRetries(backoff.NewExponentialBackOff(), maxRetries)
	}
}

// invoker calls jobs, optionally retrying failures within the same firing.
type invoker struct {
	retry func() backoff.BackOff
}

func (i invoker) call(ctx context.Context, job Job) error {
	if i.retry == nil {
		return invoke(ctx, job)
	}

	return backoff.Retry(func() error {
		err := invoke(ctx, job)
		if err != nil && ctx.Err() != nil {
			return backoff.Permanent(err)
		}
		return err
	}, i.retry())
}
