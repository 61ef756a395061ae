package schedule

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrNilHost is returned by New when no host is given.
	ErrNilHost = errors.New("host is nil")

	// ErrInvocationPanic marks an invocation that panicked instead of returning.
	ErrInvocationPanic = errors.New("job panicked")
)

// Job is a schedulable zero-argument operation.
type Job func(ctx context.Context) error

// InvocationError is the fault raised when a scheduled job fails.
type InvocationError struct {
	Key string
	Err error
}

func (e *InvocationError) Error() string {
	return fmt.Sprintf("failed to call scheduled job %q: %v", e.Key, e.Err)
}

// Unwrap returns the underlying failure.
func (e *InvocationError) Unwrap() error { return e.Err }

// Cause returns the underlying failure, for github.com/pkg/errors.
func (e *InvocationError) Cause() error { return e.Err }

// invoke calls job, converting a panic into an error.
func invoke(ctx context.Context, job Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Wrapf(ErrInvocationPanic, "%v", r)
		}
	}()
	return job(ctx)
}
