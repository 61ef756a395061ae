package schedule

import "time"

// Optional holds a value that may be unset. The zero value is unset.
type Optional[T any] struct {
	value T
	ok    bool
}

// Some returns a set Optional holding v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{value: v, ok: true}
}

// Get returns the value and whether it was set.
func (o Optional[T]) Get() (T, bool) {
	return o.value, o.ok
}

// IsSet reports whether a value was provided.
func (o Optional[T]) IsSet() bool { return o.ok }

// Spec declares when and how often an operation runs.
type Spec struct {
	// Name is the task key. When empty the operation's own name is used.
	Name string

	// Count limits the number of invocations, <= 0 means unlimited. A task with
	// Count N fires N+1 times before it removes itself.
	Count int

	// InitialDelay postpones the first firing of rate, delay and one-shot schedules.
	InitialDelay time.Duration

	// Delay is the pause between the end of one firing and the start of the next.
	Delay time.Duration

	// Rate is the period between the starts of consecutive firings. Rate wins over Delay.
	Rate time.Duration

	// DayOfWeek anchors the task to a weekday. Hour and minute default to the
	// current hour and minute at registration time.
	DayOfWeek Optional[time.Weekday]

	// HourOfDay anchors the task to an hour, 0-23. Values outside the range are ignored.
	HourOfDay Optional[int]

	// MinuteOfHour anchors the task to a minute, 0-59. Values outside the range are ignored.
	MinuteOfHour Optional[int]
}

func (s Spec) hour() (int, bool) {
	h, ok := s.HourOfDay.Get()
	return h, ok && h >= 0 && h <= 23
}

func (s Spec) minute() (int, bool) {
	m, ok := s.MinuteOfHour.Get()
	return m, ok && m >= 0 && m <= 59
}

func (s Spec) weekday() (time.Weekday, bool) {
	d, ok := s.DayOfWeek.Get()
	return d, ok && d >= time.Sunday && d <= time.Saturday
}
