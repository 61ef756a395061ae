package schedule

import (
	"time"

	"github.com/robfig/cron"
)

// Strategy is the firing strategy chosen for a Spec.
type Strategy int

const (
	// Once fires a single time after the initial delay.
	Once Strategy = iota

	// FixedDelay repeats, measuring the period from the end of the previous firing.
	FixedDelay

	// FixedRate repeats, measuring the period from the start of the previous firing.
	FixedRate

	// Hourly fires every hour at a fixed minute.
	Hourly

	// Daily fires every day at a fixed hour.
	Daily

	// Weekly fires every week on a fixed weekday.
	Weekly
)

func (s Strategy) String() string {
	switch s {
	case FixedDelay:
		return "fixed-delay"
	case FixedRate:
		return "fixed-rate"
	case Hourly:
		return "hourly"
	case Daily:
		return "daily"
	case Weekly:
		return "weekly"
	default:
		return "once"
	}
}

// Calendar reports whether the strategy is anchored to wall-clock time.
func (s Strategy) Calendar() bool {
	return s == Hourly || s == Daily || s == Weekly
}

// Select picks the strategy for s. Calendar anchors win over numeric periods,
// and an empty Spec falls through to Once.
func Select(s Spec) Strategy {
	if _, ok := s.weekday(); ok {
		return Weekly
	}
	if _, ok := s.hour(); ok {
		return Daily
	}
	if _, ok := s.minute(); ok {
		return Hourly
	}
	if s.Rate > 0 {
		return FixedRate
	}
	if s.Delay > 0 {
		return FixedDelay
	}
	return Once
}

// Plan is the concrete timing of a Spec at a given instant.
type Plan struct {
	Strategy     Strategy
	InitialDelay time.Duration
	Period       time.Duration
}

var _ cron.Schedule = Plan{}

// NewPlan computes the plan for s as seen at now.
func NewPlan(now time.Time, s Spec) Plan {
	strategy := Select(s)
	switch strategy {
	case Hourly, Daily, Weekly:
		first, period := Anchor(now, s)
		return Plan{Strategy: strategy, InitialDelay: first, Period: period}
	case FixedRate:
		return Plan{Strategy: strategy, InitialDelay: nonNegative(s.InitialDelay), Period: s.Rate}
	case FixedDelay:
		return Plan{Strategy: strategy, InitialDelay: nonNegative(s.InitialDelay), Period: s.Delay}
	default:
		// Delay is never positive here, so a one-shot fires immediately.
		return Plan{Strategy: Once, InitialDelay: nonNegative(s.Delay)}
	}
}

// Next returns the activation following t. One-shot plans have no next
// activation and return the zero time.
func (p Plan) Next(t time.Time) time.Time {
	if p.Strategy == Once || p.Period <= 0 {
		return time.Time{}
	}
	return t.Add(p.Period)
}

func nonNegative(d time.Duration) time.Duration {
	if d < 0 {
		return 0
	}
	return d
}
