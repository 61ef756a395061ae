package schedule

import "time"

const (
	oneHour = time.Hour
	oneDay  = 24 * time.Hour
	oneWeek = 7 * oneDay
)

// Anchor computes the delay until the first calendar-anchored firing of s, and
// the repeat period. Fields that are not set keep the value they have in now,
// so an hour without a minute fires at the current minute. The first firing is
// always strictly after now.
//
// Anchor returns a zero period when s carries no calendar fields.
func Anchor(now time.Time, s Spec) (first, period time.Duration) {
	var target time.Time

	switch Select(s) {
	case Hourly:
		m, _ := s.minute()
		target = at(now, now.Hour(), m)
		if !target.After(now) {
			target = target.Add(oneHour)
		}
		period = oneHour

	case Daily:
		h, _ := s.hour()
		m, ok := s.minute()
		if !ok {
			m = now.Minute()
		}
		target = at(now, h, m)
		if !target.After(now) {
			target = target.AddDate(0, 0, 1)
		}
		period = oneDay

	case Weekly:
		h, ok := s.hour()
		if !ok {
			h = now.Hour()
		}
		m, ok := s.minute()
		if !ok {
			m = now.Minute()
		}
		d, _ := s.weekday()
		target = at(now, h, m).AddDate(0, 0, weekOffset(now.Weekday(), d))
		if !target.After(now) {
			target = target.AddDate(0, 0, 7)
		}
		period = oneWeek

	default:
		return 0, 0
	}

	return nonNegative(target.Sub(now)), period
}

// at returns now with the hour and minute replaced, keeping seconds and
// nanoseconds.
func at(now time.Time, h, m int) time.Time {
	return time.Date(now.Year(), now.Month(), now.Day(), h, m, now.Second(), now.Nanosecond(), now.Location())
}

// weekOffset returns the day offset from today to d within the current
// Monday-based week. The result may be negative.
func weekOffset(today, d time.Weekday) int {
	return isoWeekday(d) - isoWeekday(today)
}

func isoWeekday(d time.Weekday) int {
	if d == time.Sunday {
		return 7
	}
	return int(d)
}
