package schedule

import (
	"time"
)

// Entry is a snapshot of a registered task.
type Entry struct {
	// Task key, unique within a controller
	Key string

	Strategy Strategy

	// Repeat period, zero for one-shot tasks
	Period time.Duration

	// Number of firings so far
	Invocations int64

	NextRun time.Time
	LastRun time.Time
}

// ByTimeAsc orders entries by next run. Entries without a next run sort last.
type ByTimeAsc []Entry

func (b ByTimeAsc) Len() int { return len(b) }
func (b ByTimeAsc) Less(i, j int) bool {
	switch {
	case b[i].NextRun.IsZero():
		return false
	case b[j].NextRun.IsZero():
		return true
	case b[i].NextRun.Equal(b[j].NextRun):
		return b[i].Key < b[j].Key
	}
	return b[i].NextRun.Before(b[j].NextRun)
}
func (b ByTimeAsc) Swap(i, j int) { b[i], b[j] = b[j], b[i] }
