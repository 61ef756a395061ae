package schedule

import (
	"strconv"
	"time"
)

// Log is emitted after a job has run
type Log struct {
	ID         string
	Key        string
	Invocation int64
	Started    time.Time
	Ended      time.Time
	Err        error
}

func newLog(key string, invocation int64, started time.Time) Log {
	return Log{
		ID:         key + "#" + strconv.FormatInt(invocation, 10),
		Key:        key,
		Invocation: invocation,
		Started:    started,
	}
}
