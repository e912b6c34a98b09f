package processing

import "time"

// Clock is injected so effective-date resolution and accrual day stamping
// are testable.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

func SystemClock() Clock { return systemClock{} }

// DayOf truncates an instant to its UTC calendar date. Accrual idempotency
// is keyed by date, not timestamp, so multiple runs per day collapse.
func DayOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
