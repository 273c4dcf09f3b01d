package deadline

import "time"

// DefaultWindowHours is the on-time window for a protocol.
const DefaultWindowHours = 48

// Status is the derived, non-persisted deadline state of a record.
type Status struct {
	ElapsedHours int
	OnTime       bool
}

// Evaluate computes whole elapsed hours between createdAt and now, truncated
// toward zero, and whether that count is within windowHours (inclusive).
//
// A createdAt in the future yields negative elapsed hours and is on time.
func Evaluate(now, createdAt time.Time, windowHours int) Status {
	elapsed := int(now.Sub(createdAt) / time.Hour)
	return Status{
		ElapsedHours: elapsed,
		OnTime:       elapsed <= windowHours,
	}
}

// Window converts a window in hours to a duration.
func Window(windowHours int) time.Duration {
	return time.Duration(windowHours) * time.Hour
}

// Cutoff is the earliest creation instant still inside the window at now.
func Cutoff(now time.Time, windowHours int) time.Time {
	return now.Add(-Window(windowHours))
}
