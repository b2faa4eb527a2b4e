package domain

import "time"

// Clock supplies the current time to the lifecycle engine so time-driven
// transitions can be exercised deterministically in tests.
type Clock interface {
	Now() time.Time
}

// RealClock is the production Clock backed by the system time in UTC.
type RealClock struct{}

// Now returns the current UTC time.
func (RealClock) Now() time.Time {
	return time.Now().UTC()
}
