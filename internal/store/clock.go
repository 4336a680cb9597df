package store

import "time"

// Clock abstracts wall-clock reads so the suppression window is testable
// without real time.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the real wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }
