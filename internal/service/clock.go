package service

import "time"

// Clock supplies the current time to services
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// FixedClock always returns the same instant
type FixedClock struct {
	At time.Time
}

func (c FixedClock) Now() time.Time { return c.At }
