package clock

import "time"

// Clock supplies "now" so advance-booking and early-bird checks are testable.
type Clock interface {
	Now() time.Time
}

type RealClock struct{}

func NewRealClock() Clock { return RealClock{} }

func (RealClock) Now() time.Time { return time.Now().UTC() }

// FixedClock always reports the same instant.
type FixedClock struct {
	current time.Time
}

func NewFixedClock(t time.Time) *FixedClock { return &FixedClock{current: t} }

func (f *FixedClock) Now() time.Time { return f.current }

func (f *FixedClock) Set(t time.Time) { f.current = t }

func (f *FixedClock) Advance(d time.Duration) { f.current = f.current.Add(d) }
