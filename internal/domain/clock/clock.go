// Package clock supplies the current time to domain logic. Deadlines,
// exposure windows, and event timestamps all read from the active clock so
// tests can pin or advance time without sleeping.
package clock

import "time"

// Clock yields the current time.
type Clock interface {
	Now() time.Time
}

// Func adapts an ordinary function to a Clock.
type Func func() time.Time

func (f Func) Now() time.Time { return f() }

// System is the wall clock.
var System Clock = Func(time.Now)

var active = System

// Now returns the active clock's current time.
func Now() time.Time {
	return active.Now()
}

// Set overrides the active clock and returns a restore function.
func Set(c Clock) (restore func()) {
	prev := active
	active = c
	return func() { active = prev }
}

// Frozen returns a Clock pinned at t.
func Frozen(t time.Time) Clock {
	return Func(func() time.Time { return t })
}
