// Package clock supplies the time reference used for time-lock checks.
//
// The registry never reads the wall clock itself. The interface layer picks
// a Clock and passes its reading into every time-sensitive call. Readings
// are nanoseconds since the Unix epoch, the unit locked_until values use.
package clock

import "time"

// Clock reports the current time reference.
type Clock interface {
	Now() uint64
}

// System reads the wall clock.
type System struct{}

// Now returns the wall-clock time in Unix nanoseconds.
func (System) Now() uint64 {
	return FromTime(time.Now())
}

// FromTime converts t to Unix nanoseconds. Times before the epoch map to 0.
func FromTime(t time.Time) uint64 {
	ns := t.UnixNano()
	if ns < 0 {
		return 0
	}
	return uint64(ns)
}

// Fixed always reads the same time. Used for --now and replays.
type Fixed uint64

// Now returns the fixed reading.
func (c Fixed) Now() uint64 {
	return uint64(c)
}
