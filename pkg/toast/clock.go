package toast

import "time"

// Timer is a handle to a scheduled expiry. Stop reports whether the call
// prevented the callback from running.
type Timer interface {
	Stop() bool
}

// Clock schedules deferred callbacks. The store never calls f synchronously
// from AfterFunc, and implementations must not either.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type realClock struct{}

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// SystemClock returns the wall-clock implementation backed by time.AfterFunc.
func SystemClock() Clock {
	return realClock{}
}
