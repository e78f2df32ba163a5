package reactor

import "time"

// Timers schedules delayed, fire-and-forget callbacks. There is no
// cancellation: a task that fires after its target disappeared must already
// be a safe no-op.
type Timers interface {
	AfterFunc(d time.Duration, fn func())
}

type realTimers struct{}

func (realTimers) AfterFunc(d time.Duration, fn func()) { time.AfterFunc(d, fn) }

// RealTimers returns the wall-clock Timers implementation.
func RealTimers() Timers { return realTimers{} }

// Immediate runs callbacks synchronously with no delay. Test implementation.
type Immediate struct{}

// AfterFunc implements Timers.
func (Immediate) AfterFunc(_ time.Duration, fn func()) { fn() }
