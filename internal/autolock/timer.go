package autolock

import "time"

// Timer is a single-shot timer that coalesces: while one is pending,
// further Schedule calls do nothing. It backs both the retry after an
// indeterminate sample and the debounce of bursts of activity.
type Timer struct {
	arm     func(time.Duration)
	onFire  func()
	pending bool
}

// NewTimer returns a timer that arms through arm and runs onFire when the
// armed timeout is delivered back through Fire.
func NewTimer(arm func(time.Duration), onFire func()) *Timer {
	return &Timer{arm: arm, onFire: onFire}
}

// Schedule arms the timer for d unless one is already pending. It reports
// whether a new timeout was armed.
func (t *Timer) Schedule(d time.Duration) bool {
	if t.pending {
		return false
	}
	t.pending = true
	t.arm(d)
	return true
}

// Fire clears the pending flag, then runs the callback.
func (t *Timer) Fire() {
	t.pending = false
	if t.onFire != nil {
		t.onFire()
	}
}

// Pending reports whether a timeout is armed and not yet delivered.
func (t *Timer) Pending() bool {
	return t.pending
}
