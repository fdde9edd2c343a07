package attention

import "time"

// DrowsinessTimer tracks continuous eye closure and raises a level-triggered
// alert once closure has lasted longer than Threshold.
type DrowsinessTimer struct {
	Threshold time.Duration

	since  time.Time
	closed bool
}

// NewDrowsinessTimer creates a timer in the OPEN state.
func NewDrowsinessTimer(threshold time.Duration) *DrowsinessTimer {
	return &DrowsinessTimer{Threshold: threshold}
}

// Update feeds one evaluated eye state and returns the closure flag and the
// alert level for this frame. Alert is never true while the eyes are open.
func (d *DrowsinessTimer) Update(eyesClosed bool, now time.Time) (closed, alert bool) {
	if !eyesClosed {
		d.closed = false
		d.since = time.Time{}
		return false, false
	}
	if !d.closed {
		d.closed = true
		d.since = now
	}
	return true, now.Sub(d.since) > d.Threshold
}

// ClosedFor returns how long the eyes have been closed as of now, or zero
// when they are open.
func (d *DrowsinessTimer) ClosedFor(now time.Time) time.Duration {
	if !d.closed {
		return 0
	}
	return now.Sub(d.since)
}

// Closed reports whether the timer is in the CLOSED state.
func (d *DrowsinessTimer) Closed() bool {
	return d.closed
}
