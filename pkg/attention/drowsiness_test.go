package attention

import (
	"testing"
	"time"
)

func TestDrowsinessTimer_AlertAfterThreshold(t *testing.T) {
	clock := newManualClock()
	d := NewDrowsinessTimer(3 * time.Second)

	closed, alert := d.Update(true, clock.Now())
	if !closed || alert {
		t.Fatalf("closure start: closed=%v alert=%v", closed, alert)
	}

	clock.Advance(2900 * time.Millisecond)
	if _, alert = d.Update(true, clock.Now()); alert {
		t.Error("alert before threshold")
	}

	// Exactly at the threshold is not yet "more than" the threshold.
	clock.Advance(100 * time.Millisecond)
	if _, alert = d.Update(true, clock.Now()); alert {
		t.Error("alert at exactly the threshold")
	}

	clock.Advance(time.Millisecond)
	if _, alert = d.Update(true, clock.Now()); !alert {
		t.Error("expected alert past threshold")
	}

	if got := d.ClosedFor(clock.Now()); got != 3001*time.Millisecond {
		t.Errorf("ClosedFor() = %v", got)
	}
}

func TestDrowsinessTimer_ResetsWhenEyesOpen(t *testing.T) {
	clock := newManualClock()
	d := NewDrowsinessTimer(3 * time.Second)

	d.Update(true, clock.Now())
	clock.Advance(5 * time.Second)
	if _, alert := d.Update(true, clock.Now()); !alert {
		t.Fatal("expected alert")
	}

	closed, alert := d.Update(false, clock.Now())
	if closed || alert {
		t.Errorf("after reopening: closed=%v alert=%v", closed, alert)
	}
	if d.Closed() {
		t.Error("timer still CLOSED")
	}

	// A new closure starts a fresh span.
	clock.Advance(time.Second)
	d.Update(true, clock.Now())
	clock.Advance(2 * time.Second)
	if _, alert := d.Update(true, clock.Now()); alert {
		t.Error("alert carried over from previous closure")
	}
}
