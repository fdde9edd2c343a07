package attention

import (
	"context"
	"errors"
	"time"
)

// manualClock is a Clock advanced explicitly by tests.
type manualClock struct {
	now time.Time
}

func newManualClock() *manualClock {
	return &manualClock{now: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *manualClock) Now() time.Time { return c.now }

func (c *manualClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

// stubRecognizer answers from a queue of results and counts calls.
type stubRecognizer struct {
	results []recognizeResult
	calls   int
}

type recognizeResult struct {
	match Match
	err   error
}

func (r *stubRecognizer) Recognize(ctx context.Context, face []byte) (Match, error) {
	r.calls++
	if len(r.results) == 0 {
		return Match{}, ErrNoMatch
	}
	res := r.results[0]
	if len(r.results) > 1 {
		r.results = r.results[1:]
	}
	return res.match, res.err
}

// stubClassifier returns labels in order, repeating the last one.
type stubClassifier struct {
	labels []string
	err    error
	calls  int
}

func (c *stubClassifier) Classify(ctx context.Context, face []byte) (string, error) {
	c.calls++
	if c.err != nil {
		return "", c.err
	}
	if len(c.labels) == 0 {
		return "", errors.New("no labels")
	}
	l := c.labels[0]
	if len(c.labels) > 1 {
		c.labels = c.labels[1:]
	}
	return l, nil
}

// memorySink keeps records in memory.
type memorySink struct {
	records []Record
	err     error
	closed  bool
}

func (s *memorySink) Write(ctx context.Context, rec Record) error {
	if s.err != nil {
		return s.err
	}
	s.records = append(s.records, rec)
	return nil
}

func (s *memorySink) Close() error {
	s.closed = true
	return nil
}

// recordingObserver keeps every notification.
type recordingObserver struct {
	frames  []Snapshot
	records []Record
}

func (o *recordingObserver) OnFrame(s Snapshot) { o.frames = append(o.frames, s) }
func (o *recordingObserver) OnRecord(r Record)  { o.records = append(o.records, r) }

func face() Observation {
	return Observation{Box: Box{X: 10, Y: 20, W: 100, H: 120}, Face: []byte{0xff, 0xd8}}
}

func closedEyes() Observation {
	o := face()
	o.EyesClosed = true
	return o
}

func approxEqual(a, b float64) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d < 1e-9
}
