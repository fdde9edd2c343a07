package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/teslashibe/go-focus/pkg/attention"
)

func snapshot(face, closed, alert bool, score float64) attention.Snapshot {
	ev := attention.Event{EyesClosed: closed, Alert: alert}
	if face {
		ev.Box = attention.Box{X: 1, Y: 1, W: 50, H: 50}
	}
	return attention.Snapshot{Event: ev, Score: score}
}

func TestCollectorOnFrame(t *testing.T) {
	c := New()

	c.OnFrame(snapshot(false, false, false, 49.5))
	c.OnFrame(snapshot(true, true, false, 44.5))
	c.OnFrame(snapshot(true, true, true, 39.5))
	c.OnFrame(snapshot(true, true, true, 34.5))
	c.OnFrame(snapshot(true, false, false, 35.5))
	c.OnFrame(snapshot(true, true, true, 30.5))

	if got := testutil.ToFloat64(c.Frames); got != 6 {
		t.Errorf("frames = %v, want 6", got)
	}
	if got := testutil.ToFloat64(c.NoFaceFrames); got != 1 {
		t.Errorf("no-face frames = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.Alerts); got != 2 {
		t.Errorf("alerts = %v, want 2 (one per rising edge)", got)
	}

	expected := `
# HELP focus_score Current attention score (0-100)
# TYPE focus_score gauge
focus_score 30.5
`
	if err := testutil.GatherAndCompare(c.Registry(), strings.NewReader(expected), "focus_score"); err != nil {
		t.Error(err)
	}
}

func TestCollectorOnRecord(t *testing.T) {
	c := New()
	c.OnRecord(attention.Record{Emotion: "happy"})
	c.OnRecord(attention.Record{Emotion: "happy"})
	c.OnRecord(attention.Record{Emotion: "sad"})

	if got := testutil.ToFloat64(c.Records); got != 3 {
		t.Errorf("records = %v, want 3", got)
	}
	if got := testutil.ToFloat64(c.Emotions.WithLabelValues("happy")); got != 2 {
		t.Errorf("happy = %v, want 2", got)
	}
}

func TestCollectorHooks(t *testing.T) {
	c := New()
	h := c.Hooks()
	h.RecognitionFailed(errors.New("x"))
	h.ClassificationFailed(errors.New("y"))
	h.ClassificationFailed(errors.New("z"))
	c.ReadFailed()
	c.MirrorFailed(errors.New("i/o timeout"))
	c.ObserveFrame(20 * time.Millisecond)

	if got := testutil.ToFloat64(c.RecognitionErrors); got != 1 {
		t.Errorf("recognition errors = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.ClassificationErrors); got != 2 {
		t.Errorf("classification errors = %v, want 2", got)
	}
	if got := testutil.ToFloat64(c.ReadErrors); got != 1 {
		t.Errorf("read errors = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.MirrorErrors); got != 1 {
		t.Errorf("mirror errors = %v, want 1", got)
	}
	if n := testutil.CollectAndCount(c.FrameSeconds); n != 1 {
		t.Errorf("histogram series = %d, want 1", n)
	}
}

func TestHandler(t *testing.T) {
	c := New()
	c.OnFrame(snapshot(true, false, false, 51))

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)

	for _, want := range []string{"focus_frames_total 1", "focus_score 51", "focus_eyes_closed 0"} {
		if !strings.Contains(string(body), want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}
