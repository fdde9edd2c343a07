package monitor

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"gocv.io/x/gocv"

	"github.com/teslashibe/go-focus/pkg/attention"
	"github.com/teslashibe/go-focus/pkg/camera"
	"github.com/teslashibe/go-focus/pkg/sessionlog"
)

// stepClock advances by step on every read.
type stepClock struct {
	mu   sync.Mutex
	now  time.Time
	step time.Duration
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(c.step)
	return c.now
}

// fakeSource yields frames, then fails.
type fakeSource struct {
	frames int
	reads  int
	closed bool
}

func (f *fakeSource) Read(dst *gocv.Mat) error {
	f.reads++
	if f.reads > f.frames {
		return camera.ErrNoFrame
	}
	return nil
}

func (f *fakeSource) Close() error {
	f.closed = true
	return nil
}

// fakeDetector always sees an open-eyed face.
type fakeDetector struct {
	calls  int
	closed bool
}

func (d *fakeDetector) Detect(frame gocv.Mat) (attention.Observation, error) {
	d.calls++
	return attention.Observation{Box: attention.Box{X: 10, Y: 10, W: 100, H: 100}}, nil
}

func (d *fakeDetector) Close() error {
	d.closed = true
	return nil
}

func testConfig(t *testing.T) Config {
	t.Helper()
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.SessionDir = filepath.Join(dir, "logs")
	cfg.Faces.Dir = filepath.Join(dir, "known_faces")
	cfg.Emotion.ModelPath = filepath.Join(dir, "missing.onnx")
	cfg.Web = false
	cfg.MaxReadFailures = 3
	cfg.ReadRetryDelay = time.Millisecond
	return cfg
}

func TestConfigValidate(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}

	cfg.MaxReadFailures = 0
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for zero MaxReadFailures")
	}

	cfg = DefaultConfig()
	cfg.Attention.EmotionWindow = 0
	if err := cfg.Validate(); !errors.Is(err, attention.ErrInvalidConfig) {
		t.Errorf("err = %v, want ErrInvalidConfig", err)
	}
}

func TestRunBeforeInit(t *testing.T) {
	app, err := New(testConfig(t))
	if err != nil {
		t.Fatal(err)
	}
	if err := app.Run(context.Background()); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("err = %v, want ErrNotInitialized", err)
	}
}

func TestRunUntilCameraFails(t *testing.T) {
	cfg := testConfig(t)
	src := &fakeSource{frames: 8}
	det := &fakeDetector{}
	clock := &stepClock{now: time.Date(2026, 3, 14, 9, 0, 0, 0, time.Local), step: 400 * time.Millisecond}

	app, err := New(cfg, WithSource(src), WithDetector(det), WithClock(clock))
	if err != nil {
		t.Fatal(err)
	}
	if err := app.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}

	err = app.Run(context.Background())
	if !errors.Is(err, ErrCameraUnavailable) {
		t.Fatalf("Run err = %v, want ErrCameraUnavailable", err)
	}
	if det.calls != 8 {
		t.Errorf("detector calls = %d, want 8", det.calls)
	}
	if src.reads != 8+cfg.MaxReadFailures {
		t.Errorf("reads = %d, want %d", src.reads, 8+cfg.MaxReadFailures)
	}

	app.Shutdown()
	if !src.closed || !det.closed {
		t.Error("Shutdown should close source and detector")
	}

	if !strings.HasPrefix(filepath.Base(app.LogPath()), "session_") {
		t.Errorf("log path = %s", app.LogPath())
	}
	records, err := sessionlog.ReadCSV(app.LogPath())
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if len(records) == 0 {
		t.Fatal("expected at least one record")
	}
	for _, r := range records {
		if r.Identity != attention.UnknownIdentity || r.EyesClosed {
			t.Errorf("unexpected record %+v", r)
		}
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	cfg := testConfig(t)
	app, err := New(cfg, WithSource(&fakeSource{frames: 1 << 30}), WithDetector(&fakeDetector{}))
	if err != nil {
		t.Fatal(err)
	}
	if err := app.Init(); err != nil {
		t.Fatal(err)
	}
	defer app.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := app.Run(ctx); err != nil {
		t.Errorf("Run after cancel = %v, want nil", err)
	}
}

func TestInitFailsWithoutSessionDir(t *testing.T) {
	cfg := testConfig(t)
	blocker := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(blocker, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	cfg.SessionDir = filepath.Join(blocker, "logs")

	src := &fakeSource{}
	app, err := New(cfg, WithSource(src), WithDetector(&fakeDetector{}))
	if err != nil {
		t.Fatal(err)
	}
	if err := app.Init(); !errors.Is(err, sessionlog.ErrSinkUnavailable) {
		t.Errorf("Init err = %v, want ErrSinkUnavailable", err)
	}
	app.Shutdown()
}
