// Package monitor runs a live attention-monitoring session: camera in,
// session log and dashboard out.
package monitor

import (
	"errors"
	"fmt"
	"time"

	"github.com/teslashibe/go-focus/pkg/attention"
	"github.com/teslashibe/go-focus/pkg/camera"
	"github.com/teslashibe/go-focus/pkg/emotion"
	"github.com/teslashibe/go-focus/pkg/faces"
	"github.com/teslashibe/go-focus/pkg/vision"
)

var (
	// ErrCameraUnavailable is returned when the camera stops producing frames.
	ErrCameraUnavailable = errors.New("monitor: camera unavailable")

	// ErrNotInitialized is returned when Run is called before Init.
	ErrNotInitialized = errors.New("monitor: not initialized")
)

// Config holds all configuration for a monitoring session.
// Flag and environment parsing is done in cmd/focus; this struct is data only.
type Config struct {
	Debug bool

	Camera    camera.Config
	Vision    vision.Config
	Faces     faces.Config
	Emotion   emotion.Config
	Attention attention.Config

	// Remote emotion classification; disabled when VisionURL is empty.
	VisionURL   string
	VisionModel string
	VisionKey   string

	// Session log
	SessionDir  string
	RedisURL    string // Optional stream mirror
	RedisPrefix string

	// Dashboard
	Web       bool
	WebPort   string
	StaticDir string

	// Consecutive failed reads before giving up on the camera.
	MaxReadFailures int
	ReadRetryDelay  time.Duration
}

// DefaultConfig returns defaults for a laptop webcam session.
func DefaultConfig() Config {
	return Config{
		Camera:          camera.DefaultConfig(),
		Vision:          vision.DefaultConfig(),
		Faces:           faces.DefaultConfig(),
		Emotion:         emotion.DefaultConfig(),
		Attention:       attention.DefaultConfig(),
		VisionModel:     "gpt-4o-mini",
		SessionDir:      "logs",
		RedisPrefix:     "focus:session",
		Web:             true,
		WebPort:         "8080",
		MaxReadFailures: 30,
		ReadRetryDelay:  10 * time.Millisecond,
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if err := c.Attention.Validate(); err != nil {
		return err
	}
	if c.SessionDir == "" {
		return fmt.Errorf("monitor: session dir required")
	}
	if c.MaxReadFailures <= 0 {
		return fmt.Errorf("monitor: max read failures must be positive")
	}
	if c.Web && c.WebPort == "" {
		return fmt.Errorf("monitor: web port required when dashboard is enabled")
	}
	return nil
}
