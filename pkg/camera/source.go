package camera

import (
	"errors"
	"fmt"
	"sync"

	"gocv.io/x/gocv"
)

// ErrNoFrame is returned when the device yields no frame.
var ErrNoFrame = errors.New("camera: no frame")

// Source is an open capture device.
type Source struct {
	config Config
	cap    *gocv.VideoCapture
	mu     sync.Mutex
}

// Open starts capture on cfg.Device.
func Open(cfg Config) (*Source, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	vc, err := gocv.OpenVideoCapture(cfg.Device)
	if err != nil {
		return nil, fmt.Errorf("open camera %d: %w", cfg.Device, err)
	}
	if !vc.IsOpened() {
		vc.Close()
		return nil, fmt.Errorf("open camera %d: %w", cfg.Device, ErrNoFrame)
	}

	vc.Set(gocv.VideoCaptureFrameWidth, float64(cfg.Width))
	vc.Set(gocv.VideoCaptureFrameHeight, float64(cfg.Height))
	vc.Set(gocv.VideoCaptureFPS, float64(cfg.Framerate))

	return &Source{config: cfg, cap: vc}, nil
}

// Config returns the capture settings.
func (s *Source) Config() Config {
	return s.config
}

// Read grabs the next frame into dst, mirrored when configured.
func (s *Source) Read(dst *gocv.Mat) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cap == nil {
		return ErrNoFrame
	}
	if ok := s.cap.Read(dst); !ok || dst.Empty() {
		return ErrNoFrame
	}
	if s.config.Mirror {
		gocv.Flip(*dst, dst, 1)
	}
	return nil
}

// Close releases the device.
func (s *Source) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cap == nil {
		return nil
	}
	err := s.cap.Close()
	s.cap = nil
	return err
}
