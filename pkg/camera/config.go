// Package camera reads frames from a local video device.
package camera

import "fmt"

// Config holds capture settings.
type Config struct {
	Device    int  `json:"device"`    // Video device index
	Width     int  `json:"width"`     // Frame width in pixels
	Height    int  `json:"height"`    // Frame height in pixels
	Framerate int  `json:"framerate"` // Requested FPS
	Mirror    bool `json:"mirror"`    // Flip horizontally so the preview acts as a mirror
	Quality   int  `json:"quality"`   // JPEG quality 1-100 for encoded crops
}

// DefaultConfig returns 640x480 mirrored capture from device 0.
func DefaultConfig() Config {
	return Config{
		Device:    0,
		Width:     640,
		Height:    480,
		Framerate: 30,
		Mirror:    true,
		Quality:   90,
	}
}

// Validate checks if the config values are within valid ranges.
func (c *Config) Validate() error {
	var problems []string

	if c.Device < 0 {
		problems = append(problems, "device must be >= 0")
	}
	if c.Width < 160 || c.Width > 3840 {
		problems = append(problems, "width must be between 160 and 3840")
	}
	if c.Height < 120 || c.Height > 2160 {
		problems = append(problems, "height must be between 120 and 2160")
	}
	if c.Framerate < 1 || c.Framerate > 120 {
		problems = append(problems, "framerate must be between 1 and 120")
	}
	if c.Quality < 1 || c.Quality > 100 {
		problems = append(problems, "quality must be between 1 and 100")
	}

	if len(problems) > 0 {
		return fmt.Errorf("camera: invalid config: %v", problems)
	}
	return nil
}
