// Package vision finds the attended face in a frame and checks its eyes.
package vision

import (
	"image"

	"gocv.io/x/gocv"

	"github.com/teslashibe/go-focus/pkg/attention"
)

// Config holds cascade detector configuration.
type Config struct {
	FaceCascade string // Path to haarcascade_frontalface_default.xml
	EyeCascade  string // Path to haarcascade_eye.xml

	// FaceModel selects the YuNet DNN face detector when set.
	FaceModel      string
	ScoreThreshold float64 // Minimum YuNet confidence

	FaceScale     float64 // detectMultiScale scale factor for faces
	FaceNeighbors int     // minNeighbors for faces
	EyeScale      float64 // scale factor for eyes inside the face box
	EyeNeighbors  int     // minNeighbors for eyes
	EyeMinSize    int     // Smallest eye edge in pixels

	Quality int // JPEG quality of the face crop
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{
		FaceCascade:    "models/haarcascade_frontalface_default.xml",
		EyeCascade:     "models/haarcascade_eye.xml",
		ScoreThreshold: 0.6,
		FaceScale:      1.1,
		FaceNeighbors:  5,
		EyeScale:       1.1,
		EyeNeighbors:   10,
		EyeMinSize:     20,
		Quality:        90,
	}
}

// Detector finds the attended face in a BGR frame.
type Detector interface {
	Detect(frame gocv.Mat) (attention.Observation, error)
	Close() error
}

// NewDetector returns a YuNet detector when cfg.FaceModel is set and a
// Haar cascade detector otherwise. Both use the eye cascade.
func NewDetector(cfg Config) (Detector, error) {
	if cfg.FaceModel != "" {
		d, err := NewYuNet(cfg)
		if err != nil {
			return nil, err
		}
		return d, nil
	}
	d, err := NewCascade(cfg)
	if err != nil {
		return nil, err
	}
	return d, nil
}

// SelectLargest picks the face with the largest area.
// Ties keep the earlier detection.
func SelectLargest(faces []image.Rectangle) (image.Rectangle, bool) {
	if len(faces) == 0 {
		return image.Rectangle{}, false
	}

	best := faces[0]
	for _, f := range faces[1:] {
		if area(f) > area(best) {
			best = f
		}
	}
	return best, true
}

// ToBox converts an image rectangle to an attention box.
func ToBox(r image.Rectangle) attention.Box {
	return attention.Box{X: r.Min.X, Y: r.Min.Y, W: r.Dx(), H: r.Dy()}
}

func area(r image.Rectangle) int {
	return r.Dx() * r.Dy()
}
