package vision

import (
	"errors"
	"fmt"
	"image"
	"os"
	"sync"

	"github.com/teslashibe/go-focus/pkg/attention"
	"gocv.io/x/gocv"
)

// ErrCascadeNotFound is returned when a cascade file is missing or invalid.
var ErrCascadeNotFound = errors.New("vision: cascade not found")

// CascadeDetector uses OpenCV Haar cascades for faces and eyes.
type CascadeDetector struct {
	face   gocv.CascadeClassifier
	eye    gocv.CascadeClassifier
	config Config
	mu     sync.Mutex
}

// NewCascade loads both cascades.
func NewCascade(cfg Config) (*CascadeDetector, error) {
	face, err := loadCascade(cfg.FaceCascade)
	if err != nil {
		return nil, err
	}
	eye, err := loadCascade(cfg.EyeCascade)
	if err != nil {
		face.Close()
		return nil, err
	}
	return &CascadeDetector{face: face, eye: eye, config: cfg}, nil
}

func loadCascade(path string) (gocv.CascadeClassifier, error) {
	if _, err := os.Stat(path); err != nil {
		return gocv.CascadeClassifier{}, fmt.Errorf("%w: %s", ErrCascadeNotFound, path)
	}
	c := gocv.NewCascadeClassifier()
	if !c.Load(path) {
		c.Close()
		return gocv.CascadeClassifier{}, fmt.Errorf("%w: cannot load %s", ErrCascadeNotFound, path)
	}
	return c, nil
}

// Detect finds the largest face in a BGR frame.
// A frame with no face returns a zero Observation.
func (d *CascadeDetector) Detect(frame gocv.Mat) (attention.Observation, error) {
	if frame.Empty() {
		return attention.Observation{}, fmt.Errorf("empty image")
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(frame, &gray, gocv.ColorBGRToGray)

	faces := d.face.DetectMultiScaleWithParams(gray,
		d.config.FaceScale, d.config.FaceNeighbors, 0,
		image.Point{}, image.Point{},
	)
	rect, ok := SelectLargest(faces)
	if !ok {
		return attention.Observation{}, nil
	}

	return inspect(frame, gray, rect, d.eye, d.config)
}

// Close releases both cascades.
func (d *CascadeDetector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return errors.Join(d.face.Close(), d.eye.Close())
}

// inspect runs the eye cascade inside rect and encodes the face crop.
// No detected eyes means the eyes are closed.
func inspect(frame, gray gocv.Mat, rect image.Rectangle, eye gocv.CascadeClassifier, cfg Config) (attention.Observation, error) {
	roi := gray.Region(rect)
	defer roi.Close()
	minEye := image.Pt(cfg.EyeMinSize, cfg.EyeMinSize)
	eyes := eye.DetectMultiScaleWithParams(roi,
		cfg.EyeScale, cfg.EyeNeighbors, 0,
		minEye, image.Point{},
	)

	crop, err := encodeRegion(frame, rect, cfg.Quality)
	if err != nil {
		return attention.Observation{}, err
	}

	return attention.Observation{
		Box:        ToBox(rect),
		EyesClosed: len(eyes) == 0,
		Face:       crop,
	}, nil
}

// encodeRegion JPEG-encodes rect of frame.
func encodeRegion(frame gocv.Mat, rect image.Rectangle, quality int) ([]byte, error) {
	region := frame.Region(rect)
	defer region.Close()
	return EncodeJPEG(region, quality)
}

// EncodeJPEG encodes a Mat to JPEG bytes owned by Go.
func EncodeJPEG(m gocv.Mat, quality int) ([]byte, error) {
	buf, err := gocv.IMEncodeWithParams(gocv.JPEGFileExt, m, []int{gocv.IMWriteJpegQuality, quality})
	if err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	defer buf.Close()

	src := buf.GetBytes()
	out := make([]byte, len(src))
	copy(out, src)
	return out, nil
}
