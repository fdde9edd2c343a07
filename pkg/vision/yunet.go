package vision

import (
	"errors"
	"fmt"
	"image"
	"os"
	"sync"

	"gocv.io/x/gocv"

	"github.com/teslashibe/go-focus/pkg/attention"
)

// ErrModelNotFound is returned when the YuNet model file is missing.
var ErrModelNotFound = errors.New("vision: face model not found")

// YuNetDetector finds faces with OpenCV's FaceDetectorYN and checks the
// eyes with the Haar eye cascade.
type YuNetDetector struct {
	detector gocv.FaceDetectorYN
	eye      gocv.CascadeClassifier
	config   Config
	mu       sync.Mutex
}

// NewYuNet loads the YuNet model and the eye cascade.
func NewYuNet(cfg Config) (*YuNetDetector, error) {
	if _, err := os.Stat(cfg.FaceModel); os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrModelNotFound, cfg.FaceModel)
	}
	eye, err := loadCascade(cfg.EyeCascade)
	if err != nil {
		return nil, err
	}

	// Input size is reset per frame in Detect.
	detector := gocv.NewFaceDetectorYNWithParams(
		cfg.FaceModel,
		"",
		image.Pt(320, 320),
		float32(cfg.ScoreThreshold),
		0.3,  // NMS threshold
		5000, // Top K
		int(gocv.NetBackendDefault),
		int(gocv.NetTargetCPU),
	)

	return &YuNetDetector{detector: detector, eye: eye, config: cfg}, nil
}

// Detect finds the largest confident face in a BGR frame.
func (d *YuNetDetector) Detect(frame gocv.Mat) (attention.Observation, error) {
	if frame.Empty() {
		return attention.Observation{}, fmt.Errorf("empty image")
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.detector.SetInputSize(image.Pt(frame.Cols(), frame.Rows()))
	faces := gocv.NewMat()
	defer faces.Close()
	d.detector.Detect(frame, &faces)

	// Each row: x, y, w, h, five landmark pairs, score.
	bounds := image.Rect(0, 0, frame.Cols(), frame.Rows())
	var rects []image.Rectangle
	for r := 0; r < faces.Rows(); r++ {
		if float64(faces.GetFloatAt(r, 14)) < d.config.ScoreThreshold {
			continue
		}
		x := int(faces.GetFloatAt(r, 0))
		y := int(faces.GetFloatAt(r, 1))
		w := int(faces.GetFloatAt(r, 2))
		h := int(faces.GetFloatAt(r, 3))
		rect := image.Rect(x, y, x+w, y+h).Intersect(bounds)
		if !rect.Empty() {
			rects = append(rects, rect)
		}
	}

	rect, ok := SelectLargest(rects)
	if !ok {
		return attention.Observation{}, nil
	}

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(frame, &gray, gocv.ColorBGRToGray)
	return inspect(frame, gray, rect, d.eye, d.config)
}

// Close releases the detector resources.
func (d *YuNetDetector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.detector.Close()
	return d.eye.Close()
}

var (
	_ Detector = (*YuNetDetector)(nil)
	_ Detector = (*CascadeDetector)(nil)
)
