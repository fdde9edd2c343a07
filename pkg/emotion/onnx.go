package emotion

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"sync"

	"github.com/teslashibe/go-focus/pkg/attention"
	"gocv.io/x/gocv"
)

// ErrModelNotFound is returned when the ONNX model file is missing.
var ErrModelNotFound = errors.New("emotion: model file not found")

// FER+ output order.
var ferplusLabels = []string{Neutral, Happy, Surprise, Sad, Angry, Disgust, Fear, Contempt}

// Config holds ONNX classifier configuration.
type Config struct {
	ModelPath string // Path to the FER+ ONNX model
	InputSize int    // Square input edge in pixels
}

// DefaultConfig returns defaults for emotion-ferplus-8.onnx.
func DefaultConfig() Config {
	return Config{
		ModelPath: "models/emotion-ferplus-8.onnx",
		InputSize: 64,
	}
}

// ONNXClassifier runs the FER+ network through OpenCV's DNN module.
type ONNXClassifier struct {
	net    gocv.Net
	config Config
	mu     sync.Mutex // gocv.Net is not safe for concurrent Forward
}

// NewONNX loads the model.
func NewONNX(cfg Config) (*ONNXClassifier, error) {
	if _, err := os.Stat(cfg.ModelPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrModelNotFound, cfg.ModelPath)
	}
	if cfg.InputSize <= 0 {
		cfg.InputSize = DefaultConfig().InputSize
	}

	net := gocv.ReadNetFromONNX(cfg.ModelPath)
	if net.Empty() {
		return nil, fmt.Errorf("failed to load emotion model from %s", cfg.ModelPath)
	}
	net.SetPreferableBackend(gocv.NetBackendDefault)
	net.SetPreferableTarget(gocv.NetTargetCPU)

	return &ONNXClassifier{net: net, config: cfg}, nil
}

// Classify returns the highest scoring FER+ label for a JPEG face crop.
func (c *ONNXClassifier) Classify(ctx context.Context, face []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	img, err := gocv.IMDecode(face, gocv.IMReadGrayScale)
	if err != nil {
		return "", fmt.Errorf("decode image: %w", err)
	}
	defer img.Close()
	if img.Empty() {
		return "", fmt.Errorf("empty image")
	}

	size := image.Pt(c.config.InputSize, c.config.InputSize)
	blob := gocv.BlobFromImage(img, 1.0, size, gocv.NewScalar(0, 0, 0, 0), false, false)
	defer blob.Close()

	c.mu.Lock()
	defer c.mu.Unlock()

	c.net.SetInput(blob, "")
	out := c.net.Forward("")
	defer out.Close()

	scores, err := out.DataPtrFloat32()
	if err != nil {
		return "", fmt.Errorf("read scores: %w", err)
	}
	idx := argmax(scores)
	if idx < 0 || idx >= len(ferplusLabels) {
		return "", fmt.Errorf("%w: output index %d", ErrUnknownLabel, idx)
	}
	return ferplusLabels[idx], nil
}

// Close releases the network.
func (c *ONNXClassifier) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.net.Close()
}

// argmax returns the index of the largest score, or -1 for no scores.
func argmax(scores []float32) int {
	best := -1
	for i, s := range scores {
		if best < 0 || s > scores[best] {
			best = i
		}
	}
	return best
}

var _ attention.Classifier = (*ONNXClassifier)(nil)
