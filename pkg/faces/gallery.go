package faces

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/teslashibe/go-focus/pkg/attention"
	"gocv.io/x/gocv"
)

// ErrEmptyImage is returned when an image decodes to nothing.
var ErrEmptyImage = errors.New("faces: empty image")

// Config holds gallery configuration.
type Config struct {
	Dir            string  // Directory of known face images
	DescriptorSize int     // Edge of the square descriptor patch
	MaxDistance    float64 // Matches further than this are unknown
}

// DefaultConfig returns gallery defaults.
func DefaultConfig() Config {
	return Config{
		Dir:            "assets/known_faces",
		DescriptorSize: 64,
		MaxDistance:    0.6,
	}
}

var imageExts = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".bmp": true}

// Gallery recognizes people from a directory of reference images.
type Gallery struct {
	config Config
	logger *slog.Logger

	mu    sync.RWMutex
	index *Index
}

// Open creates the directory if needed and loads every image in it.
func Open(cfg Config, logger *slog.Logger) (*Gallery, error) {
	if cfg.DescriptorSize <= 0 {
		cfg.DescriptorSize = DefaultConfig().DescriptorSize
	}
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create gallery dir: %w", err)
	}

	g := &Gallery{
		config: cfg,
		logger: logger.With("component", "faces.gallery"),
		index:  NewIndex(nil),
	}
	if err := g.Reload(); err != nil {
		return nil, err
	}
	return g, nil
}

// Reload rescans the directory. Unreadable images are skipped with a warning.
func (g *Gallery) Reload() error {
	files, err := os.ReadDir(g.config.Dir)
	if err != nil {
		return fmt.Errorf("read gallery dir: %w", err)
	}

	var entries []Entry
	for _, f := range files {
		if f.IsDir() || !imageExts[strings.ToLower(filepath.Ext(f.Name()))] {
			continue
		}
		path := filepath.Join(g.config.Dir, f.Name())
		img := gocv.IMRead(path, gocv.IMReadGrayScale)
		desc, err := g.describe(img)
		img.Close()
		if err != nil {
			g.logger.Warn("skipping known face", "path", path, "error", err)
			continue
		}
		entries = append(entries, Entry{
			Name:       attention.CanonicalName(f.Name()),
			Path:       path,
			Descriptor: desc,
		})
	}

	g.mu.Lock()
	g.index = NewIndex(entries)
	g.mu.Unlock()

	g.logger.Info("gallery loaded", "dir", g.config.Dir, "faces", len(entries))
	return nil
}

// Names returns the known names.
func (g *Gallery) Names() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.index.Names()
}

// Recognize matches a JPEG face crop. attention.ErrNoMatch means nobody
// in the gallery is close enough.
func (g *Gallery) Recognize(ctx context.Context, face []byte) (attention.Match, error) {
	if err := ctx.Err(); err != nil {
		return attention.Match{}, err
	}

	img, err := gocv.IMDecode(face, gocv.IMReadGrayScale)
	if err != nil {
		return attention.Match{}, fmt.Errorf("decode image: %w", err)
	}
	defer img.Close()

	desc, err := g.describe(img)
	if err != nil {
		return attention.Match{}, err
	}

	g.mu.RLock()
	best, dist, ok := g.index.Nearest(desc)
	g.mu.RUnlock()

	if !ok || dist > g.config.MaxDistance {
		return attention.Match{}, attention.ErrNoMatch
	}
	return attention.Match{Name: best.Path, Distance: dist}, nil
}

// describe equalizes and resizes a grayscale image before Describe.
func (g *Gallery) describe(gray gocv.Mat) ([]float32, error) {
	if gray.Empty() {
		return nil, ErrEmptyImage
	}

	eq := gocv.NewMat()
	defer eq.Close()
	gocv.EqualizeHist(gray, &eq)

	small := gocv.NewMat()
	defer small.Close()
	size := g.config.DescriptorSize
	gocv.Resize(eq, &small, image.Pt(size, size), 0, 0, gocv.InterpolationArea)

	pixels := small.ToBytes()
	if len(pixels) == 0 {
		return nil, ErrEmptyImage
	}
	return Describe(pixels), nil
}

var _ attention.Recognizer = (*Gallery)(nil)
