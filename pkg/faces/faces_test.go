package faces

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/teslashibe/go-focus/pkg/attention"
)

func TestDescribe(t *testing.T) {
	desc := Describe([]byte{0, 64, 128, 255})

	var sum, norm float64
	for _, v := range desc {
		sum += float64(v)
		norm += float64(v) * float64(v)
	}
	if math.Abs(sum) > 1e-5 {
		t.Errorf("mean = %f, want 0", sum/4)
	}
	if math.Abs(norm-1) > 1e-5 {
		t.Errorf("norm = %f, want 1", norm)
	}

	flat := Describe([]byte{7, 7, 7})
	for _, v := range flat {
		if v != 0 {
			t.Fatalf("flat image should give zero vector, got %v", flat)
		}
	}
}

func TestIndexNearest(t *testing.T) {
	ix := NewIndex([]Entry{
		{Name: "bob", Descriptor: []float32{0, 1}},
		{Name: "alice", Descriptor: []float32{1, 0}},
		{Name: "short", Descriptor: []float32{1}},
	})

	if got := ix.Names(); len(got) != 3 || got[0] != "alice" {
		t.Errorf("Names() = %v, want sorted", got)
	}

	best, dist, ok := ix.Nearest([]float32{0.9, 0.1})
	if !ok || best.Name != "alice" {
		t.Fatalf("Nearest = %v, %v", best.Name, ok)
	}
	want := math.Sqrt(0.01 + 0.01)
	if math.Abs(dist-want) > 1e-6 {
		t.Errorf("dist = %f, want %f", dist, want)
	}

	if _, _, ok := NewIndex(nil).Nearest([]float32{1}); ok {
		t.Error("empty index should not match")
	}
	if _, _, ok := ix.Nearest([]float32{1, 0, 0}); ok {
		t.Error("length mismatch should not match")
	}
}

func TestDistance(t *testing.T) {
	if d := Distance([]float32{0, 0}, []float32{3, 4}); d != 5 {
		t.Errorf("Distance = %f, want 5", d)
	}
}

// pattern draws a 96x96 grayscale test image.
func pattern(kind string) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, 96, 96))
	for y := 0; y < 96; y++ {
		for x := 0; x < 96; x++ {
			var v uint8
			switch kind {
			case "horizontal":
				v = uint8(x * 255 / 95)
			case "vertical":
				v = uint8(y * 255 / 95)
			case "checker":
				if (x/12+y/12)%2 == 0 {
					v = 255
				}
			}
			img.SetGray(x, y, color.Gray{Y: v})
		}
	}
	return img
}

func writePNG(t *testing.T, path string, img image.Image) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

func encodeJPEG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 95}); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestGalleryRecognize(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "Ada.png"), pattern("horizontal"))
	writePNG(t, filepath.Join(dir, "Grace.png"), pattern("vertical"))
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("skip me"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := DefaultConfig()
	cfg.Dir = dir
	g, err := Open(cfg, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if names := g.Names(); len(names) != 2 || names[0] != "Ada" || names[1] != "Grace" {
		t.Fatalf("Names() = %v", names)
	}

	m, err := g.Recognize(context.Background(), encodeJPEG(t, pattern("vertical")))
	if err != nil {
		t.Fatalf("Recognize: %v", err)
	}
	if attention.CanonicalName(m.Name) != "Grace" {
		t.Errorf("match = %q, want Grace", m.Name)
	}

	_, err = g.Recognize(context.Background(), encodeJPEG(t, pattern("checker")))
	if !errors.Is(err, attention.ErrNoMatch) {
		t.Errorf("checker err = %v, want ErrNoMatch", err)
	}
}

func TestGalleryCreatesDirAndReloads(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "known")
	cfg := DefaultConfig()
	cfg.Dir = dir

	g, err := Open(cfg, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, err := os.Stat(dir); err != nil {
		t.Fatalf("dir not created: %v", err)
	}

	face := encodeJPEG(t, pattern("horizontal"))
	if _, err := g.Recognize(context.Background(), face); !errors.Is(err, attention.ErrNoMatch) {
		t.Errorf("empty gallery err = %v, want ErrNoMatch", err)
	}

	writePNG(t, filepath.Join(dir, "Linus.png"), pattern("horizontal"))
	if err := g.Reload(); err != nil {
		t.Fatal(err)
	}
	if _, err := g.Recognize(context.Background(), face); err != nil {
		t.Errorf("after reload err = %v", err)
	}
}

func TestGalleryRecognizeInvalidImage(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Dir = t.TempDir()
	g, err := Open(cfg, nil)
	if err != nil {
		t.Fatal(err)
	}
	_, err = g.Recognize(context.Background(), []byte("not a jpeg"))
	if err == nil || errors.Is(err, attention.ErrNoMatch) {
		t.Errorf("err = %v, want decode failure", err)
	}
}
