// Package faces matches face crops against a directory of known people.
package faces

import (
	"math"
	"sort"
)

// Entry is one known face.
type Entry struct {
	Name       string    // Display name derived from the file
	Path       string    // Source image
	Descriptor []float32 // Unit-length appearance vector
}

// Index is a brute-force nearest neighbour index over descriptors.
type Index struct {
	entries []Entry
}

// NewIndex builds an index from entries.
func NewIndex(entries []Entry) *Index {
	sorted := make([]Entry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })
	return &Index{entries: sorted}
}

// Len returns the number of entries.
func (ix *Index) Len() int {
	return len(ix.entries)
}

// Names returns entry names in index order.
func (ix *Index) Names() []string {
	names := make([]string, len(ix.entries))
	for i, e := range ix.entries {
		names[i] = e.Name
	}
	return names
}

// Nearest returns the closest entry and its euclidean distance.
// ok is false when the index is empty or no descriptor has a matching length.
func (ix *Index) Nearest(desc []float32) (best Entry, dist float64, ok bool) {
	dist = math.Inf(1)
	for _, e := range ix.entries {
		if len(e.Descriptor) != len(desc) {
			continue
		}
		d := Distance(e.Descriptor, desc)
		if d < dist {
			best, dist, ok = e, d, true
		}
	}
	return best, dist, ok
}

// Distance is the euclidean distance between equal-length vectors.
func Distance(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum)
}

// Describe converts 8-bit pixels to a zero-mean unit vector.
func Describe(pixels []byte) []float32 {
	var mean float64
	for _, p := range pixels {
		mean += float64(p)
	}
	mean /= float64(len(pixels))

	desc := make([]float32, len(pixels))
	for i, p := range pixels {
		desc[i] = float32((float64(p) - mean) / 255)
	}
	return Normalize(desc)
}

// Normalize scales v to unit length in place. Zero vectors are left alone.
func Normalize(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return v
	}
	n := float32(math.Sqrt(sum))
	for i := range v {
		v[i] /= n
	}
	return v
}
