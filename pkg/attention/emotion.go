package attention

import "context"

// EmotionStabilizer smooths raw classifier labels by reporting the mode of
// a bounded window of recent labels.
type EmotionStabilizer struct {
	Interval int

	classifier Classifier
	window     []string // oldest first, len <= capacity
	capacity   int
	current    string
	hooks      Hooks
}

// NewEmotionStabilizer creates a stabilizer with an empty window of the
// given capacity, reporting ScanningEmotion until the first classification.
func NewEmotionStabilizer(c Classifier, interval, capacity int) *EmotionStabilizer {
	if capacity <= 0 {
		capacity = 1
	}
	return &EmotionStabilizer{
		Interval:   interval,
		classifier: c,
		window:     make([]string, 0, capacity),
		capacity:   capacity,
		current:    ScanningEmotion,
	}
}

// Current returns the stabilized emotion.
func (s *EmotionStabilizer) Current() string {
	return s.current
}

// Window returns a copy of the raw label window, oldest first.
func (s *EmotionStabilizer) Window() []string {
	return append([]string(nil), s.window...)
}

// Update classifies the face on attempt frames and returns the stabilized
// emotion. A classifier failure leaves the window and label untouched.
func (s *EmotionStabilizer) Update(ctx context.Context, frame uint64, face []byte) string {
	if s.classifier == nil || s.Interval <= 0 || frame%uint64(s.Interval) != 0 {
		return s.current
	}

	raw, err := s.classifier.Classify(ctx, face)
	if err != nil {
		s.hooks.classificationFailed(err)
		return s.current
	}
	return s.Observe(raw)
}

// Observe pushes one raw label into the window and recomputes the
// stabilized emotion.
func (s *EmotionStabilizer) Observe(raw string) string {
	if len(s.window) == s.capacity {
		copy(s.window, s.window[1:])
		s.window = s.window[:len(s.window)-1]
	}
	s.window = append(s.window, raw)
	s.current = Mode(s.window, raw)
	return s.current
}

// Mode returns the label occurring strictly more often than any other in
// labels. When two or more labels share the top count it returns latest,
// the most recently observed raw label, rather than an arbitrary winner.
func Mode(labels []string, latest string) string {
	if len(labels) == 0 {
		return latest
	}

	counts := make(map[string]int, len(labels))
	best, bestCount, tied := "", 0, false
	for _, l := range labels {
		counts[l]++
		switch n := counts[l]; {
		case n > bestCount:
			best, bestCount, tied = l, n, false
		case n == bestCount && l != best:
			tied = true
		}
	}
	if tied {
		return latest
	}
	return best
}
