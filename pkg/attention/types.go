package attention

import (
	"context"
	"time"
)

// Default labels before any collaborator has answered.
const (
	UnknownIdentity = "Unknown"
	ScanningEmotion = "Scanning..."
)

// Box is a face bounding box in pixels. The zero Box means "no face".
type Box struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

// Empty reports whether the box holds no face.
func (b Box) Empty() bool {
	return b.W <= 0 || b.H <= 0
}

// Area returns the box area in pixels.
func (b Box) Area() int {
	if b.Empty() {
		return 0
	}
	return b.W * b.H
}

// Observation is what the perception layer reports for one frame.
type Observation struct {
	// Box is the primary face, zero when no face was found.
	Box Box

	// EyesClosed is only meaningful when Box is not empty.
	EyesClosed bool

	// Face is the JPEG-encoded face crop handed to the recognizer and
	// classifier. Nil when no face was found.
	Face []byte
}

// HasFace reports whether a face was detected in the frame.
func (o Observation) HasFace() bool {
	return !o.Box.Empty()
}

// Event is the normalized per-frame record fed to the score integrator.
type Event struct {
	Identity   string `json:"identity"`
	Emotion    string `json:"emotion"`
	EyesClosed bool   `json:"eyes_closed"`
	Alert      bool   `json:"alert"`
	Box        Box    `json:"box"`
}

// Record is one emitted row of the session log.
type Record struct {
	Time       time.Time `json:"time"`
	Identity   string    `json:"identity"`
	Emotion    string    `json:"emotion"`
	Score      int       `json:"score"`
	EyesClosed bool      `json:"eyes_closed"`
	Alert      bool      `json:"alert"`
}

// Snapshot is the engine state after one frame, for live consumers.
type Snapshot struct {
	Frame   uint64    `json:"frame"`
	Time    time.Time `json:"time"`
	Event   Event     `json:"event"`
	Score   float64   `json:"score"`
	History []float64 `json:"history,omitempty"`
}

// Match is a recognizer hit.
type Match struct {
	// Name is the canonical reference of the matched identity, usually the
	// path of the reference image.
	Name string

	// Distance is the descriptor distance, lower is closer.
	Distance float64
}

// Recognizer identifies the person in a face crop.
// It returns ErrNoMatch when nobody in its database is close enough.
type Recognizer interface {
	Recognize(ctx context.Context, face []byte) (Match, error)
}

// Classifier returns the raw emotion label for a face crop.
type Classifier interface {
	Classify(ctx context.Context, face []byte) (string, error)
}

// Sink receives emitted records.
type Sink interface {
	Write(ctx context.Context, rec Record) error
	Close() error
}

// Observer is notified after every processed frame and every emission.
// Implementations must not retain the History slice beyond the call
// unless they copy it.
type Observer interface {
	OnFrame(s Snapshot)
	OnRecord(r Record)
}

// Hooks receive collaborator failures that the stabilizers swallow.
type Hooks struct {
	RecognitionFailed    func(err error)
	ClassificationFailed func(err error)
}

func (h Hooks) recognitionFailed(err error) {
	if h.RecognitionFailed != nil {
		h.RecognitionFailed(err)
	}
}

func (h Hooks) classificationFailed(err error) {
	if h.ClassificationFailed != nil {
		h.ClassificationFailed(err)
	}
}

// Clock supplies wall-clock time to the engine.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the real wall clock.
type SystemClock struct{}

// Now returns time.Now().
func (SystemClock) Now() time.Time { return time.Now() }
