package attention

import (
	"math/rand"
	"testing"
)

func TestStepPolicy_Step(t *testing.T) {
	p := DefaultStepPolicy()
	faceBox := Box{W: 80, H: 80}

	tests := []struct {
		name     string
		event    Event
		expected float64
	}{
		{"no face", Event{Emotion: "happy"}, -0.5},
		{"no face ignores closed eyes", Event{EyesClosed: true}, -0.5},
		{"eyes closed", Event{Box: faceBox, EyesClosed: true, Emotion: "happy"}, -5},
		{"eyes open, happy", Event{Box: faceBox, Emotion: "happy"}, 1.5},
		{"eyes open, surprise", Event{Box: faceBox, Emotion: "surprise"}, 1.5},
		{"eyes open, neutral", Event{Box: faceBox, Emotion: "neutral"}, 1.5},
		{"eyes open, sad", Event{Box: faceBox, Emotion: "sad"}, 1},
		{"eyes open, scanning", Event{Box: faceBox, Emotion: ScanningEmotion}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := p.Step(tt.event); !approxEqual(got, tt.expected) {
				t.Errorf("Step() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestIntegrate_NoFaceFromNeutral(t *testing.T) {
	got := Integrate(50, Event{}, DefaultStepPolicy())
	if !approxEqual(got, 49.5) {
		t.Errorf("Integrate() = %v, want 49.5", got)
	}
}

func TestIntegrate_Clamps(t *testing.T) {
	p := DefaultStepPolicy()
	open := Event{Box: Box{W: 10, H: 10}, Emotion: "happy"}
	closed := Event{Box: Box{W: 10, H: 10}, EyesClosed: true}

	if got := Integrate(99.5, open, p); got != 100 {
		t.Errorf("upper clamp: got %v, want 100", got)
	}
	if got := Integrate(3, closed, p); got != 0 {
		t.Errorf("lower clamp: got %v, want 0", got)
	}
	if got := Integrate(0.2, Event{}, p); got != 0 {
		t.Errorf("decay clamp: got %v, want 0", got)
	}
}

func TestIntegrate_StaysInRange(t *testing.T) {
	p := DefaultStepPolicy()
	rng := rand.New(rand.NewSource(7))
	emotions := []string{"happy", "sad", "angry", "neutral", "surprise", "fear"}

	score := 50.0
	for i := 0; i < 10000; i++ {
		var ev Event
		if rng.Intn(4) != 0 {
			ev.Box = Box{W: 50, H: 50}
			ev.EyesClosed = rng.Intn(3) == 0
			ev.Emotion = emotions[rng.Intn(len(emotions))]
		}
		score = Integrate(score, ev, p)
		if score < MinScore || score > MaxScore {
			t.Fatalf("step %d: score %v left [0,100]", i, score)
		}
	}
}
