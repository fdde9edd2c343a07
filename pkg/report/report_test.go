package report

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/teslashibe/go-focus/pkg/attention"
)

func records(scores []int, emotions []string) []attention.Record {
	out := make([]attention.Record, len(scores))
	for i := range scores {
		out[i] = attention.Record{Score: scores[i], Emotion: emotions[i%len(emotions)]}
	}
	return out
}

func TestSummarizeEmpty(t *testing.T) {
	if _, err := Summarize(nil, time.Second); !errors.Is(err, ErrEmptySession) {
		t.Errorf("err = %v, want ErrEmptySession", err)
	}
}

func TestSummarize(t *testing.T) {
	recs := []attention.Record{
		{Score: 60, Emotion: "happy"},
		{Score: 70, Emotion: "neutral", EyesClosed: true},
		{Score: 40, Emotion: "happy", EyesClosed: true, Alert: true},
		{Score: 90, Emotion: "sad"},
	}

	s, err := Summarize(recs, time.Second)
	if err != nil {
		t.Fatal(err)
	}
	if s.Records != 4 || s.Duration != 4*time.Second {
		t.Errorf("Records/Duration = %d/%v", s.Records, s.Duration)
	}
	if s.AverageScore != 65 {
		t.Errorf("AverageScore = %v, want 65", s.AverageScore)
	}
	if s.DominantEmotion != "happy" {
		t.Errorf("DominantEmotion = %q, want happy", s.DominantEmotion)
	}
	if s.EyesClosed != 2 || s.EyesOpen != 2 || s.Alerts != 1 {
		t.Errorf("eyes/alerts = %d/%d/%d", s.EyesClosed, s.EyesOpen, s.Alerts)
	}
	if s.Rating != RatingGood {
		t.Errorf("Rating = %q, want Good", s.Rating)
	}
}

func TestDominantTieBreak(t *testing.T) {
	got := Dominant(map[string]int{"sad": 2, "happy": 2, "neutral": 1})
	if got != "happy" {
		t.Errorf("Dominant = %q, want happy", got)
	}
	if Dominant(nil) != "" {
		t.Error("Dominant(nil) should be empty")
	}
}

func TestRate(t *testing.T) {
	tests := []struct {
		avg  float64
		want string
	}{
		{100, RatingExcellent},
		{80.1, RatingExcellent},
		{80, RatingGood},
		{50.5, RatingGood},
		{50, RatingNeedsImprovement},
		{0, RatingNeedsImprovement},
	}
	for _, tt := range tests {
		if got := Rate(tt.avg); got != tt.want {
			t.Errorf("Rate(%v) = %q, want %q", tt.avg, got, tt.want)
		}
	}
}

func TestSummaryWrite(t *testing.T) {
	s, err := Summarize(records([]int{90, 85, 95}, []string{"happy", "happy", "neutral"}), time.Second)
	if err != nil {
		t.Fatal(err)
	}

	var b strings.Builder
	if err := s.Write(&b); err != nil {
		t.Fatal(err)
	}
	out := b.String()
	for _, want := range []string{
		"Total Duration:   3 seconds",
		"Average Focus:    90.0%",
		"Dominant Mood:    happy",
		"happy         66.7%",
		"Performance Rating: Excellent",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
