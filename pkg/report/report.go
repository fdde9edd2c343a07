// Package report summarizes a recorded session.
package report

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/teslashibe/go-focus/pkg/attention"
)

// ErrEmptySession is returned when there are no records to summarize.
var ErrEmptySession = errors.New("report: empty session")

// Ratings.
const (
	RatingExcellent        = "Excellent"
	RatingGood             = "Good"
	RatingNeedsImprovement = "Needs Improvement"
)

// Summary describes one session.
type Summary struct {
	Records         int            `json:"records"`
	Duration        time.Duration  `json:"duration"`
	AverageScore    float64        `json:"average_score"`
	DominantEmotion string         `json:"dominant_emotion"`
	Emotions        map[string]int `json:"emotions"`
	EyesClosed      int            `json:"eyes_closed"`
	EyesOpen        int            `json:"eyes_open"`
	Alerts          int            `json:"alerts"`
	Rating          string         `json:"rating"`
}

// Summarize aggregates records written every interval.
func Summarize(records []attention.Record, interval time.Duration) (Summary, error) {
	if len(records) == 0 {
		return Summary{}, ErrEmptySession
	}

	s := Summary{
		Records:  len(records),
		Duration: time.Duration(len(records)) * interval,
		Emotions: make(map[string]int),
	}

	var total float64
	for _, r := range records {
		total += float64(r.Score)
		s.Emotions[r.Emotion]++
		if r.EyesClosed {
			s.EyesClosed++
		} else {
			s.EyesOpen++
		}
		if r.Alert {
			s.Alerts++
		}
	}

	s.AverageScore = total / float64(len(records))
	s.DominantEmotion = Dominant(s.Emotions)
	s.Rating = Rate(s.AverageScore)
	return s, nil
}

// Dominant returns the most frequent label. Ties go to the smallest label.
func Dominant(counts map[string]int) string {
	best, bestN := "", 0
	for label, n := range counts {
		if n > bestN || (n == bestN && label < best) {
			best, bestN = label, n
		}
	}
	return best
}

// Rate maps an average score to a rating.
func Rate(avg float64) string {
	switch {
	case avg > 80:
		return RatingExcellent
	case avg > 50:
		return RatingGood
	default:
		return RatingNeedsImprovement
	}
}

// Write prints the summary as a text block.
func (s Summary) Write(w io.Writer) error {
	var b strings.Builder
	fmt.Fprintln(&b, "SESSION SUMMARY")
	fmt.Fprintln(&b, strings.Repeat("-", 28))
	fmt.Fprintf(&b, "Total Duration:   %.0f seconds\n", s.Duration.Seconds())
	fmt.Fprintf(&b, "Average Focus:    %.1f%%\n", s.AverageScore)
	fmt.Fprintf(&b, "Dominant Mood:    %s\n", s.DominantEmotion)
	fmt.Fprintf(&b, "Eyes Open/Closed: %d/%d\n", s.EyesOpen, s.EyesClosed)
	fmt.Fprintf(&b, "Alerts:           %d\n", s.Alerts)
	fmt.Fprintln(&b)
	fmt.Fprintln(&b, "Emotion Breakdown:")
	for _, label := range sortedLabels(s.Emotions) {
		pct := 100 * float64(s.Emotions[label]) / float64(s.Records)
		fmt.Fprintf(&b, "  %-12s %5.1f%%\n", label, pct)
	}
	fmt.Fprintln(&b)
	fmt.Fprintf(&b, "Performance Rating: %s\n", s.Rating)

	_, err := io.WriteString(w, b.String())
	return err
}

// sortedLabels orders labels by count, then name.
func sortedLabels(counts map[string]int) []string {
	labels := make([]string, 0, len(counts))
	for l := range counts {
		labels = append(labels, l)
	}
	sort.Slice(labels, func(i, j int) bool {
		if counts[labels[i]] != counts[labels[j]] {
			return counts[labels[i]] > counts[labels[j]]
		}
		return labels[i] < labels[j]
	})
	return labels
}
