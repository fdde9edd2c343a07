// Package emotion classifies facial expressions from JPEG face crops.
//
// Classifiers return labels from a small canonical vocabulary so the
// attention engine's engaged-emotion set can match them directly.
package emotion

import (
	"errors"
	"strings"
)

// Canonical labels.
const (
	Angry    = "angry"
	Disgust  = "disgust"
	Fear     = "fear"
	Happy    = "happy"
	Sad      = "sad"
	Surprise = "surprise"
	Neutral  = "neutral"
	Contempt = "contempt"
)

// ErrUnknownLabel is returned when a label is outside the vocabulary.
var ErrUnknownLabel = errors.New("emotion: unknown label")

// Labels lists the canonical vocabulary.
var Labels = []string{Angry, Disgust, Fear, Happy, Sad, Surprise, Neutral, Contempt}

var synonyms = map[string]string{
	"anger":     Angry,
	"angry":     Angry,
	"disgust":   Disgust,
	"disgusted": Disgust,
	"fear":      Fear,
	"fearful":   Fear,
	"scared":    Fear,
	"happy":     Happy,
	"happiness": Happy,
	"joy":       Happy,
	"sad":       Sad,
	"sadness":   Sad,
	"surprise":  Surprise,
	"surprised": Surprise,
	"neutral":   Neutral,
	"calm":      Neutral,
	"contempt":  Contempt,
}

// Normalize maps a raw label to the canonical vocabulary.
func Normalize(label string) (string, error) {
	key := strings.ToLower(strings.TrimSpace(label))
	key = strings.Trim(key, ".,!\"'")
	if canon, ok := synonyms[key]; ok {
		return canon, nil
	}
	return "", ErrUnknownLabel
}
