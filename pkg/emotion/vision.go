package emotion

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"unicode"

	"github.com/teslashibe/go-focus/pkg/attention"
	"github.com/teslashibe/go-focus/pkg/inference"
)

// DefaultPrompt constrains the model to a single vocabulary word.
const DefaultPrompt = "Classify the facial expression in this image. " +
	"Answer with exactly one word from: angry, disgust, fear, happy, sad, surprise, neutral."

// ErrRejected is returned once the provider has refused the credentials.
var ErrRejected = errors.New("emotion: vision provider rejected credentials")

// VisionClassifier asks a hosted vision model for the expression.
// After a 401 it stops calling the provider for the rest of the session.
type VisionClassifier struct {
	provider inference.Provider
	prompt   string
	rejected atomic.Bool
}

// NewVisionClassifier wraps a provider. An empty prompt uses DefaultPrompt.
func NewVisionClassifier(p inference.Provider, prompt string) *VisionClassifier {
	if prompt == "" {
		prompt = DefaultPrompt
	}
	return &VisionClassifier{provider: p, prompt: prompt}
}

// Classify sends the crop and returns the first vocabulary word in the answer.
func (v *VisionClassifier) Classify(ctx context.Context, face []byte) (string, error) {
	if v.rejected.Load() {
		return "", ErrRejected
	}
	resp, err := v.provider.Vision(ctx, &inference.VisionRequest{
		Image:  face,
		Prompt: v.prompt,
	})
	if err != nil {
		var apiErr *inference.APIError
		if errors.As(err, &apiErr) && apiErr.IsUnauthorized() {
			v.rejected.Store(true)
			return "", fmt.Errorf("%w: %w", ErrRejected, err)
		}
		return "", fmt.Errorf("vision classify: %w", err)
	}

	words := strings.FieldsFunc(resp.Content, func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	for _, w := range words {
		if label, err := Normalize(w); err == nil {
			return label, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownLabel, resp.Content)
}

// Close closes the underlying provider.
func (v *VisionClassifier) Close() error {
	return v.provider.Close()
}

var _ attention.Classifier = (*VisionClassifier)(nil)
