package emotion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/teslashibe/go-focus/pkg/attention"
)

// ErrNoClassifier is returned when a chain is built without classifiers.
var ErrNoClassifier = errors.New("emotion: no classifier configured")

// ChainError reports every classifier failure from one Classify call.
type ChainError struct {
	Errors []error
}

// Error implements the error interface.
func (e *ChainError) Error() string {
	if len(e.Errors) == 0 {
		return "emotion chain: no errors recorded"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("emotion chain: %v", e.Errors[0])
	}
	return fmt.Sprintf("emotion chain: all %d classifiers failed, last error: %v",
		len(e.Errors), e.Errors[len(e.Errors)-1])
}

// Unwrap returns the last error in the chain.
func (e *ChainError) Unwrap() error {
	if len(e.Errors) == 0 {
		return nil
	}
	return e.Errors[len(e.Errors)-1]
}

// Chain tries classifiers in order until one succeeds.
type Chain struct {
	classifiers []attention.Classifier
	logger      *slog.Logger
}

// NewChain creates a classifier chain.
func NewChain(logger *slog.Logger, classifiers ...attention.Classifier) (*Chain, error) {
	if len(classifiers) == 0 {
		return nil, ErrNoClassifier
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Chain{
		classifiers: classifiers,
		logger:      logger.With("component", "emotion.chain"),
	}, nil
}

// Classify returns the first successful label.
func (c *Chain) Classify(ctx context.Context, face []byte) (string, error) {
	var errs []error

	for i, cl := range c.classifiers {
		label, err := cl.Classify(ctx, face)
		if err == nil {
			if i > 0 {
				c.logger.Debug("fallback classifier succeeded", "classifier_index", i)
			}
			return label, nil
		}

		errs = append(errs, err)
		c.logger.Warn("classifier failed, trying next",
			"classifier_index", i,
			"error", err,
		)

		if ctx.Err() != nil {
			return "", ctx.Err()
		}
	}

	return "", &ChainError{Errors: errs}
}

// Close closes every classifier that holds resources.
func (c *Chain) Close() error {
	var errs []error
	for _, cl := range c.classifiers {
		if closer, ok := cl.(interface{ Close() error }); ok {
			if err := closer.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

var _ attention.Classifier = (*Chain)(nil)
