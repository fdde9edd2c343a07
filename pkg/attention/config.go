package attention

import (
	"fmt"
	"time"
)

// Config holds all tunable parameters of the attention engine.
type Config struct {
	// Collaborator throttling (in frames)
	IdentityInterval int // Recognize on frames that are multiples of this
	EmotionInterval  int // Classify on frames that are multiples of this

	// Stabilization
	EmotionWindow  int           // Raw emotion labels kept for the mode
	ClosedEyesTime time.Duration // Continuous closure before the alert fires

	// Scoring
	Steps        StepPolicy
	InitialScore float64

	// History
	HistorySize int
	HistorySeed float64

	// Emission
	LogInterval time.Duration // Minimum wall-clock gap between records
}

// DefaultConfig returns the production configuration.
func DefaultConfig() Config {
	return Config{
		IdentityInterval: 30,
		EmotionInterval:  5,

		EmotionWindow:  10,
		ClosedEyesTime: 3 * time.Second,

		Steps:        DefaultStepPolicy(),
		InitialScore: 50,

		HistorySize: 100,
		HistorySeed: 50,

		LogInterval: time.Second,
	}
}

// Validate checks that the configuration is usable.
func (c Config) Validate() error {
	switch {
	case c.IdentityInterval <= 0:
		return fmt.Errorf("%w: identity interval must be positive", ErrInvalidConfig)
	case c.EmotionInterval <= 0:
		return fmt.Errorf("%w: emotion interval must be positive", ErrInvalidConfig)
	case c.EmotionWindow <= 0:
		return fmt.Errorf("%w: emotion window must be positive", ErrInvalidConfig)
	case c.ClosedEyesTime < 0:
		return fmt.Errorf("%w: closed-eyes threshold must not be negative", ErrInvalidConfig)
	case c.HistorySize <= 0:
		return fmt.Errorf("%w: history size must be positive", ErrInvalidConfig)
	case c.LogInterval < 0:
		return fmt.Errorf("%w: log interval must not be negative", ErrInvalidConfig)
	case c.InitialScore < MinScore || c.InitialScore > MaxScore:
		return fmt.Errorf("%w: initial score %.1f outside [%d, %d]", ErrInvalidConfig, c.InitialScore, MinScore, MaxScore)
	}
	return nil
}
