package attention

import "errors"

var (
	// ErrNoMatch is returned by a Recognizer when no identity is close enough.
	ErrNoMatch = errors.New("attention: no identity match")

	// ErrSinkWrite wraps a failure to append a record to the session sink.
	ErrSinkWrite = errors.New("attention: sink write failed")

	// ErrNoSink is returned by NewEngine when no sink is configured.
	ErrNoSink = errors.New("attention: sink required")

	// ErrInvalidConfig is returned when a Config fails validation.
	ErrInvalidConfig = errors.New("attention: invalid config")
)
