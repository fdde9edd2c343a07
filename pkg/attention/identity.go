package attention

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
)

// IdentityStabilizer throttles the recognizer to one call every Interval
// frames and holds the last recognized identity in between.
type IdentityStabilizer struct {
	Interval int

	recognizer Recognizer
	current    string
	hooks      Hooks
}

// NewIdentityStabilizer creates a stabilizer starting at UnknownIdentity.
// A nil recognizer leaves the identity at UnknownIdentity forever.
func NewIdentityStabilizer(r Recognizer, interval int) *IdentityStabilizer {
	return &IdentityStabilizer{
		Interval:   interval,
		recognizer: r,
		current:    UnknownIdentity,
	}
}

// Current returns the cached identity.
func (s *IdentityStabilizer) Current() string {
	return s.current
}

// Update runs recognition on attempt frames and returns the cached identity.
//
// A match replaces the cache with its canonical name. ErrNoMatch or an empty
// match resets the cache to UnknownIdentity. Any other recognizer error is
// dropped and the previous identity is kept.
func (s *IdentityStabilizer) Update(ctx context.Context, frame uint64, face []byte) string {
	if s.recognizer == nil || s.Interval <= 0 || frame%uint64(s.Interval) != 0 {
		return s.current
	}

	m, err := s.recognizer.Recognize(ctx, face)
	switch {
	case errors.Is(err, ErrNoMatch):
		s.current = UnknownIdentity
	case err != nil:
		s.hooks.recognitionFailed(err)
	default:
		if name := CanonicalName(m.Name); name != "" {
			s.current = name
		} else {
			s.current = UnknownIdentity
		}
	}
	return s.current
}

// CanonicalName strips any directory and extension from a match reference:
// "db/known/alice.jpg" becomes "alice".
func CanonicalName(ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}
	base := ref
	if i := strings.LastIndexAny(base, `/\`); i >= 0 {
		base = base[i+1:]
	}
	return strings.TrimSuffix(base, filepath.Ext(base))
}
