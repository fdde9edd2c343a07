package attention

// Score bounds.
const (
	MinScore = 0
	MaxScore = 100
)

// StepPolicy is the signed score increment per event category.
type StepPolicy struct {
	NoFace       float64 // Passive decay when nobody is in frame
	EyesClosed   float64 // Face present, eyes closed (emotion ignored)
	EyesOpen     float64 // Face present, eyes open
	EngagedBonus float64 // Added to EyesOpen for engaged emotions

	// Engaged lists the stabilized emotions that earn EngagedBonus.
	Engaged []string
}

// DefaultStepPolicy returns the reward/decay steps the score is tuned for.
func DefaultStepPolicy() StepPolicy {
	return StepPolicy{
		NoFace:       -0.5,
		EyesClosed:   -5,
		EyesOpen:     1,
		EngagedBonus: 0.5,
		Engaged:      []string{"happy", "surprise", "neutral"},
	}
}

func (p StepPolicy) engaged(emotion string) bool {
	for _, e := range p.Engaged {
		if e == emotion {
			return true
		}
	}
	return false
}

// Step returns the increment for one event.
func (p StepPolicy) Step(ev Event) float64 {
	if ev.Box.W <= 0 {
		return p.NoFace
	}
	if ev.EyesClosed {
		return p.EyesClosed
	}
	step := p.EyesOpen
	if p.engaged(ev.Emotion) {
		step += p.EngagedBonus
	}
	return step
}

// Integrate applies one event to the previous score and clamps the result.
func Integrate(prev float64, ev Event, p StepPolicy) float64 {
	return clamp(prev+p.Step(ev), MinScore, MaxScore)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
