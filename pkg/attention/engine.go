package attention

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Collaborators are the external subsystems the engine calls into.
type Collaborators struct {
	Recognizer Recognizer // Optional; identity stays Unknown without it
	Classifier Classifier // Optional; emotion stays Scanning... without it
	Sink       Sink       // Required
	Clock      Clock      // Defaults to SystemClock
	Observers  []Observer
	Hooks      Hooks
	Logger     *slog.Logger
}

// Engine is the per-session attention state machine.
type Engine struct {
	config Config
	clock  Clock
	sink   Sink
	logger *slog.Logger

	identity   *IdentityStabilizer
	emotion    *EmotionStabilizer
	drowsiness *DrowsinessTimer
	history    *History
	observers  []Observer

	frame    uint64
	score    float64
	last     Event
	lastEmit time.Time
}

// NewEngine creates an engine. The emission timer starts now.
func NewEngine(cfg Config, c Collaborators) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if c.Sink == nil {
		return nil, ErrNoSink
	}
	if c.Clock == nil {
		c.Clock = SystemClock{}
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}

	identity := NewIdentityStabilizer(c.Recognizer, cfg.IdentityInterval)
	identity.hooks = c.Hooks
	emotion := NewEmotionStabilizer(c.Classifier, cfg.EmotionInterval, cfg.EmotionWindow)
	emotion.hooks = c.Hooks

	e := &Engine{
		config:     cfg,
		clock:      c.Clock,
		sink:       c.Sink,
		logger:     c.Logger.With("component", "attention.engine"),
		identity:   identity,
		emotion:    emotion,
		drowsiness: NewDrowsinessTimer(cfg.ClosedEyesTime),
		history:    NewHistory(cfg.HistorySize, cfg.HistorySeed),
		observers:  c.Observers,
		score:      cfg.InitialScore,
		lastEmit:   c.Clock.Now(),
	}
	e.last = Event{Identity: identity.Current(), Emotion: emotion.Current()}
	return e, nil
}

// Process runs one observation through the pipeline and returns the
// normalized event. The only error is a failed sink write, wrapped in
// ErrSinkWrite; state has already advanced when it is returned. Cancelling
// ctx does not cancel a record write already started.
func (e *Engine) Process(ctx context.Context, obs Observation) (Event, error) {
	e.frame++
	now := e.clock.Now()

	ev := Event{
		Identity: e.identity.Current(),
		Emotion:  e.emotion.Current(),
	}
	if obs.HasFace() {
		ev.Box = obs.Box
		ev.Identity = e.identity.Update(ctx, e.frame, obs.Face)
		ev.EyesClosed, ev.Alert = e.drowsiness.Update(obs.EyesClosed, now)
		ev.Emotion = e.emotion.Update(ctx, e.frame, obs.Face)
	}

	prev := e.score
	e.score = Integrate(e.score, ev, e.config.Steps)
	e.history.Push(e.score)

	if ev.Alert && !e.last.Alert {
		e.logger.Warn("drowsiness alert",
			"identity", ev.Identity,
			"closed_for", e.drowsiness.ClosedFor(now),
		)
	}
	e.logger.Debug("frame processed",
		"frame", e.frame,
		"face", obs.HasFace(),
		"eyes_closed", ev.EyesClosed,
		"emotion", ev.Emotion,
		"score", e.score,
		"step", e.score-prev,
	)
	e.last = ev

	snap := Snapshot{
		Frame:   e.frame,
		Time:    now,
		Event:   ev,
		Score:   e.score,
		History: e.history.Values(),
	}
	for _, o := range e.observers {
		o.OnFrame(snap)
	}

	if now.Sub(e.lastEmit) > e.config.LogInterval {
		if err := e.emit(ctx, ev, now); err != nil {
			return ev, err
		}
	}
	return ev, nil
}

func (e *Engine) emit(ctx context.Context, ev Event, now time.Time) error {
	rec := Record{
		Time:       now,
		Identity:   ev.Identity,
		Emotion:    ev.Emotion,
		Score:      int(e.score),
		EyesClosed: ev.EyesClosed,
		Alert:      ev.Alert,
	}
	e.lastEmit = now
	// A stop request must not lose the record in flight; sinks bound their
	// own write time.
	if err := e.sink.Write(context.WithoutCancel(ctx), rec); err != nil {
		return fmt.Errorf("%w: %w", ErrSinkWrite, err)
	}
	for _, o := range e.observers {
		o.OnRecord(rec)
	}
	return nil
}

// Frame returns the number of frames processed so far.
func (e *Engine) Frame() uint64 {
	return e.frame
}

// Score returns the current attention score.
func (e *Engine) Score() float64 {
	return e.score
}

// Last returns the event produced by the most recent frame.
func (e *Engine) Last() Event {
	return e.last
}

// History returns the rolling score history, oldest first.
func (e *Engine) History() []float64 {
	return e.history.Values()
}

// Close closes the sink.
func (e *Engine) Close() error {
	return e.sink.Close()
}
