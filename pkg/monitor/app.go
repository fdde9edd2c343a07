package monitor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"gocv.io/x/gocv"

	"github.com/teslashibe/go-focus/pkg/attention"
	"github.com/teslashibe/go-focus/pkg/camera"
	"github.com/teslashibe/go-focus/pkg/emotion"
	"github.com/teslashibe/go-focus/pkg/faces"
	"github.com/teslashibe/go-focus/pkg/inference"
	"github.com/teslashibe/go-focus/pkg/metrics"
	"github.com/teslashibe/go-focus/pkg/sessionlog"
	"github.com/teslashibe/go-focus/pkg/vision"
	"github.com/teslashibe/go-focus/pkg/web"
)

// FrameSource yields camera frames.
type FrameSource interface {
	Read(dst *gocv.Mat) error
	Close() error
}

// Detector turns a frame into an observation of the attended face.
type Detector interface {
	Detect(frame gocv.Mat) (attention.Observation, error)
	Close() error
}

// Option customizes an App.
type Option func(*App)

// WithSource replaces the camera.
func WithSource(s FrameSource) Option {
	return func(a *App) { a.source = s }
}

// WithDetector replaces the configured face detector.
func WithDetector(d Detector) Option {
	return func(a *App) { a.detector = d }
}

// WithClock replaces the wall clock.
func WithClock(c attention.Clock) Option {
	return func(a *App) { a.clock = c }
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(a *App) { a.logger = l }
}

// App is one monitoring session.
type App struct {
	config Config
	logger *slog.Logger
	clock  attention.Clock

	session string
	start   time.Time

	source     FrameSource
	detector   Detector
	recognizer attention.Recognizer
	classifier attention.Classifier
	sink       attention.Sink
	csvPath    string

	engine  *attention.Engine
	metrics *metrics.Collector
	web     *web.Server
}

// New creates a session with the given configuration.
func New(cfg Config, opts ...Option) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	a := &App{
		config:  cfg,
		logger:  slog.Default(),
		clock:   attention.SystemClock{},
		session: uuid.NewString(),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.logger = a.logger.With("component", "monitor", "session", a.session)
	return a, nil
}

// Session returns the session id.
func (a *App) Session() string {
	return a.session
}

// LogPath returns the session CSV path once Init has run.
func (a *App) LogPath() string {
	return a.csvPath
}

// Init opens the camera, models, and sinks.
// Call this after New() and before Run(). Optional collaborators that
// fail to load are logged and skipped; sink failures are fatal.
func (a *App) Init() error {
	a.start = a.clock.Now()
	a.metrics = metrics.New()

	if err := a.initSinks(); err != nil {
		return err
	}
	if err := a.initPerception(); err != nil {
		a.sink.Close()
		return err
	}
	a.initRecognizer()
	a.initClassifier()

	observers := []attention.Observer{a.metrics}
	if a.config.Web {
		a.web = web.NewServer(web.Config{
			Port:      a.config.WebPort,
			Session:   a.session,
			StaticDir: a.config.StaticDir,
			Metrics:   a.metrics.Handler(),
			Logger:    a.logger,
		})
		observers = append(observers, a.web)
	}

	engine, err := attention.NewEngine(a.config.Attention, attention.Collaborators{
		Recognizer: a.recognizer,
		Classifier: a.classifier,
		Sink:       a.sink,
		Clock:      a.clock,
		Observers:  observers,
		Hooks:      a.metrics.Hooks(),
		Logger:     a.logger,
	})
	if err != nil {
		a.Shutdown()
		return err
	}
	a.engine = engine

	a.logger.Info("session ready",
		"log", a.csvPath,
		"recognizer", a.recognizer != nil,
		"classifier", a.classifier != nil,
		"dashboard", a.config.Web,
	)
	return nil
}

func (a *App) initSinks() error {
	csvSink, err := sessionlog.CreateCSV(a.config.SessionDir, a.start)
	if err != nil {
		return err
	}
	a.csvPath = csvSink.Path()

	if a.config.RedisURL == "" {
		a.sink = csvSink
		return nil
	}

	rcfg := sessionlog.DefaultRedisConfig()
	rcfg.URL = a.config.RedisURL
	rcfg.Prefix = a.config.RedisPrefix
	rcfg.SessionID = a.session
	redisSink, err := sessionlog.NewRedisSink(context.Background(), rcfg)
	if err != nil {
		csvSink.Close()
		return err
	}
	a.logger.Info("mirroring records to redis", "stream", redisSink.Key())
	multi := sessionlog.NewMulti(csvSink, redisSink)
	multi.MirrorFailed = func(err error) {
		a.metrics.MirrorFailed(err)
		a.logger.Warn("redis mirror write failed", "error", err)
	}
	a.sink = multi
	return nil
}

func (a *App) initPerception() error {
	if a.source == nil {
		src, err := camera.Open(a.config.Camera)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrCameraUnavailable, err)
		}
		a.source = src
	}
	if a.detector == nil {
		det, err := vision.NewDetector(a.config.Vision)
		if err != nil {
			a.source.Close()
			return fmt.Errorf("detector: %w", err)
		}
		a.detector = det
	}
	return nil
}

func (a *App) initRecognizer() {
	gallery, err := faces.Open(a.config.Faces, a.logger)
	if err != nil {
		a.logger.Warn("face recognition disabled", "error", err)
		return
	}
	a.recognizer = gallery
}

func (a *App) initClassifier() {
	var classifiers []attention.Classifier

	if onnx, err := emotion.NewONNX(a.config.Emotion); err != nil {
		a.logger.Warn("local emotion model unavailable", "error", err)
	} else {
		classifiers = append(classifiers, onnx)
	}

	if a.config.VisionURL != "" {
		client, err := inference.NewClient(
			inference.WithBaseURL(a.config.VisionURL),
			inference.WithAPIKey(a.config.VisionKey),
			inference.WithVisionModel(a.config.VisionModel),
			inference.WithLogger(a.logger),
		)
		if err != nil {
			a.logger.Warn("remote emotion classifier disabled", "error", err)
		} else {
			classifiers = append(classifiers, emotion.NewVisionClassifier(client, ""))
		}
	}

	if len(classifiers) == 0 {
		a.logger.Warn("no emotion classifier, emotion stays at default")
		return
	}
	chain, err := emotion.NewChain(a.logger, classifiers...)
	if err != nil {
		a.logger.Warn("emotion classifier disabled", "error", err)
		return
	}
	a.classifier = chain
}

// Run processes frames until ctx is cancelled, the camera fails, or a
// record cannot be written.
func (a *App) Run(ctx context.Context) error {
	if a.engine == nil {
		return ErrNotInitialized
	}

	if a.web != nil {
		go func() {
			if err := a.web.Start(ctx); err != nil {
				a.logger.Error("dashboard stopped", "error", err)
			}
		}()
	}

	frame := gocv.NewMat()
	defer frame.Close()

	failures := 0
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		if err := a.source.Read(&frame); err != nil {
			failures++
			a.metrics.ReadFailed()
			if failures >= a.config.MaxReadFailures {
				return fmt.Errorf("%w: %d consecutive failed reads: %w", ErrCameraUnavailable, failures, err)
			}
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(a.config.ReadRetryDelay):
			}
			continue
		}
		failures = 0

		began := time.Now()
		obs, err := a.detector.Detect(frame)
		if err != nil {
			a.logger.Debug("detection failed", "error", err)
			obs = attention.Observation{}
		}
		if _, err := a.engine.Process(ctx, obs); err != nil {
			return err
		}
		a.metrics.ObserveFrame(time.Since(began))
	}
}

// Shutdown releases every resource. It is safe to call after a failed Init.
func (a *App) Shutdown() {
	var errs []error
	if a.engine != nil {
		errs = append(errs, a.engine.Close())
	} else if a.sink != nil {
		errs = append(errs, a.sink.Close())
	}
	if closer, ok := a.classifier.(interface{ Close() error }); ok {
		errs = append(errs, closer.Close())
	}
	if a.detector != nil {
		errs = append(errs, a.detector.Close())
	}
	if a.source != nil {
		errs = append(errs, a.source.Close())
	}

	if err := errors.Join(errs...); err != nil {
		a.logger.Warn("shutdown errors", "error", err)
	}
	if a.engine != nil {
		a.logger.Info("session ended",
			"frames", a.engine.Frame(),
			"score", a.engine.Score(),
			"log", a.csvPath,
		)
	}
}
