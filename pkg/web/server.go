// Package web serves the live session dashboard API.
package web

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"

	"github.com/teslashibe/go-focus/pkg/attention"
	"github.com/teslashibe/go-focus/pkg/hub"
)

// MaxRecords is how many emitted records the dashboard keeps.
const MaxRecords = 500

// Status is the live view of the latest frame.
type Status struct {
	Session    string        `json:"session"`
	Frame      uint64        `json:"frame"`
	Time       time.Time     `json:"time"`
	Face       bool          `json:"face"`
	Box        attention.Box `json:"box"`
	Identity   string        `json:"identity"`
	Emotion    string        `json:"emotion"`
	EyesClosed bool          `json:"eyes_closed"`
	Alert      bool          `json:"alert"`
	Score      float64       `json:"score"`
}

// Config holds dashboard settings.
type Config struct {
	Port      string       // Listen port
	Session   string       // Session id shown in status
	StaticDir string       // Optional directory served at /
	Metrics   http.Handler // Optional Prometheus handler mounted at /metrics
	Logger    *slog.Logger
}

// Server is the web dashboard server.
type Server struct {
	app    *fiber.App
	config Config
	logger *slog.Logger

	mu      sync.RWMutex
	status  Status
	history []float64
	records []attention.Record

	statusHub *hub.Hub
	recordHub *hub.Hub
}

// NewServer creates the dashboard and registers its routes.
func NewServer(cfg Config) *Server {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	logger := cfg.Logger.With("component", "web")

	s := &Server{
		config:    cfg,
		logger:    logger,
		status:    Status{Session: cfg.Session, Identity: attention.UnknownIdentity, Emotion: attention.ScanningEmotion},
		records:   make([]attention.Record, 0, MaxRecords),
		statusHub: hub.New("status", cfg.Logger),
		recordHub: hub.New("records", cfg.Logger),
	}

	app := fiber.New(fiber.Config{
		AppName:               "Focus Dashboard",
		DisableStartupMessage: true,
	})
	app.Use(cors.New())

	api := app.Group("/api")
	api.Get("/status", s.handleStatus)
	api.Get("/history", s.handleHistory)
	api.Get("/records", s.handleRecords)

	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics))
	}

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/status", websocket.New(s.handleWS(s.statusHub)))
	app.Get("/ws/records", websocket.New(s.handleWS(s.recordHub)))

	if cfg.StaticDir != "" {
		app.Static("/", cfg.StaticDir)
	}

	s.app = app
	return s
}

// App exposes the fiber app, mainly for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Start listens on the configured port until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", ":"+s.config.Port)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve runs the hubs and the app on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	go s.statusHub.Run(ctx)
	go s.recordHub.Run(ctx)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("dashboard listening", "addr", ln.Addr().String())
		errCh <- s.app.Listener(ln)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.app.ShutdownWithContext(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		return nil
	}
}

// OnFrame implements attention.Observer.
func (s *Server) OnFrame(snap attention.Snapshot) {
	s.mu.Lock()
	s.status = Status{
		Session:    s.config.Session,
		Frame:      snap.Frame,
		Time:       snap.Time,
		Face:       !snap.Event.Box.Empty(),
		Box:        snap.Event.Box,
		Identity:   snap.Event.Identity,
		Emotion:    snap.Event.Emotion,
		EyesClosed: snap.Event.EyesClosed,
		Alert:      snap.Event.Alert,
		Score:      snap.Score,
	}
	s.history = snap.History
	status := s.status
	s.mu.Unlock()

	if err := s.statusHub.BroadcastJSON(status); err != nil {
		s.logger.Warn("status broadcast failed", "error", err)
	}
}

// OnRecord implements attention.Observer.
func (s *Server) OnRecord(rec attention.Record) {
	s.mu.Lock()
	if len(s.records) == MaxRecords {
		copy(s.records, s.records[1:])
		s.records = s.records[:MaxRecords-1]
	}
	s.records = append(s.records, rec)
	s.mu.Unlock()

	if err := s.recordHub.BroadcastJSON(rec); err != nil {
		s.logger.Warn("record broadcast failed", "error", err)
	}
}

var _ attention.Observer = (*Server)(nil)
