// Package metrics exposes session state to Prometheus.
package metrics

import (
	"math"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/teslashibe/go-focus/pkg/attention"
)

// Collector counts frames, records, and collaborator failures.
type Collector struct {
	Frames               prometheus.Counter
	NoFaceFrames         prometheus.Counter
	Records              prometheus.Counter
	Alerts               prometheus.Counter
	RecognitionErrors    prometheus.Counter
	ClassificationErrors prometheus.Counter
	ReadErrors           prometheus.Counter
	MirrorErrors         prometheus.Counter
	FrameSeconds         prometheus.Histogram
	Emotions             *prometheus.CounterVec

	score      atomic.Uint64 // float64 bits
	eyesClosed atomic.Bool
	alerting   atomic.Bool

	registry *prometheus.Registry
}

// New creates a Collector with its own registry.
func New() *Collector {
	c := &Collector{
		Frames: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "focus_frames_total",
			Help: "Frames processed by the attention engine",
		}),
		NoFaceFrames: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "focus_frames_no_face_total",
			Help: "Frames without a detected face",
		}),
		Records: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "focus_records_total",
			Help: "Session records emitted",
		}),
		Alerts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "focus_drowsiness_alerts_total",
			Help: "Drowsiness alerts raised",
		}),
		RecognitionErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "focus_recognition_errors_total",
			Help: "Face recognizer failures",
		}),
		ClassificationErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "focus_classification_errors_total",
			Help: "Emotion classifier failures",
		}),
		ReadErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "focus_camera_read_errors_total",
			Help: "Camera reads that returned no frame",
		}),
		MirrorErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "focus_mirror_write_errors_total",
			Help: "Records the stream mirror failed to write",
		}),
		FrameSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "focus_frame_seconds",
			Help:    "Time to detect and process one frame",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
		Emotions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "focus_emotion_records_total",
			Help: "Emitted records by stabilized emotion",
		}, []string{"emotion"}),
		registry: prometheus.NewRegistry(),
	}
	c.score.Store(math.Float64bits(0))

	c.registry.MustRegister(
		c.Frames, c.NoFaceFrames, c.Records, c.Alerts,
		c.RecognitionErrors, c.ClassificationErrors, c.ReadErrors, c.MirrorErrors,
		c.FrameSeconds, c.Emotions,
	)
	c.registry.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "focus_score",
			Help: "Current attention score (0-100)",
		},
		func() float64 { return math.Float64frombits(c.score.Load()) },
	))
	c.registry.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "focus_eyes_closed",
			Help: "Eyes closed on the latest frame (0=open, 1=closed)",
		},
		func() float64 { return boolGauge(c.eyesClosed.Load()) },
	))
	c.registry.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "focus_alert_active",
			Help: "Drowsiness alert active (0=no, 1=yes)",
		},
		func() float64 { return boolGauge(c.alerting.Load()) },
	))

	return c
}

// OnFrame implements attention.Observer.
func (c *Collector) OnFrame(s attention.Snapshot) {
	c.Frames.Inc()
	if s.Event.Box.Empty() {
		c.NoFaceFrames.Inc()
	}
	c.score.Store(math.Float64bits(s.Score))
	c.eyesClosed.Store(s.Event.EyesClosed)
	if was := c.alerting.Swap(s.Event.Alert); s.Event.Alert && !was {
		c.Alerts.Inc()
	}
}

// OnRecord implements attention.Observer.
func (c *Collector) OnRecord(r attention.Record) {
	c.Records.Inc()
	c.Emotions.WithLabelValues(r.Emotion).Inc()
}

// ObserveFrame records how long one frame took.
func (c *Collector) ObserveFrame(d time.Duration) {
	c.FrameSeconds.Observe(d.Seconds())
}

// ReadFailed counts a failed camera read.
func (c *Collector) ReadFailed() {
	c.ReadErrors.Inc()
}

// MirrorFailed counts a failed mirror write.
func (c *Collector) MirrorFailed(error) {
	c.MirrorErrors.Inc()
}

// Hooks returns engine hooks that count collaborator failures.
func (c *Collector) Hooks() attention.Hooks {
	return attention.Hooks{
		RecognitionFailed:    func(error) { c.RecognitionErrors.Inc() },
		ClassificationFailed: func(error) { c.ClassificationErrors.Inc() },
	}
}

// Registry returns the collector's registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler returns the Prometheus HTTP handler
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

func boolGauge(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

var _ attention.Observer = (*Collector)(nil)
