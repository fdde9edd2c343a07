// focus watches a webcam and scores how attentive the person in front of
// it is. Records are written to a CSV session log once per second.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/teslashibe/go-focus/internal/config"
	"github.com/teslashibe/go-focus/internal/log"
	"github.com/teslashibe/go-focus/pkg/camera"
	"github.com/teslashibe/go-focus/pkg/monitor"
)

func main() {
	env, err := config.Load()
	if err != nil {
		fatal("configuration error", err)
	}

	cfg := parseFlags(env)
	level := env.LogLevel
	if cfg.Debug {
		level = "debug"
	}
	log.Init(level, env.LogFormat)

	app, err := monitor.New(cfg, monitor.WithLogger(log.L()))
	if err != nil {
		fatal("configuration error", err)
	}

	if err := app.Init(); err != nil {
		fatal("initialization failed", err)
	}
	defer app.Shutdown()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log.Info("monitoring started, press Ctrl+C to stop", "session", app.Session(), "log", app.LogPath())
	if err := app.Run(ctx); err != nil {
		app.Shutdown()
		if errors.Is(err, monitor.ErrCameraUnavailable) {
			fatal("camera stopped producing frames", err)
		}
		fatal("runtime error", err)
	}
}

// parseFlags layers command line flags over environment configuration.
func parseFlags(env *config.Config) monitor.Config {
	cfg := monitor.DefaultConfig()

	cfg.Camera.Width = env.CameraWidth
	cfg.Camera.Height = env.CameraHeight
	if p := camera.GetPreset(env.CameraPreset); p != nil {
		cfg.Camera = *p
	}
	cfg.Camera.Device = env.CameraDevice
	cfg.Camera.Mirror = env.CameraMirror
	cfg.Vision.FaceCascade = env.FaceCascade
	cfg.Vision.EyeCascade = env.EyeCascade
	cfg.Vision.FaceModel = env.FaceModel
	cfg.Faces.Dir = env.KnownFaces
	cfg.Emotion.ModelPath = env.EmotionModel
	cfg.Attention.ClosedEyesTime = env.ClosedEyesTime
	cfg.Attention.LogInterval = env.LogInterval
	cfg.VisionURL = env.VisionURL
	cfg.VisionModel = env.VisionModel
	cfg.VisionKey = env.VisionKey
	cfg.SessionDir = env.SessionDir
	cfg.RedisURL = env.RedisURL
	cfg.RedisPrefix = env.RedisPrefix
	cfg.Web = env.Web
	cfg.WebPort = env.WebPort

	debug := flag.Bool("debug", false, "Enable verbose debug logging")
	device := flag.Int("camera", cfg.Camera.Device, "Video device index")
	preset := flag.String("preset", env.CameraPreset, "Camera preset: default, 720p, 1080p, lowres")
	mirror := flag.Bool("mirror", cfg.Camera.Mirror, "Mirror the camera horizontally")
	logDir := flag.String("log-dir", cfg.SessionDir, "Directory for session CSV files")
	known := flag.String("known-faces", cfg.Faces.Dir, "Directory of known face images")
	faceModel := flag.String("face-model", cfg.Vision.FaceModel, "YuNet face detection model (default: Haar cascade)")
	redisURL := flag.String("redis", cfg.RedisURL, "Mirror records to this Redis URL")
	noWeb := flag.Bool("no-web", false, "Disable the dashboard")
	port := flag.String("port", cfg.WebPort, "Dashboard port")
	static := flag.String("static", "", "Serve dashboard assets from this directory")
	closedEyes := flag.Duration("closed-eyes", cfg.Attention.ClosedEyesTime, "Eye closure before a drowsiness alert")
	flag.Parse()

	cfg.Debug = *debug
	if *preset != env.CameraPreset {
		p := camera.GetPreset(*preset)
		if p == nil {
			fatal("configuration error", fmt.Errorf("unknown camera preset %q", *preset))
		}
		cfg.Camera = *p
	}
	cfg.Camera.Device = *device
	cfg.Camera.Mirror = *mirror
	cfg.SessionDir = *logDir
	cfg.Faces.Dir = *known
	cfg.Vision.FaceModel = *faceModel
	cfg.RedisURL = *redisURL
	cfg.Web = cfg.Web && !*noWeb
	cfg.WebPort = *port
	cfg.StaticDir = *static
	cfg.Attention.ClosedEyesTime = *closedEyes
	return cfg
}

func fatal(msg string, err error) {
	fmt.Fprintf(os.Stderr, "focus: %s: %v\n", msg, err)
	os.Exit(1)
}
