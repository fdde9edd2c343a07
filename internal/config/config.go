// Package config loads go-focus settings from the environment.
//
// Values come from FOCUS_* environment variables, optionally seeded from a
// .env file. Command-line flags in cmd/ override what is loaded here.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Prefix is the environment variable prefix for all settings.
const Prefix = "focus"

// Config is the process-level configuration.
type Config struct {
	// Logging
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"text"`

	// Session log
	SessionDir  string        `envconfig:"SESSION_DIR" default:"logs"`
	LogInterval time.Duration `envconfig:"LOG_INTERVAL" default:"1s"`
	RedisURL    string        `envconfig:"REDIS_URL"`
	RedisPrefix string        `envconfig:"REDIS_PREFIX" default:"focus:session"`

	// Camera
	CameraDevice int    `envconfig:"CAMERA_DEVICE" default:"0"`
	CameraWidth  int    `envconfig:"CAMERA_WIDTH" default:"640"`
	CameraHeight int    `envconfig:"CAMERA_HEIGHT" default:"480"`
	CameraMirror bool   `envconfig:"CAMERA_MIRROR" default:"true"`
	CameraPreset string `envconfig:"CAMERA_PRESET"`

	// Perception models
	FaceCascade  string `envconfig:"FACE_CASCADE" default:"models/haarcascade_frontalface_default.xml"`
	EyeCascade   string `envconfig:"EYE_CASCADE" default:"models/haarcascade_eye.xml"`
	FaceModel    string `envconfig:"FACE_MODEL"` // YuNet ONNX model; empty keeps the cascade
	KnownFaces   string `envconfig:"KNOWN_FACES" default:"assets/known_faces"`
	EmotionModel string `envconfig:"EMOTION_MODEL" default:"models/emotion-ferplus-8.onnx"`

	// Remote emotion classification (OpenAI-compatible vision endpoint)
	VisionURL   string `envconfig:"VISION_URL"`
	VisionModel string `envconfig:"VISION_MODEL" default:"gpt-4o-mini"`
	VisionKey   string `envconfig:"VISION_API_KEY"`

	// Scoring
	ClosedEyesTime time.Duration `envconfig:"CLOSED_EYES_TIME" default:"3s"`

	// Dashboard
	WebPort string `envconfig:"WEB_PORT" default:"8080"`
	Web     bool   `envconfig:"WEB" default:"true"`
}

// Load reads an optional .env file from the working directory and then the
// environment.
func Load() (*Config, error) {
	return LoadFrom(".env")
}

// LoadFrom is Load with an explicit dotenv path. A missing file is not an
// error; variables already set in the environment win over the file.
func LoadFrom(dotenv string) (*Config, error) {
	if dotenv != "" {
		if err := godotenv.Load(dotenv); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", dotenv, err)
		}
	}

	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return nil, fmt.Errorf("process environment: %w", err)
	}
	if cfg.VisionKey == "" {
		cfg.VisionKey = os.Getenv("OPENAI_API_KEY")
	}
	return &cfg, nil
}
