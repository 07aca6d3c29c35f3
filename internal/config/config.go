package config

import (
	_ "embed"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

type Config struct {
	Dataset    DatasetConfig
	Model      ModelConfig
	Camera     CameraConfig
	Detector   DetectorConfig
	Recognizer RecognizerConfig
	Database   DatabaseConfig
	Web        WebConfig
}

type DatasetConfig struct {
	Root    string // root directory of per-user sample directories
	KeyPath string // AES key file, created on first use
	Cap     int    // maximum samples stored per capture session
}

type ModelConfig struct {
	Path string // trained classifier artifact, replaced atomically on retrain
}

type CameraConfig struct {
	Device      int    // camera device index
	CascadePath string // Haar frontal-face cascade XML; empty = search well-known paths
}

type DetectorConfig struct {
	ScaleFactor  float64
	MinNeighbors int
	MinSize      int // minimum face side in pixels
}

type RecognizerConfig struct {
	// ConfidenceThreshold is the maximum classifier distance accepted as a
	// match. Lower distance means higher confidence for this classifier
	// family.
	ConfidenceThreshold float64
	// ConfirmationWindow is how long a candidate must persist continuously
	// before attendance is committed.
	ConfirmationWindow time.Duration
}

type DatabaseConfig struct {
	URL          string // PostgreSQL connection URL
	MariaDSN     string // MariaDB DSN, used when URL is empty
	MaxOpenConns int    // default 25
	MaxIdleConns int    // default 5
}

type WebConfig struct {
	Host string
	Port int
}

// defaults mirrors the embedded defaults.yaml layout.
type defaults struct {
	Detector struct {
		ScaleFactor  float64 `yaml:"scale_factor"`
		MinNeighbors int     `yaml:"min_neighbors"`
		MinSize      int     `yaml:"min_size"`
	} `yaml:"detector"`
	Recognizer struct {
		ConfidenceThreshold float64 `yaml:"confidence_threshold"`
		ConfirmationWindow  float64 `yaml:"confirmation_window_seconds"`
	} `yaml:"recognizer"`
	Capture struct {
		SampleCap int `yaml:"sample_cap"`
	} `yaml:"capture"`
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

// envDevice parses a camera device index. Zero is valid (the default
// camera), so this cannot share envInt's positive-only rule.
func envDevice(key string) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil && n >= 0 {
		return n
	}
	return 0
}

// envStr reads an environment variable with a fallback default.
func envStr(key, defaultVal string) string {
	if s := os.Getenv(key); s != "" {
		return s
	}
	return defaultVal
}

func Load() *Config {
	var d defaults
	if err := yaml.Unmarshal(defaultsYAML, &d); err != nil {
		// Embedded file, so this should never happen in practice.
		panic("failed to unmarshal embedded defaults.yaml: " + err.Error())
	}

	return &Config{
		Dataset: DatasetConfig{
			Root:    envStr("PRESENCIA_DATASET_DIR", "media/dataset"),
			KeyPath: envStr("PRESENCIA_KEY_FILE", "media/encryption_key.key"),
			Cap:     envInt("PRESENCIA_SAMPLE_CAP", d.Capture.SampleCap),
		},
		Model: ModelConfig{
			Path: envStr("PRESENCIA_MODEL_FILE", "media/model_lbph.gob"),
		},
		Camera: CameraConfig{
			Device:      envDevice("PRESENCIA_CAMERA_DEVICE"),
			CascadePath: os.Getenv("PRESENCIA_CASCADE_FILE"),
		},
		Detector: DetectorConfig{
			ScaleFactor:  d.Detector.ScaleFactor,
			MinNeighbors: d.Detector.MinNeighbors,
			MinSize:      d.Detector.MinSize,
		},
		Recognizer: RecognizerConfig{
			ConfidenceThreshold: d.Recognizer.ConfidenceThreshold,
			ConfirmationWindow:  time.Duration(d.Recognizer.ConfirmationWindow * float64(time.Second)),
		},
		Database: DatabaseConfig{
			URL:          os.Getenv("DATABASE_URL"),
			MariaDSN:     os.Getenv("MARIADB_DSN"),
			MaxOpenConns: envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns: envInt("DATABASE_MAX_IDLE_CONNS", 5),
		},
		Web: WebConfig{
			Host: envStr("PRESENCIA_HOST", "0.0.0.0"),
			Port: envInt("PRESENCIA_PORT", 8080),
		},
	}
}
