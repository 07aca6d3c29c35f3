package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Detector.ScaleFactor != 1.3 {
		t.Errorf("ScaleFactor = %v; want 1.3", cfg.Detector.ScaleFactor)
	}
	if cfg.Detector.MinNeighbors != 5 {
		t.Errorf("MinNeighbors = %d; want 5", cfg.Detector.MinNeighbors)
	}
	if cfg.Recognizer.ConfidenceThreshold != 40.0 {
		t.Errorf("ConfidenceThreshold = %v; want 40", cfg.Recognizer.ConfidenceThreshold)
	}
	if cfg.Recognizer.ConfirmationWindow != 2*time.Second {
		t.Errorf("ConfirmationWindow = %v; want 2s", cfg.Recognizer.ConfirmationWindow)
	}
	if cfg.Dataset.Cap != 100 {
		t.Errorf("Dataset.Cap = %d; want 100", cfg.Dataset.Cap)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("PRESENCIA_DATASET_DIR", "/tmp/faces")
	t.Setenv("PRESENCIA_SAMPLE_CAP", "25")
	t.Setenv("PRESENCIA_CAMERA_DEVICE", "2")
	t.Setenv("DATABASE_MAX_OPEN_CONNS", "not-a-number")

	cfg := Load()

	if cfg.Dataset.Root != "/tmp/faces" {
		t.Errorf("Dataset.Root = %q; want /tmp/faces", cfg.Dataset.Root)
	}
	if cfg.Dataset.Cap != 25 {
		t.Errorf("Dataset.Cap = %d; want 25", cfg.Dataset.Cap)
	}
	if cfg.Camera.Device != 2 {
		t.Errorf("Camera.Device = %d; want 2", cfg.Camera.Device)
	}
	if cfg.Database.MaxOpenConns != 25 {
		t.Errorf("MaxOpenConns = %d; want default 25 for invalid value", cfg.Database.MaxOpenConns)
	}
}
