package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default() config should validate, got %v", err)
	}
}

func TestValidate_ZeroFocalLength(t *testing.T) {
	cfg := Default()
	cfg.CameraFocalLength = 0

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for zero focal length")
	}

	var cerr *ConfigError
	if !errors.As(err, &cerr) {
		t.Fatalf("expected *ConfigError, got %T", err)
	}
	if cerr.Field != "camera_focal_length" {
		t.Errorf("expected field camera_focal_length, got %s", cerr.Field)
	}
}

func TestValidate_EmptyFrameRange(t *testing.T) {
	cfg := Default()
	cfg.StartFrame = 100
	cfg.EndFrame = 99

	if err := cfg.Validate(); err == nil {
		t.Error("expected error for empty frame range")
	}
}

func TestValidate_StartFrameBeforeOne(t *testing.T) {
	cfg := Default()
	cfg.StartFrame = 0

	if err := cfg.Validate(); err == nil {
		t.Error("expected error for start frame < 1")
	}
}

func TestValidate_CustomLandmarks(t *testing.T) {
	cfg := Default()
	cfg.UseCustomLandmarks = true
	cfg.CustomLandmarks = []int{0, 8, 21}

	if err := cfg.Validate(); err == nil {
		t.Error("expected error for landmark id 21, valid ids are 0-20")
	}

	cfg.CustomLandmarks = []int{0, 8, 20}
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected valid custom landmarks, got %v", err)
	}

	cfg.CustomLandmarks = nil
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for empty custom landmark list")
	}
}

func TestLandmarks_DefaultSubset(t *testing.T) {
	cfg := Default()

	got := cfg.Landmarks()
	want := []int{4, 8, 12, 16}

	if len(got) != len(want) {
		t.Fatalf("expected %d default landmarks, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("landmark %d: expected %d, got %d", i, want[i], got[i])
		}
	}
}

func TestLoad_YAMLOverrides(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "tremor-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	path := filepath.Join(tmpDir, "config.yaml")
	content := `
camera_focal_length: 4.25
start_frame: 660
end_frame: 1200
use_custom_landmarks: true
custom_landmarks: [0, 9]
show_plot_legend: false
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.CameraFocalLength != 4.25 {
		t.Errorf("expected focal length 4.25, got %f", cfg.CameraFocalLength)
	}
	if cfg.StartFrame != 660 || cfg.EndFrame != 1200 {
		t.Errorf("expected frame range 660-1200, got %d-%d", cfg.StartFrame, cfg.EndFrame)
	}
	if !cfg.UseCustomLandmarks || len(cfg.CustomLandmarks) != 2 {
		t.Errorf("expected custom landmarks [0 9], got %v", cfg.CustomLandmarks)
	}
	// Omitted settings keep defaults
	if cfg.CameraFocalLengthStd != 32 {
		t.Errorf("expected default 35mm-equivalent focal length 32, got %f", cfg.CameraFocalLengthStd)
	}
}

func TestLoad_InvalidSettingsRejected(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "tremor-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	path := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(path, []byte("camera_focal_length: 0\n"), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	_, err = Load(path)
	var cerr *ConfigError
	if !errors.As(err, &cerr) {
		t.Fatalf("expected *ConfigError for zero focal length, got %v", err)
	}
}

func TestFrameCount(t *testing.T) {
	cfg := Default()
	cfg.StartFrame = 10
	cfg.EndFrame = 39

	if got := cfg.FrameCount(); got != 30 {
		t.Errorf("expected 30 frames, got %d", got)
	}
}
