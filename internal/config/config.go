// Package config provides the validated analysis configuration for the tremor
// measurement pipeline.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// AspectRatio is a width:height ratio pair, e.g. {3, 4} for a 3:4 sensor.
type AspectRatio struct {
	W int `yaml:"w"`
	H int `yaml:"h"`
}

// Config holds all analysis settings. It is constructed once at startup and
// validated eagerly, before any video is opened.
type Config struct {
	// CameraFocalLength is the physical focal length of the camera lens in mm.
	CameraFocalLength float64 `yaml:"camera_focal_length"`

	// CameraFocalLengthStd is the 35mm-equivalent focal length in mm, used to
	// derive the sensor size across camera models.
	CameraFocalLengthStd float64 `yaml:"camera_focal_length_std"`

	// CameraNativeAspect is the native aspect ratio of the camera sensor.
	CameraNativeAspect AspectRatio `yaml:"camera_native_aspect"`

	// CameraVideoAspect is the aspect ratio the video was recorded at, which
	// may crop the sensor relative to its native aspect.
	CameraVideoAspect AspectRatio `yaml:"camera_video_aspect"`

	// StartFrame and EndFrame bound the analyzed frame range, inclusive.
	// Frames are numbered from 1.
	StartFrame int `yaml:"start_frame"`
	EndFrame   int `yaml:"end_frame"`

	// UseCustomLandmarks selects CustomLandmarks instead of the default
	// fingertip subset.
	UseCustomLandmarks bool  `yaml:"use_custom_landmarks"`
	CustomLandmarks    []int `yaml:"custom_landmarks"`

	// AutoMode selects batch invocation (flags) over interactive prompts.
	AutoMode bool `yaml:"auto_mode"`

	// Presentation-only settings, not consumed by the measurement core.
	ShowPlotLegend  bool `yaml:"show_plot_legend"`
	GUIHandTracking bool `yaml:"gui_hand_tracking"`
}

// NumLandmarks is the size of the detector's landmark list; landmark ids in
// CustomLandmarks must fall in [0, NumLandmarks).
const NumLandmarks = 21

// DefaultLandmarks are the four fingertips (thumb, index, middle, ring),
// the extremities where tremor displacement is largest.
var DefaultLandmarks = []int{4, 8, 12, 16}

// ConfigError describes an invalid or contradictory setting. It is always
// fatal and raised before any frame is processed.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Reason)
}

// Default returns a Config with the reference camera profile (iPhone front
// camera: 2.87mm lens, 32mm 35mm-equivalent, 3:4 sensor recording 9:16 video)
// and the full frame range.
func Default() Config {
	return Config{
		CameraFocalLength:    2.87,
		CameraFocalLengthStd: 32,
		CameraNativeAspect:   AspectRatio{W: 3, H: 4},
		CameraVideoAspect:    AspectRatio{W: 9, H: 16},
		StartFrame:           1,
		EndFrame:             9999,
		UseCustomLandmarks:   false,
		CustomLandmarks:      nil,
		AutoMode:             true,
		ShowPlotLegend:       true,
		GUIHandTracking:      false,
	}
}

// Load reads a YAML config file and validates it. Settings omitted from the
// file keep their Default() values.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// Validate checks the configuration and returns a *ConfigError for the first
// invalid field found.
func (c Config) Validate() error {
	if c.CameraFocalLength <= 0 {
		return &ConfigError{Field: "camera_focal_length", Reason: "must be > 0"}
	}
	if c.CameraFocalLengthStd <= 0 {
		return &ConfigError{Field: "camera_focal_length_std", Reason: "must be > 0"}
	}
	if c.CameraNativeAspect.W <= 0 || c.CameraNativeAspect.H <= 0 {
		return &ConfigError{Field: "camera_native_aspect", Reason: "ratio components must be > 0"}
	}
	if c.CameraVideoAspect.W <= 0 || c.CameraVideoAspect.H <= 0 {
		return &ConfigError{Field: "camera_video_aspect", Reason: "ratio components must be > 0"}
	}
	if c.StartFrame < 1 {
		return &ConfigError{Field: "start_frame", Reason: "frames are numbered from 1"}
	}
	if c.EndFrame < c.StartFrame {
		return &ConfigError{Field: "end_frame", Reason: "frame range is empty"}
	}
	if c.UseCustomLandmarks {
		if len(c.CustomLandmarks) == 0 {
			return &ConfigError{Field: "custom_landmarks", Reason: "use_custom_landmarks is set but the list is empty"}
		}
		for _, id := range c.CustomLandmarks {
			if id < 0 || id >= NumLandmarks {
				return &ConfigError{
					Field:  "custom_landmarks",
					Reason: fmt.Sprintf("landmark id %d outside [0,%d)", id, NumLandmarks),
				}
			}
		}
	}
	return nil
}

// Landmarks returns the landmark subset selected by the configuration.
func (c Config) Landmarks() []int {
	if c.UseCustomLandmarks {
		return c.CustomLandmarks
	}
	return DefaultLandmarks
}

// FrameCount returns the number of frames in the configured range.
func (c Config) FrameCount() int {
	return c.EndFrame - c.StartFrame + 1
}
