// Package project persists conversion settings between runs: paths, scale
// targets, texture policy and the preview control parameters.
package project

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"

	"github.com/logue/vrm2sl/converter"
)

// BlinkSettings drive the blink preview controls.
type BlinkSettings struct {
	Enabled          bool    `yaml:"enabled"`
	IntervalSec      float32 `yaml:"interval_sec"`
	CloseDurationSec float32 `yaml:"close_duration_sec"`
	WinkEnabled      bool    `yaml:"wink_enabled"`
}

// LipSyncSettings drive the lip-sync preview controls.
type LipSyncSettings struct {
	Enabled   bool    `yaml:"enabled"`
	Mode      string  `yaml:"mode"`
	OpenAngle float32 `yaml:"open_angle"`
	Speed     float32 `yaml:"speed"`
}

// EyeTrackingSettings drive the eye-tracking preview controls.
type EyeTrackingSettings struct {
	CameraFollow       bool    `yaml:"camera_follow"`
	RandomLook         bool    `yaml:"random_look"`
	VerticalRangeDeg   float32 `yaml:"vertical_range_deg"`
	HorizontalRangeDeg float32 `yaml:"horizontal_range_deg"`
	Speed              float32 `yaml:"speed"`
}

// FaceSettings groups the face preview controls.
type FaceSettings struct {
	Blink       BlinkSettings       `yaml:"blink"`
	LipSync     LipSyncSettings     `yaml:"lip_sync"`
	EyeTracking EyeTrackingSettings `yaml:"eye_tracking"`
}

// FingerSettings drive the finger test pose controls.
type FingerSettings struct {
	Enabled  bool   `yaml:"enabled"`
	TestPose string `yaml:"test_pose"`
}

// Settings is the persisted project state.
type Settings struct {
	InputPath           string                 `yaml:"input_path,omitempty"`
	OutputPath          string                 `yaml:"output_path,omitempty"`
	TargetHeightCm      float32                `yaml:"target_height_cm"`
	ManualScale         float32                `yaml:"manual_scale"`
	TextureAutoResize   bool                   `yaml:"texture_auto_resize"`
	TextureResizeMethod converter.ResizeMethod `yaml:"texture_resize_method"`
	Face                FaceSettings           `yaml:"face"`
	Fingers             FingerSettings         `yaml:"fingers"`
}

// DefaultSettings returns the settings a fresh project starts from.
func DefaultSettings() *Settings {
	return &Settings{
		TargetHeightCm:      200,
		ManualScale:         1,
		TextureAutoResize:   true,
		TextureResizeMethod: converter.ResizeBilinear,
		Face: FaceSettings{
			Blink: BlinkSettings{
				Enabled:          true,
				IntervalSec:      4,
				CloseDurationSec: 0.15,
				WinkEnabled:      true,
			},
			LipSync: LipSyncSettings{
				Mode:      "chat",
				OpenAngle: 0.5,
				Speed:     0.5,
			},
			EyeTracking: EyeTrackingSettings{
				CameraFollow:       true,
				RandomLook:         true,
				VerticalRangeDeg:   25,
				HorizontalRangeDeg: 40,
				Speed:              0.5,
			},
		},
		Fingers: FingerSettings{
			Enabled:  true,
			TestPose: "open",
		},
	}
}

// Options returns the conversion options this settings file describes.
func (s *Settings) Options() *converter.ConvertOptions {
	return &converter.ConvertOptions{
		TargetHeightCm:      s.TargetHeightCm,
		ManualScale:         s.ManualScale,
		TextureAutoResize:   s.TextureAutoResize,
		TextureResizeMethod: s.TextureResizeMethod,
	}
}

// Load reads settings from a YAML file. Fields absent from the file keep
// their defaults; unknown fields are ignored.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load project settings %s: %w", path, err)
	}
	settings := DefaultSettings()
	if err := yaml.Unmarshal(data, settings); err != nil {
		return nil, fmt.Errorf("parse project settings %s: %w", path, err)
	}
	if _, err := converter.ParseResizeMethod(string(settings.TextureResizeMethod)); err != nil {
		return nil, fmt.Errorf("parse project settings %s: %w", path, err)
	}
	return settings, nil
}

// Save writes settings as YAML.
func Save(path string, settings *Settings) error {
	data, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("serialize project settings: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("save project settings %s: %w", path, err)
	}
	return nil
}
