// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Capture     CaptureConfig     `toml:"capture"`
	Recognition RecognitionConfig `toml:"recognition"`
}

// CaptureConfig maps input-capture settings.
type CaptureConfig struct {
	Dataset    *string `toml:"dataset"`
	SampleRate *int    `toml:"sample-rate"`
}

// RecognitionConfig maps classifier settings.
type RecognitionConfig struct {
	NullRejection        *bool    `toml:"null-rejection"`
	NullRejectionCoeff   *float64 `toml:"null-rejection-coeff"`
	ConstrainWarpingPath *bool    `toml:"constrain-warping-path"`
	WarpingRadius        *float64 `toml:"warping-radius"`
	TrimTrainingData     *bool    `toml:"trim-training-data"`
	TrimThreshold        *float64 `toml:"trim-threshold"`
	TrimPercent          *float64 `toml:"trim-percent"`
	OffsetByFirstSample  *bool    `toml:"offset-by-first-sample"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}
