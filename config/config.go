// Package config - Configuration for mask evaluation runs.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Labeler names accepted in the configuration.
const (
	LabelerFloodFill = "floodfill"
	LabelerOpenCV    = "opencv"
)

// Sentinel errors for conditions callers may need to handle differently.
var (
	// ErrUnsupportedFormat indicates a configuration file extension other than .json, .yaml or .yml.
	ErrUnsupportedFormat = errors.New("config: unsupported configuration format")

	// ErrInvalid indicates a configuration value outside its allowed range.
	ErrInvalid = errors.New("config: invalid configuration")
)

// Config holds the settings of an evaluation run.
type Config struct {
	// ComputedPath is the computed mask file of a single pair run.
	ComputedPath string `json:"computed_path"     yaml:"computed_path"`
	// GoldPath is the gold mask file of a single pair run.
	GoldPath string `json:"gold_path"         yaml:"gold_path"`
	// ComputedDir is the directory of computed masks for a batch run.
	ComputedDir string `json:"computed_dir"      yaml:"computed_dir"`
	// GoldDir is the directory of gold masks for a batch run.
	GoldDir string `json:"gold_dir"          yaml:"gold_dir"`
	// OverlapThreshold is the fraction of a component's area that must lie in another one.
	OverlapThreshold float64 `json:"overlap_threshold" yaml:"overlap_threshold"`
	// Connectivity is 4 or 8.
	Connectivity int `json:"connectivity"      yaml:"connectivity"`
	// Labeler selects the connected component implementation.
	Labeler string `json:"labeler"           yaml:"labeler"`
	// Align resamples computed masks to the gold shape instead of failing on a mismatch.
	Align bool `json:"align"             yaml:"align"`
	// Workers bounds the number of pairs evaluated concurrently in a batch run.
	Workers int `json:"workers"           yaml:"workers"`
	// ReportPath is where the JSON report is written, empty to skip it.
	ReportPath string `json:"report_path"       yaml:"report_path"`
}

// Default returns the default configuration, which evaluates ./computed.png against
// ./gold.png with a 0.5 overlap threshold.
func Default() *Config {
	return &Config{
		ComputedPath:     "./computed.png",
		GoldPath:         "./gold.png",
		OverlapThreshold: 0.5,
		Connectivity:     8,
		Labeler:          LabelerFloodFill,
		Workers:          runtime.NumCPU(),
	}
}

// Load reads a configuration file on top of the defaults.
//
// Arguments:
//   - filename: A .json, .yaml or .yml file.
//
// Returns:
//   - *Config: The loaded configuration.
//   - error: Error if the file cannot be read or parsed.
func Load(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config file")
	}

	cfg := Default()
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".json":
		err = json.Unmarshal(data, cfg)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	default:
		return nil, errors.Wrap(ErrUnsupportedFormat, filename)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse config")
	}

	return cfg, nil
}

// Save writes the configuration as JSON or YAML depending on the extension.
func (c *Config) Save(filename string) error {
	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".json":
		data, err = json.MarshalIndent(c, "", "  ")
	case ".yaml", ".yml":
		data, err = yaml.Marshal(c)
	default:
		return errors.Wrap(ErrUnsupportedFormat, filename)
	}
	if err != nil {
		return errors.Wrap(err, "failed to marshal config")
	}

	if err := os.WriteFile(filename, data, 0o644); err != nil {
		return errors.Wrap(err, "failed to write config file")
	}
	return nil
}

// Batch reports whether the configuration describes a directory run.
func (c *Config) Batch() bool {
	return c.ComputedDir != "" || c.GoldDir != ""
}

// Validate checks value ranges and that a complete input pair is configured.
func (c *Config) Validate() error {
	if !(c.OverlapThreshold > 0 && c.OverlapThreshold <= 1) {
		return errors.Wrapf(ErrInvalid, "overlap_threshold %v not in (0, 1]", c.OverlapThreshold)
	}
	if c.Connectivity != 4 && c.Connectivity != 8 {
		return errors.Wrapf(ErrInvalid, "connectivity %d is neither 4 nor 8", c.Connectivity)
	}
	if c.Labeler != LabelerFloodFill && c.Labeler != LabelerOpenCV {
		return errors.Wrapf(ErrInvalid, "unknown labeler %q", c.Labeler)
	}
	if c.Workers < 1 {
		return errors.Wrapf(ErrInvalid, "workers %d < 1", c.Workers)
	}
	if c.Batch() {
		if c.ComputedDir == "" || c.GoldDir == "" {
			return errors.Wrap(ErrInvalid, "both computed_dir and gold_dir are required")
		}
		return nil
	}
	if c.ComputedPath == "" || c.GoldPath == "" {
		return errors.Wrap(ErrInvalid, "both computed_path and gold_path are required")
	}
	return nil
}
