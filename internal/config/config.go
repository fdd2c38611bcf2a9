// Package config provides configuration loading and management for the
// alveoli tools. It handles loading configuration from YAML files and
// provides default values matching the reference analysis.
package config

import (
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"

	"github.com/ironsheep/alveoli-tools/internal/detection"
	"github.com/ironsheep/alveoli-tools/internal/imaging"
)

// ErrOddPositions is returned when the flat subsample position list cannot be
// paired into (x, y) anchors.
var ErrOddPositions = errors.New("subsample positions must be x,y pairs")

// ErrNoWindows is returned when no subsample window is configured. Every
// sample would count zero and be dropped from its cohort.
var ErrNoWindows = errors.New("at least one subsample position is required")

// Output file names written into the output directory.
const (
	DefaultCountsFile  = "alveoli_counts_by_condition.csv"
	DefaultSummaryFile = "summary_statistics_alveoli.csv"
	DefaultPlotFile    = "alveoli_counts_publication_quality.png"
)

// Config represents the application configuration loaded from YAML
type Config struct {
	// Detection holds the per-window segmentation and detection parameters.
	Detection detection.Params `yaml:"detection"`

	// Sampling places the subsample windows inside every image
	Sampling struct {
		// Size is the side length of each square window in pixels
		Size int `yaml:"size"`

		// Positions is a flat x1,y1,x2,y2,... list of window anchors
		Positions []int `yaml:"positions"`
	} `yaml:"sampling"`

	// Analysis parameters
	Analysis struct {
		// Workers is how many images are counted in parallel
		Workers int `yaml:"workers"`

		// Backend selects the detection implementation ("go" or "opencv")
		Backend string `yaml:"backend"`
	} `yaml:"analysis"`

	// Output parameters
	Output struct {
		Dir         string `yaml:"dir"`
		CountsFile  string `yaml:"countsFile"`
		SummaryFile string `yaml:"summaryFile"`
		PlotFile    string `yaml:"plotFile"`

		// DebugDir receives per-window masks and overlays when set
		DebugDir string `yaml:"debugDir"`

		// Colors are the plot colors of the first and second condition
		Colors []string `yaml:"colors"`

		// Show opens the rendered plot with the platform viewer
		Show bool `yaml:"show"`
	} `yaml:"output"`

	// Logging parameters
	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Detection = detection.DefaultParams()

	cfg.Sampling.Size = 500
	cfg.Sampling.Positions = []int{100, 100, 300, 100, 500, 100}

	cfg.Analysis.Workers = runtime.NumCPU()
	cfg.Analysis.Backend = "go"

	cfg.Output.Dir = "."
	cfg.Output.CountsFile = DefaultCountsFile
	cfg.Output.SummaryFile = DefaultSummaryFile
	cfg.Output.PlotFile = DefaultPlotFile
	cfg.Output.Colors = []string{"#0000FF", "#90EE90"}

	cfg.Logging.Level = "info"

	return cfg
}

// LoadConfig loads configuration from a YAML file
// If the file doesn't exist, it returns the default configuration
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if configPath == "" {
		return cfg, nil
	}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(cfg *Config, configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// CreateDefaultConfigFile creates a default configuration file at the specified path
func CreateDefaultConfigFile(configPath string) error {
	return SaveConfig(DefaultConfig(), configPath)
}

// Validate checks every setting the analysis depends on.
func (c *Config) Validate() error {
	if err := c.Detection.Validate(); err != nil {
		return err
	}
	if c.Sampling.Size <= 0 {
		return fmt.Errorf("subsample size must be positive, got %d", c.Sampling.Size)
	}
	anchors, err := ParsePositions(c.Sampling.Positions)
	if err != nil {
		return err
	}
	if len(anchors) == 0 {
		return ErrNoWindows
	}
	if c.Analysis.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", c.Analysis.Workers)
	}
	if len(c.Output.Colors) != 2 {
		return fmt.Errorf("exactly two plot colors are required, got %d", len(c.Output.Colors))
	}
	for _, hex := range c.Output.Colors {
		if _, err := imaging.ParseHexColor(hex); err != nil {
			return fmt.Errorf("invalid plot color %q: %w", hex, err)
		}
	}
	return nil
}

// Windows returns the configured subsample windows in order.
func (c *Config) Windows() ([]imaging.Window, error) {
	anchors, err := ParsePositions(c.Sampling.Positions)
	if err != nil {
		return nil, err
	}
	if len(anchors) == 0 {
		return nil, ErrNoWindows
	}
	return imaging.WindowsAt(anchors, c.Sampling.Size), nil
}

// ParsePositions pairs a flat x1,y1,x2,y2,... list into anchors.
//
// An odd-length list is rejected with ErrOddPositions rather than padded or
// truncated. Negative coordinates are rejected too. An empty list yields no
// windows; Validate rejects it with ErrNoWindows.
func ParsePositions(flat []int) ([]image.Point, error) {
	if len(flat)%2 != 0 {
		return nil, fmt.Errorf("%w: got %d values", ErrOddPositions, len(flat))
	}
	anchors := make([]image.Point, 0, len(flat)/2)
	for i := 0; i < len(flat); i += 2 {
		if flat[i] < 0 || flat[i+1] < 0 {
			return nil, fmt.Errorf("subsample position %d (%d,%d) is negative", i/2, flat[i], flat[i+1])
		}
		anchors = append(anchors, image.Point{X: flat[i], Y: flat[i+1]})
	}
	return anchors, nil
}
