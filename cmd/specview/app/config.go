package app

import (
	"errors"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roman-kulish/spectrum-viewer/internal/display"
	"github.com/roman-kulish/spectrum-viewer/internal/plot"
)

// Config represents the main application configuration
type Config struct {
	Settings Settings      `yaml:"settings"`
	Display  DisplayConfig `yaml:"display"`
	Plot     PlotConfig    `yaml:"plot"`
	Storage  StorageConfig `yaml:"storage"`
	Export   ExportConfig  `yaml:"export"`
}

// Settings represents global application settings
type Settings struct {
	LogLevel string `yaml:"logLevel"`
}

// DisplayConfig controls how records are turned into display series.
// A nil frequency or level keeps the value of the last loaded record.
type DisplayConfig struct {
	Width          int      `yaml:"width"`
	StartFrequency *float64 `yaml:"startFrequency"`
	StopFrequency  *float64 `yaml:"stopFrequency"`
	Pan            float64  `yaml:"pan"`            // MHz, applied after the range is set
	ReferenceLevel *float64 `yaml:"referenceLevel"` // dBm
	Scale          *float64 `yaml:"scale"`          // dB per division
	UseDetrend     bool     `yaml:"useDetrend"`
	UseRCFilter    bool     `yaml:"useRcFilter"`
	RCWeight       float64  `yaml:"rcWeight"`
	DetrendFile    string   `yaml:"detrendFile"` // Capture path, or record name when reading from the archive
	Exclude        []string `yaml:"exclude"`     // Record names left out of the output
}

// PlotConfig represents chart rendering settings
type PlotConfig struct {
	Height int              `yaml:"height"`
	Format plot.ImageFormat `yaml:"format"`
}

// StorageConfig represents record archive settings
type StorageConfig struct {
	DBPath string `yaml:"dbPath"`
}

// ExportConfig represents CSV export settings
type ExportConfig struct {
	Directory string `yaml:"directory"`
}

var validImageFormats = map[plot.ImageFormat]struct{}{
	plot.ImagePNG:  {},
	plot.ImageJPEG: {},
}

func NewConfig() *Config {
	return &Config{
		Settings: Settings{
			LogLevel: "INFO",
		},
		Display: DisplayConfig{
			Width:    1024,
			RCWeight: display.DefaultRCWeight,
		},
		Plot: PlotConfig{
			Height: 600,
			Format: plot.ImagePNG,
		},
		Export: ExportConfig{
			Directory: ".",
		},
	}
}

// LoadConfig reads the YAML configuration at path on top of the defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	c := NewConfig()
	if err = yaml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	if err = c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks values that cannot be corrected by defaults.
func (c *Config) Validate() error {
	if err := c.Display.Validate(); err != nil {
		return err
	}

	switch {
	case c.Plot.Height <= 0:
		return fmt.Errorf("plot height must be positive: %d", c.Plot.Height)
	}
	if _, ok := validImageFormats[c.Plot.Format]; !ok {
		return fmt.Errorf("invalid image format: %s", c.Plot.Format)
	}
	return nil
}

func (c *DisplayConfig) Validate() error {
	switch {
	case c.Width <= 0:
		return fmt.Errorf("display width must be positive: %d", c.Width)
	case !(c.RCWeight >= 0 && c.RCWeight < 1):
		return fmt.Errorf("rc weight must be in [0, 1): %g", c.RCWeight)
	case c.StartFrequency != nil && c.StopFrequency != nil && !(*c.StartFrequency < *c.StopFrequency):
		return errors.New("start frequency must be below stop frequency")
	case c.Scale != nil && !(*c.Scale > 0 && !math.IsInf(*c.Scale, 0)):
		return fmt.Errorf("scale must be positive: %g", *c.Scale)
	case c.ReferenceLevel != nil && (math.IsNaN(*c.ReferenceLevel) || math.IsInf(*c.ReferenceLevel, 0)):
		return fmt.Errorf("invalid reference level: %g", *c.ReferenceLevel)
	case math.IsNaN(c.Pan) || math.IsInf(c.Pan, 0):
		return fmt.Errorf("invalid pan: %g", c.Pan)
	}
	return nil
}
