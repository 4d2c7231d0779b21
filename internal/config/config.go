// Package config holds runtime configuration for the camera server.
// Fields may be loaded from a JSON file and overridden by command-line flags.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/ayusman/picam/internal/capture"
)

// Config holds runtime configuration.
type Config struct {
	Addr string `json:"addr"`

	// Capture source
	Pipeline string `json:"pipeline"`
	DeviceID int    `json:"device_id"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	FPS      int    `json:"fps"`
	Flip     string `json:"flip"`

	// Timing, in milliseconds
	RetryIntervalMs  int `json:"retry_interval_ms"`
	StreamPollMs     int `json:"stream_poll_ms"`
	StreamIntervalMs int `json:"stream_interval_ms"`

	JPEGQuality int    `json:"jpeg_quality"`
	SaveDir     string `json:"save_dir"`
	DataDir     string `json:"data_dir"`
	Tray        bool   `json:"tray"`
}

// DefaultConfig returns a Config populated with standard defaults.
// Directory defaults live under the user's home directory.
func DefaultConfig() *Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}

	return &Config{
		Addr:             ":5000",
		Pipeline:         capture.DefaultPipeline,
		DeviceID:         0,
		Width:            capture.DefaultWidth,
		Height:           capture.DefaultHeight,
		FPS:              capture.DefaultFPS,
		Flip:             string(capture.OrientationBoth),
		RetryIntervalMs:  100,
		StreamPollMs:     50,
		StreamIntervalMs: 100,
		JPEGQuality:      capture.DefaultJPEGQuality,
		SaveDir:          filepath.Join(home, "training_images"),
		DataDir:          filepath.Join(home, ".picam"),
		Tray:             false,
	}
}

// Validate clamps/normalizes values to safe ranges.
// It returns an error only for values that cannot be repaired.
func (c *Config) Validate() error {
	d := DefaultConfig()

	if c.Addr == "" {
		c.Addr = d.Addr
	}
	if c.Width <= 0 {
		c.Width = d.Width
	}
	if c.Height <= 0 {
		c.Height = d.Height
	}
	if c.FPS <= 0 {
		c.FPS = d.FPS
	}
	if c.RetryIntervalMs <= 0 {
		c.RetryIntervalMs = d.RetryIntervalMs
	}
	if c.StreamPollMs <= 0 {
		c.StreamPollMs = d.StreamPollMs
	}
	if c.StreamIntervalMs <= 0 {
		c.StreamIntervalMs = d.StreamIntervalMs
	}
	if c.JPEGQuality <= 0 || c.JPEGQuality > 100 {
		c.JPEGQuality = d.JPEGQuality
	}
	if c.SaveDir == "" {
		c.SaveDir = d.SaveDir
	}
	if c.DataDir == "" {
		c.DataDir = d.DataDir
	}

	_, err := capture.ParseOrientation(c.Flip)
	return err
}

// Orientation returns the parsed flip setting. Call Validate first.
func (c *Config) Orientation() capture.Orientation {
	o, err := capture.ParseOrientation(c.Flip)
	if err != nil {
		return capture.OrientationNone
	}
	return o
}

// Source returns the capture source described by the config.
func (c *Config) Source() capture.Source {
	return capture.Source{
		Pipeline: c.Pipeline,
		DeviceID: c.DeviceID,
		Width:    c.Width,
		Height:   c.Height,
		FPS:      c.FPS,
	}
}

// RetryInterval is the capture backoff after a failed read.
func (c *Config) RetryInterval() time.Duration {
	return time.Duration(c.RetryIntervalMs) * time.Millisecond
}

// StreamPoll is how long a viewer waits when no frame is available.
func (c *Config) StreamPoll() time.Duration {
	return time.Duration(c.StreamPollMs) * time.Millisecond
}

// StreamInterval is the pause between parts sent to a viewer.
func (c *Config) StreamInterval() time.Duration {
	return time.Duration(c.StreamIntervalMs) * time.Millisecond
}

// Load attempts to read configuration from the given JSON file path. If the file does not
// exist it returns DefaultConfig(). On JSON error it returns defaults with the error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}
	defer f.Close()
	dec := json.NewDecoder(f)
	if err := dec.Decode(cfg); err != nil {
		return DefaultConfig(), err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Save writes the configuration to the given path in JSON format.
func (c *Config) Save(path string) error {
	_ = c.Validate()
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(c)
}
