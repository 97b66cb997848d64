package server

import (
	"errors"
	"fmt"
	"os"

	"github.com/flightaware/tilecover/pkg/tileutils"

	"gopkg.in/yaml.v3"
)

// Config holds the limits of the cover service
type Config struct {
	Addr string `yaml:"addr"`
	// MaxZoom is the highest zoom a request may ask for
	MaxZoom int `yaml:"max_zoom"`
	// MaxBoundTiles caps the tiles of the geometries' bounding box at the requested max zoom,
	// checked before covering
	MaxBoundTiles int `yaml:"max_bound_tiles"`
	// MaxTiles caps the tiles in a response
	MaxTiles     int  `yaml:"max_tiles"`
	MaxBodyBytes int  `yaml:"max_body_bytes"`
	AccessLog    bool `yaml:"access_log"`
}

// DefaultConfig returns the configuration used for settings missing from the config file
func DefaultConfig() Config {
	return Config{
		Addr:          ":8080",
		MaxZoom:       18,
		MaxBoundTiles: 1 << 22,
		MaxTiles:      100000,
		MaxBodyBytes:  10 << 20,
	}
}

// LoadConfig reads a YAML config file over DefaultConfig
func LoadConfig(filename string) (Config, error) {
	cfg := DefaultConfig()
	d, err := os.ReadFile(filename)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(d, &cfg); err != nil {
		return cfg, fmt.Errorf("unable to parse config %s: %w", filename, err)
	}
	return cfg, cfg.Validate()
}

// Validate checks the limits are usable
func (c Config) Validate() error {
	var errs []error
	if c.MaxZoom < tileutils.MinZoom || c.MaxZoom > tileutils.MaxZoom {
		errs = append(errs, fmt.Errorf("max_zoom must be between %d and %d", tileutils.MinZoom, tileutils.MaxZoom))
	}
	if c.MaxBoundTiles <= 0 {
		errs = append(errs, errors.New("max_bound_tiles must be positive"))
	}
	if c.MaxTiles <= 0 {
		errs = append(errs, errors.New("max_tiles must be positive"))
	}
	if c.MaxBodyBytes <= 0 {
		errs = append(errs, errors.New("max_body_bytes must be positive"))
	}
	return errors.Join(errs...)
}
