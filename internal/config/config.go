// Package config handles loading and validation of the optd YAML
// configuration file.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// DataConfig locates the OPTD files.
type DataConfig struct {
	Dir     string `yaml:"dir"`
	PORURL  string `yaml:"porURL" validate:"omitempty,url"`
	UNLCURL string `yaml:"unlcURL" validate:"omitempty,url"`
	// DownloadTimeoutS bounds a single file download, in seconds.
	DownloadTimeoutS int `yaml:"downloadTimeoutS" validate:"gte=0"`
}

// ServerConfig contains HTTP API configuration
type ServerConfig struct {
	Port int `yaml:"port" validate:"gte=0,lte=65535"`
}

// LogConfig contains logging configuration
type LogConfig struct {
	Level  string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
	Format string `yaml:"format" validate:"omitempty,oneof=text json"`
}

// AppConfig is the root configuration structure
type AppConfig struct {
	Data   DataConfig   `yaml:"data"`
	Server ServerConfig `yaml:"server"`
	Log    LogConfig    `yaml:"log"`
}

// Defaults applied to empty settings.
const (
	DefaultDataDir          = "./optd-data"
	DefaultPort             = 8080
	DefaultDownloadTimeoutS = 300
)

// Default returns the configuration used when no file is given.
func Default() AppConfig {
	var cfg AppConfig
	cfg.applyDefaults()
	return cfg
}

func (c *AppConfig) applyDefaults() {
	if c.Data.Dir == "" {
		c.Data.Dir = DefaultDataDir
	}
	if c.Data.DownloadTimeoutS == 0 {
		c.Data.DownloadTimeoutS = DefaultDownloadTimeoutS
	}
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Load reads and validates the configuration at path. An empty path
// returns Default().
func Load(path string) (AppConfig, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return AppConfig{}, fmt.Errorf("reading config: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML configuration document.
func Parse(data []byte) (AppConfig, error) {
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return AppConfig{}, fmt.Errorf("parsing config: %w", err)
	}
	if err := validator.New().Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return AppConfig{}, fmt.Errorf("invalid config: field %s fails %q", verrs[0].Namespace(), verrs[0].Tag())
		}
		return AppConfig{}, fmt.Errorf("invalid config: %w", err)
	}
	cfg.applyDefaults()
	return cfg, nil
}
