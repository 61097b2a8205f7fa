// Package config holds the service configuration, loadable from a JSON
// file with sensible defaults.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Face backend selection values.
const (
	FaceBackendCascade = "cascade"
	FaceBackendOllama  = "ollama"
	FaceBackendNone    = "none"
)

// Config holds the service configuration.
type Config struct {
	// ListenAddr is the HTTP listen address.
	ListenAddr string `json:"listen_addr"`

	// TickMs is the inter-tick interval of the event stream in
	// milliseconds (~67ms for 15 events/second).
	TickMs int `json:"tick_ms"`

	// CameraIndex pins the capture device. -1 probes indices
	// 0..CameraProbeLimit-1 in order.
	CameraIndex int `json:"camera_index"`

	// CameraProbeLimit is the number of device indices tried when
	// CameraIndex is -1.
	CameraProbeLimit int `json:"camera_probe_limit"`

	// FaceBackend selects the face detector: cascade, ollama or none.
	FaceBackend string `json:"face_backend"`

	// CascadePath is the Haar cascade XML file; empty searches
	// well-known locations.
	CascadePath string `json:"cascade_path"`

	// OllamaHost and OllamaModel configure the ollama face backend.
	OllamaHost  string `json:"ollama_host"`
	OllamaModel string `json:"ollama_model"`

	// Debug enables the MJPEG debug stream endpoint.
	Debug bool `json:"debug"`
}

// Default returns a configuration with default values.
func Default() *Config {
	return &Config{
		ListenAddr:       ":8001",
		TickMs:           67,
		CameraIndex:      -1,
		CameraProbeLimit: 3,
		FaceBackend:      FaceBackendCascade,
		OllamaHost:       "http://127.0.0.1:11434",
		OllamaModel:      "llava",
	}
}

// LoadFromFile loads configuration from a JSON file on top of defaults.
func LoadFromFile(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := Default()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.ListenAddr == "" {
		return fmt.Errorf("listen_addr cannot be empty")
	}

	if c.TickMs <= 0 {
		return fmt.Errorf("tick_ms must be positive")
	}

	if c.CameraIndex < -1 {
		return fmt.Errorf("camera_index must be -1 (auto) or a device index")
	}

	if c.CameraProbeLimit < 1 {
		return fmt.Errorf("camera_probe_limit must be at least 1")
	}

	switch c.FaceBackend {
	case FaceBackendCascade, FaceBackendOllama, FaceBackendNone:
	default:
		return fmt.Errorf("face_backend must be one of cascade, ollama, none")
	}

	if c.FaceBackend == FaceBackendOllama {
		if c.OllamaHost == "" {
			return fmt.Errorf("ollama_host cannot be empty with the ollama backend")
		}
		if c.OllamaModel == "" {
			return fmt.Errorf("ollama_model cannot be empty with the ollama backend")
		}
	}

	return nil
}

// TickInterval returns TickMs as a duration.
func (c *Config) TickInterval() time.Duration {
	return time.Duration(c.TickMs) * time.Millisecond
}

// GetConfigPath returns the default configuration file path.
func GetConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./config.json"
	}
	return filepath.Join(home, ".drishti", "config.json")
}
