package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Config holds the application configuration
type Config struct {
	Backend   BackendConfig   `json:"backend"`
	Annotator AnnotatorConfig `json:"annotator"`
	Server    ServerConfig    `json:"server"`
	Storage   StorageConfig   `json:"storage"`
}

// BackendConfig holds configuration for the vision-model backend
type BackendConfig struct {
	Kind     string `json:"kind"` // ollama or llamacpp
	URL      string `json:"url"`
	Model    string `json:"model"`
	SendSize int    `json:"send_size"` // max long side sent to the model, 0=original
}

// AnnotatorConfig holds configuration for the annotation renderer
type AnnotatorConfig struct {
	BoldFontPath    string `json:"bold_font_path"`
	RegularFontPath string `json:"regular_font_path"`
}

// ServerConfig holds configuration for the HTTP layer
type ServerConfig struct {
	Addr        string   `json:"addr"`
	CORSOrigins []string `json:"cors_origins"`
}

// StorageConfig holds configuration for analysis persistence
type StorageConfig struct {
	MongoURI string `json:"mongo_uri"`
	Database string `json:"database"`
}

// Default returns a configuration with default values
func Default() *Config {
	return &Config{
		Backend: BackendConfig{
			Kind:     "ollama",
			URL:      "http://localhost:11434",
			Model:    "llama3.2-vision",
			SendSize: 1536,
		},
		Annotator: AnnotatorConfig{
			BoldFontPath:    "/usr/share/fonts/truetype/dejavu/DejaVuSans-Bold.ttf",
			RegularFontPath: "/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
		},
		Server: ServerConfig{
			Addr:        ":8000",
			CORSOrigins: []string{"*"},
		},
		Storage: StorageConfig{
			MongoURI: "",
			Database: "blueprints",
		},
	}
}

// LoadFromFile loads configuration from a JSON file
func LoadFromFile(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &config, nil
}

// SaveToFile saves configuration to a JSON file
func (c *Config) SaveToFile(filename string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ApplyEnv overrides secrets and deployment values from the environment
func (c *Config) ApplyEnv() {
	if v := os.Getenv("MONGO_URL"); v != "" {
		c.Storage.MongoURI = v
	}
	if v := os.Getenv("DB_NAME"); v != "" {
		c.Storage.Database = v
	}
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		c.Server.CORSOrigins = strings.Split(v, ",")
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Backend.Kind != "ollama" && c.Backend.Kind != "llamacpp" {
		return fmt.Errorf("backend.kind must be ollama or llamacpp")
	}

	if c.Backend.Model == "" {
		return fmt.Errorf("backend.model cannot be empty")
	}

	if c.Backend.SendSize < 0 {
		return fmt.Errorf("backend.send_size must not be negative")
	}

	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr cannot be empty")
	}

	return nil
}

// GetConfigPath returns the default configuration file path
func GetConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./config.json"
	}
	return filepath.Join(home, ".config", "blueprint-analyzer", "config.json")
}
