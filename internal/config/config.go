package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the server configuration loaded from YAML.
type Config struct {
	Server struct {
		Port        int `yaml:"port"`
		MetricsPort int `yaml:"metrics_port"`
	} `yaml:"server"`

	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`

	Data struct {
		// Dir is where JSON snapshots (menu, preferences, reports) live.
		Dir string `yaml:"dir"`
	} `yaml:"data"`

	Auth struct {
		// Secret signs and verifies API tokens. Empty disables auth.
		Secret string `yaml:"secret"`
	} `yaml:"auth"`

	Recommend struct {
		DefaultTopK int `yaml:"default_top_k"`
	} `yaml:"recommend"`
}

// Default returns a config with working defaults for local use.
func Default() *Config {
	cfg := &Config{}
	cfg.Server.Port = 8080
	cfg.Server.MetricsPort = 9090
	cfg.Database.Path = "whatstoeat.db"
	cfg.Data.Dir = "data"
	cfg.Recommend.DefaultTopK = 3
	return cfg
}

// Load reads a YAML config file, applying defaults for missing fields.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.Recommend.DefaultTopK < 1 {
		cfg.Recommend.DefaultTopK = 3
	}
	return cfg, nil
}
