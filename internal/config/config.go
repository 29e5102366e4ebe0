package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the application's configuration.
type Config struct {
	Database struct {
		URL            string `yaml:"url"`
		MigrationsPath string `yaml:"migrations_path"`
	} `yaml:"database"`
	Storage struct {
		// Root is the directory evidence artifacts are written under.
		Root string `yaml:"root"`
	} `yaml:"storage"`
	Auth struct {
		JWTSecret     string `yaml:"jwt_secret"`
		TokenTTLHours int64  `yaml:"token_ttl_hours"`
	} `yaml:"auth"`
	Audit struct {
		LogFile string `yaml:"log_file"`
	} `yaml:"audit"`
	Correlation struct {
		MaxRelatedDisplay int `yaml:"max_related_display"`
	} `yaml:"correlation"`
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
}

// LoadConfig reads configuration from the specified YAML file.
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{}

	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	if err := decoder.Decode(config); err != nil {
		return nil, fmt.Errorf("failed to decode config file: %w", err)
	}

	if config.Database.MigrationsPath == "" {
		config.Database.MigrationsPath = "migrations"
	}
	if config.Storage.Root == "" {
		return nil, fmt.Errorf("storage.root must be set")
	}
	if config.Auth.TokenTTLHours <= 0 {
		config.Auth.TokenTTLHours = 24
	}
	if config.Correlation.MaxRelatedDisplay <= 0 {
		config.Correlation.MaxRelatedDisplay = 10
	}

	return config, nil
}
