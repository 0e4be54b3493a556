package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
)

// ReadConfig reads the configuration from the specified JSON file.
// Secrets that should not live in the config file (Gemini API key, session
// secret) may instead be provided through the environment and override the
// file values.
func ReadConfig(configPath string) (Config, error) {
	var cfg Config

	viper.SetConfigFile(configPath)
	viper.SetConfigType("json")

	if err := viper.ReadInConfig(); err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := viper.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		cfg.Gemini.APIKey = key
	}
	if secret := os.Getenv("SESSION_SECRET"); secret != "" {
		cfg.Session.Secret = secret
	}
	if cfg.Session.TTLHours <= 0 {
		cfg.Session.TTLHours = 24
	}
	if cfg.Gemini.Model == "" {
		cfg.Gemini.Model = "gemini-2.0-flash"
	}

	return cfg, nil
}

// MustReadConfig reads the configuration or panics if there's an error.
func MustReadConfig(configPath string) Config {
	cfg, err := ReadConfig(configPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}
	return cfg
}
