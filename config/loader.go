package config

import (
	"os"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

const envPrefix = "GITPULSE"

// Load populates cfg from an optional YAML file, then overrides with
// GITPULSE_* environment variables.
func Load(filename string, cfg *Config) error {
	if filename != "" {
		content, err := os.ReadFile(filename)
		if err != nil {
			return err
		}
		if err := yaml.Unmarshal(content, cfg); err != nil {
			return err
		}
	}

	return envconfig.Process(envPrefix, cfg)
}
