package config

import (
	"encoding/json"

	"github.com/creasty/defaults"
)

// Config Configuration
type Config struct {
	Log      LogConfig      `yaml:"log" json:"log" envconfig:"LOG"`
	Database DatabaseConfig `yaml:"database" json:"database" envconfig:"DATABASE"`
	Server   ServerConfig   `yaml:"server" json:"server" envconfig:"SERVER"`
	Webhook  WebhookConfig  `yaml:"webhook" json:"webhook" envconfig:"WEBHOOK"`
}

func (cfg Config) String() string {
	bytes, err := json.Marshal(cfg)
	if err != nil {
		panic(err)
	}
	return string(bytes)
}

func (cfg Config) Validate() error {
	if err := cfg.Log.Validate(); err != nil {
		return err
	}
	if err := cfg.Database.Validate(); err != nil {
		return err
	}
	if err := cfg.Server.Validate(); err != nil {
		return err
	}
	if err := cfg.Webhook.Validate(); err != nil {
		return err
	}
	return nil
}

func New() *Config {
	var cfg Config
	if err := defaults.Set(&cfg); err != nil {
		panic(err)
	}
	return &cfg
}
