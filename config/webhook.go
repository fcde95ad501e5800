package config

import (
	"errors"
)

type WebhookConfig struct {
	// Secret is the shared secret GitHub signs deliveries with.
	Secret string `yaml:"secret" json:"-" envconfig:"SECRET" default:""`
	// AllowUnsigned disables signature verification. Meant for local
	// development only; without it an empty secret is a configuration error.
	AllowUnsigned bool `yaml:"allow_unsigned" json:"allow_unsigned" envconfig:"ALLOW_UNSIGNED" default:"false"`
	// MaxBodySize caps the delivery body in bytes. GitHub caps payloads
	// at 25MB.
	MaxBodySize int64 `yaml:"max_body_size" json:"max_body_size" envconfig:"MAX_BODY_SIZE" default:"26214400"`
}

func (cfg WebhookConfig) Validate() error {
	if cfg.Secret == "" && !cfg.AllowUnsigned {
		return errors.New("webhook.secret is required unless webhook.allow_unsigned is set")
	}
	if cfg.MaxBodySize <= 0 {
		return errors.New("webhook.max_body_size must be positive")
	}
	return nil
}
