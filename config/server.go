package config

import (
	"fmt"
	"net"
)

type ServerConfig struct {
	Listen       string `yaml:"listen" json:"listen" envconfig:"LISTEN" default:"0.0.0.0:9700"`
	ReadTimeout  uint32 `yaml:"read_timeout" json:"read_timeout" envconfig:"READ_TIMEOUT" default:"60"`
	WriteTimeout uint32 `yaml:"write_timeout" json:"write_timeout" envconfig:"WRITE_TIMEOUT" default:"60"`
}

func (cfg ServerConfig) Validate() error {
	if _, _, err := net.SplitHostPort(cfg.Listen); err != nil {
		return fmt.Errorf("invalid listen address: %s", cfg.Listen)
	}
	return nil
}
