package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

// Load reads configuration from a YAML file and environment variables.
// Priority: ENV > YAML > env-default tags. The YAML path comes from
// CONFIG_PATH (fallback ./config.yaml); a missing default file is not an
// error.
func Load() (*Config, error) {
	var cfg Config

	path := os.Getenv("CONFIG_PATH")
	explicitPath := path != ""
	if !explicitPath {
		path = "./config.yaml"
	}

	if _, err := os.Stat(path); err == nil {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	} else if explicitPath {
		return nil, fmt.Errorf("config: file %s: %w", path, err)
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config: read env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if len(c.Auth.JWTSecret) < 16 {
		return errors.New("auth.jwt_secret must be at least 16 characters")
	}
	if c.Compliance.PassThreshold < 0 || c.Compliance.PassThreshold > 100 {
		return errors.New("compliance.pass_threshold must be within [0,100]")
	}
	if c.Compliance.OverdueAuditPenalty < 0 || c.Compliance.OpenGrievancePenalty < 0 {
		return errors.New("compliance penalties must not be negative")
	}
	if c.RateLimit.AnonymousBurst < 1 || c.RateLimit.UserBurst < 1 {
		return errors.New("rate limit bursts must be positive")
	}
	return nil
}
