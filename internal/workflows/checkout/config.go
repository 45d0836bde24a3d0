package checkout

import (
	"fmt"
	"time"
)

type Config struct {
	SubmitTimeout time.Duration `mapstructure:"submit_timeout"`
	VerifyTimeout time.Duration `mapstructure:"verify_timeout"`
}

func DefaultConfig() *Config {
	return &Config{
		SubmitTimeout: 15 * time.Second,
		VerifyTimeout: 10 * time.Second,
	}
}

func (c *Config) Validate() error {
	if c.SubmitTimeout <= 0 {
		return fmt.Errorf("submit_timeout must be positive")
	}
	if c.VerifyTimeout <= 0 {
		return fmt.Errorf("verify_timeout must be positive")
	}
	return nil
}
