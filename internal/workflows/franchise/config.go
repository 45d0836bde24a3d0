package franchise

import (
	"fmt"
	"time"
)

type Config struct {
	PageSize int           `mapstructure:"page_size"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

func DefaultConfig() *Config {
	return &Config{
		PageSize: 10,
		Timeout:  10 * time.Second,
	}
}

func (c *Config) Validate() error {
	if c.PageSize <= 0 {
		return fmt.Errorf("page_size must be positive")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	return nil
}
