package storefront

import (
	"fmt"
	"time"

	"pizza-storefront/internal/common/config"
	"pizza-storefront/internal/workflows/checkout"
	"pizza-storefront/internal/workflows/confirm"
	"pizza-storefront/internal/workflows/franchise"
)

// Config bundles the per-workflow settings of the storefront.
type Config struct {
	PageSize int
	// StoreListLimit caps how many franchises the menu offers stores from.
	StoreListLimit int
	Timeout        time.Duration
	Checkout       *checkout.Config
	Confirm        *confirm.Config
	Franchise      *franchise.Config
}

func DefaultConfig() *Config {
	return &Config{
		PageSize:       10,
		StoreListLimit: 100,
		Timeout:        10 * time.Second,
		Checkout:       checkout.DefaultConfig(),
		Confirm:        confirm.DefaultConfig(),
		Franchise:      franchise.DefaultConfig(),
	}
}

// NewConfig derives the storefront settings from the service section.
func NewConfig(cfg *config.Config) *Config {
	c := DefaultConfig()
	timeout := config.GetDuration(cfg.Service.Timeout)
	if cfg.Service.PageSize > 0 {
		c.PageSize = cfg.Service.PageSize
		c.Franchise.PageSize = cfg.Service.PageSize
	}
	if timeout > 0 {
		c.Timeout = timeout
		c.Confirm.Timeout = timeout
		c.Franchise.Timeout = timeout
		c.Checkout.VerifyTimeout = timeout
		if timeout > c.Checkout.SubmitTimeout {
			c.Checkout.SubmitTimeout = timeout
		}
	}
	return c
}

func (c *Config) Validate() error {
	if c.PageSize <= 0 {
		return fmt.Errorf("page size must be positive")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if err := c.Checkout.Validate(); err != nil {
		return fmt.Errorf("checkout: %w", err)
	}
	if err := c.Confirm.Validate(); err != nil {
		return fmt.Errorf("confirm: %w", err)
	}
	if err := c.Franchise.Validate(); err != nil {
		return fmt.Errorf("franchise: %w", err)
	}
	return nil
}
