package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"time"

	"github.com/nycstandup/showcatalog/internal/logger"
	"github.com/nycstandup/showcatalog/internal/venue"
)

// Validate ensures the configuration is usable. It also resolves the
// timezone and builds the venue registry.
func (c *Config) Validate() error {
	if err := c.validateTimezone(); err != nil {
		return err
	}
	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	if err := c.validateBrowser(); err != nil {
		return err
	}
	if err := c.validateAPI(); err != nil {
		return err
	}
	return c.validateVenues()
}

func (c *Config) validateTimezone() error {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return fmt.Errorf("timezone: %w", err)
	}
	c.location = loc
	return nil
}

func (c *Config) validateBrowser() error {
	if !c.Browser.UseProxy {
		return nil
	}
	if c.Browser.ProxyURL == "" {
		return errors.New("browser.proxy_url is required when browser.use_proxy is set")
	}
	u, err := url.Parse(c.Browser.ProxyURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("browser.proxy_url %q is not a valid URL", c.Browser.ProxyURL)
	}
	return nil
}

func (c *Config) validateAPI() error {
	if _, _, err := net.SplitHostPort(c.API.Bind); err != nil {
		return fmt.Errorf("api.bind: %w", err)
	}
	return nil
}

func (c *Config) validateVenues() error {
	registry, err := venue.Load(c.Venues)
	if err != nil {
		return fmt.Errorf("venues: %w", err)
	}
	c.registry = registry
	return nil
}
