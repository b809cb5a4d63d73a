package config

import (
	"fmt"
	"strings"

	"github.com/nycstandup/showcatalog/internal/fetch"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeFetch()
	c.normalizeBrowser()
	c.normalizeRetention()
	c.Timezone = strings.TrimSpace(c.Timezone)
	if c.Timezone == "" {
		c.Timezone = defaultTimezone
	}
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	if c.LogLevel == "" {
		c.LogLevel = defaultLogLevel
	}
	c.API.Bind = strings.TrimSpace(c.API.Bind)
	if c.API.Bind == "" {
		c.API.Bind = defaultAPIBind
	}
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.DBPath) == "" {
		c.DBPath = defaultDBPath
	}
	if c.DBPath, err = expandPath(strings.TrimSpace(c.DBPath)); err != nil {
		return fmt.Errorf("db_path: %w", err)
	}
	if strings.TrimSpace(c.LockPath) == "" {
		c.LockPath = defaultLockPath
	}
	if c.LockPath, err = expandPath(strings.TrimSpace(c.LockPath)); err != nil {
		return fmt.Errorf("lock_path: %w", err)
	}
	if c.Browser.ExecPath != "" {
		if c.Browser.ExecPath, err = expandPath(strings.TrimSpace(c.Browser.ExecPath)); err != nil {
			return fmt.Errorf("browser.exec_path: %w", err)
		}
	}
	return nil
}

func (c *Config) normalizeFetch() {
	if c.Fetch.TimeoutSeconds <= 0 {
		c.Fetch.TimeoutSeconds = int(fetch.DefaultTimeout.Seconds())
	}
	if c.Fetch.MinBodyBytes <= 0 {
		c.Fetch.MinBodyBytes = fetch.DefaultMinBodyBytes
	}
	if c.Fetch.MaxBodyBytes <= 0 {
		c.Fetch.MaxBodyBytes = fetch.DefaultMaxBodyBytes
	}
	c.Fetch.UserAgent = strings.TrimSpace(c.Fetch.UserAgent)
	if c.Fetch.UserAgent == "" {
		c.Fetch.UserAgent = fetch.DefaultUserAgent
	}
	if c.Fetch.CourtesyDelayMS < 0 {
		c.Fetch.CourtesyDelayMS = 0
	}
	signatures := c.Fetch.BlockSignatures[:0]
	for _, s := range c.Fetch.BlockSignatures {
		if s = strings.TrimSpace(s); s != "" {
			signatures = append(signatures, s)
		}
	}
	c.Fetch.BlockSignatures = signatures
}

func (c *Config) normalizeBrowser() {
	c.Browser.Country = strings.ToLower(strings.TrimSpace(c.Browser.Country))
	if c.Browser.Country == "" {
		c.Browser.Country = defaultCountry
	}
	c.Browser.ProxyURL = strings.TrimSpace(c.Browser.ProxyURL)
	if c.Browser.NavigationTimeoutSeconds <= 0 {
		c.Browser.NavigationTimeoutSeconds = int(fetch.DefaultNavigationTimeout.Seconds())
	}
	if c.Browser.SettleSeconds < 0 {
		c.Browser.SettleSeconds = 0
	}
}

func (c *Config) normalizeRetention() {
	if c.Retention.Days <= 0 {
		c.Retention.Days = defaultRetentionDays
	}
	if c.Retention.Days > maxRetentionDays {
		c.Retention.Days = maxRetentionDays
	}
}
