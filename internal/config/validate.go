package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePlatform(); err != nil {
		return err
	}
	if err := c.validateUploads(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePlatform() error {
	parsed, err := url.Parse(c.Platform.BaseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("platform.base_url must be an absolute URL, got %q", c.Platform.BaseURL)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("platform.base_url must use http or https, got %q", parsed.Scheme)
	}
	if strings.TrimSpace(c.Platform.APIToken) == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/encore/config.toml"
		}
		return fmt.Errorf("platform.api_token is required. Set ENCORE_API_TOKEN env var or edit %s (create with 'encore config init')", defaultPath)
	}
	if c.Platform.TimeoutSeconds <= 0 {
		return errors.New("platform.timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateUploads() error {
	if c.Uploads.MaxBufferMiB < 0 {
		return errors.New("uploads.max_buffer_mib must be >= 0 (0 disables the cap)")
	}
	if c.Uploads.ArtworkSide <= 0 {
		return errors.New("uploads.artwork_side must be positive")
	}
	return nil
}
