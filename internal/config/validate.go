package config

import (
	"errors"
	"fmt"
	"net/url"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateWiki(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if c.Paths.TempDir == "" {
		return errors.New("paths.temp_dir must be set")
	}
	if c.Paths.StateDir == "" {
		return errors.New("paths.state_dir must be set")
	}
	return nil
}

func (c *Config) validateWiki() error {
	switch c.Wiki.PageSource {
	case PageSourceQuery, PageSourceREST:
	default:
		return fmt.Errorf("wiki.page_source must be %q or %q, got %q", PageSourceQuery, PageSourceREST, c.Wiki.PageSource)
	}
	switch c.Wiki.Scheme {
	case "http", "https":
	default:
		return fmt.Errorf("wiki.scheme must be http or https, got %q", c.Wiki.Scheme)
	}
	if c.Wiki.BaseURL != "" {
		u, err := url.Parse(c.Wiki.BaseURL)
		if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
			return fmt.Errorf("wiki.base_url must be an absolute http(s) URL, got %q", c.Wiki.BaseURL)
		}
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}
