package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeWiki()
	c.normalizeConvert()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.TempDir, err = expandPath(strings.TrimSpace(c.Paths.TempDir)); err != nil {
		return fmt.Errorf("paths.temp_dir: %w", err)
	}
	if c.Paths.StateDir, err = expandPath(strings.TrimSpace(c.Paths.StateDir)); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeWiki() {
	c.Wiki.DefaultLang = strings.ToLower(strings.TrimSpace(c.Wiki.DefaultLang))
	c.Wiki.UserAgent = strings.TrimSpace(c.Wiki.UserAgent)
	if c.Wiki.UserAgent == "" {
		c.Wiki.UserAgent = defaultUserAgent
	}
	if c.Wiki.ConnectTimeout <= 0 {
		c.Wiki.ConnectTimeout = defaultConnectTimeout
	}
	if c.Wiki.RequestTimeout <= 0 {
		c.Wiki.RequestTimeout = defaultRequestTimeout
	}
	c.Wiki.PageSource = strings.ToLower(strings.TrimSpace(c.Wiki.PageSource))
	if c.Wiki.PageSource == "" {
		c.Wiki.PageSource = PageSourceQuery
	}
	c.Wiki.Scheme = strings.ToLower(strings.TrimSpace(c.Wiki.Scheme))
	if c.Wiki.Scheme == "" {
		c.Wiki.Scheme = "https"
	}
	c.Wiki.BaseURL = strings.TrimRight(strings.TrimSpace(c.Wiki.BaseURL), "/")
}

func (c *Config) normalizeConvert() {
	c.Convert.EbookConvert = strings.TrimSpace(c.Convert.EbookConvert)
	if c.Convert.EbookConvert == "" || c.Convert.EbookConvert == defaultEbookConvert {
		if value, ok := os.LookupEnv("WSEXPORT_EBOOK_CONVERT"); ok && strings.TrimSpace(value) != "" {
			c.Convert.EbookConvert = strings.TrimSpace(value)
		}
	}
	if c.Convert.EbookConvert == "" {
		c.Convert.EbookConvert = defaultEbookConvert
	}
	if c.Convert.ExecTimeout <= 0 {
		c.Convert.ExecTimeout = defaultExecTimeout
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}
