package main

import (
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"wsexport/internal/config"
	"wsexport/internal/jobs"
	"wsexport/internal/logging"
	"wsexport/internal/services"
	"wsexport/internal/wikiapi"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// log returns the configured logger, falling back to a no-op logger when the
// log file cannot be opened.
func (c *commandContext) log() *slog.Logger {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.logger = logging.NewNop()
			return
		}
		logger, err := logging.NewFromConfig(cfg)
		if err != nil {
			c.logger = logging.NewNop()
			return
		}
		c.logger = logger
	})
	return c.logger
}

// wikiClient builds an API client for lang, defaulting to wiki.default_lang.
func (c *commandContext) wikiClient(lang string) (*wikiapi.Client, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(lang) == "" {
		lang = cfg.Wiki.DefaultLang
	}
	opts := []wikiapi.Option{
		wikiapi.WithScheme(cfg.Wiki.Scheme),
		wikiapi.WithUserAgent(cfg.Wiki.UserAgent),
		wikiapi.WithTimeouts(cfg.ConnectTimeout(), cfg.RequestTimeout()),
		wikiapi.WithLogger(c.log()),
	}
	if cfg.Wiki.BaseURL != "" {
		opts = append(opts, wikiapi.WithBaseURL(cfg.Wiki.BaseURL))
	}
	return wikiapi.New(lang, opts...)
}

func (c *commandContext) openJobs() (*jobs.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return jobs.Open(cfg)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

// exitCode maps error classes to distinct process exit statuses.
func exitCode(err error) int {
	switch {
	case errors.Is(err, services.ErrInvalidFormat), errors.Is(err, services.ErrConfiguration):
		return 2
	case errors.Is(err, services.ErrNotFound):
		return 3
	case errors.Is(err, services.ErrConversion):
		return 4
	default:
		return 1
	}
}
