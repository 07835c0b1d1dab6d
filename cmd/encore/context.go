package main

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"encore/internal/artwork"
	"encore/internal/asset"
	"encore/internal/config"
	"encore/internal/logging"
	"encore/internal/platform"
	"encore/internal/querycache"
	"encore/internal/submit"
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
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() *slog.Logger {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.logger = logging.NewNop()
			return
		}
		logger, err := logging.New(logging.Options{
			Level:  cfg.Logging.Level,
			Format: cfg.Logging.Format,
		})
		if err != nil {
			c.logger = logging.NewNop()
			return
		}
		c.logger = logger
	})
	return c.logger
}

func (c *commandContext) newClient() (*platform.Client, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return platform.New(cfg.Platform.BaseURL, cfg.Platform.APIToken,
		platform.WithHTTPClient(&http.Client{Timeout: cfg.RequestTimeout()}),
		platform.WithLogger(c.ensureLogger()))
}

// openCache opens the listing cache, or a disabled store when caching is off.
func (c *commandContext) openCache() (*querycache.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	if !cfg.Cache.Enabled {
		return querycache.Open("")
	}
	return querycache.Open(cfg.Cache.Path)
}

// newOrchestrator wires a signed-in orchestrator: resolve the token to a
// principal, then hand it the client, cache, encoder, and artwork gate from
// config. The caller owns closing the returned cache.
func (c *commandContext) newOrchestrator(ctx context.Context) (*submit.Orchestrator, *querycache.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, nil, err
	}
	client, err := c.newClient()
	if err != nil {
		return nil, nil, err
	}
	principal, err := client.WhoAmI(ctx)
	if err != nil {
		return nil, nil, err
	}
	cache, err := c.openCache()
	if err != nil {
		return nil, nil, err
	}

	orch, err := submit.New(submit.Options{
		Principal:            *principal,
		Backend:              client,
		Cache:                cache,
		Encoder:              asset.NewEncoder(cfg.MaxBufferBytes()),
		Artwork:              artwork.Validator{Side: cfg.Uploads.ArtworkSide},
		Logger:               c.ensureLogger(),
		FailOpenBlockedProbe: cfg.Policy.FailOpenBlockedProbe,
	})
	if err != nil {
		_ = cache.Close()
		return nil, nil, err
	}
	return orch, cache, nil
}
