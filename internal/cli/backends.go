package cli

import (
	"context"
	"os"

	"github.com/charmbracelet/log"

	"github.com/partstack/partstack/pkg/cache"
	"github.com/partstack/partstack/pkg/catalog"
	"github.com/partstack/partstack/pkg/config"
	"github.com/partstack/partstack/pkg/integrations"
	"github.com/partstack/partstack/pkg/integrations/digikey"
	"github.com/partstack/partstack/pkg/integrations/easyeda"
	"github.com/partstack/partstack/pkg/integrations/jlcpcb"
	"github.com/partstack/partstack/pkg/integrations/mouser"
	"github.com/partstack/partstack/pkg/toolserver"
)

// memoryCacheEntries bounds the in-process response cache.
const memoryCacheEntries = 4096

func buildCache(ctx context.Context, cfg *config.Config, logger *log.Logger) (cache.Cache, error) {
	switch cfg.Cache.Backend {
	case "", "memory":
		return cache.NewMemoryCache(memoryCacheEntries), nil
	case "file":
		return cache.NewFileCache(cfg.Cache.Dir)
	case "redis":
		return cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     cfg.Cache.Redis.Addr,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
			Prefix:   cfg.Cache.Redis.Prefix,
		})
	case "none":
		return cache.NewNullCache(), nil
	default:
		logger.Warn("unknown cache backend, using memory", "backend", cfg.Cache.Backend)
		return cache.NewMemoryCache(memoryCacheEntries), nil
	}
}

// buildBackends wires the distributor clients and local catalog from
// configuration. Backends without credentials stay nil and their tools
// report as unavailable.
func buildBackends(ctx context.Context, cfg *config.Config, logger *log.Logger) (toolserver.Backends, *integrations.Client, error) {
	responseCache, err := buildCache(ctx, cfg, logger)
	if err != nil {
		return toolserver.Backends{}, nil, err
	}

	httpClient := integrations.NewClient(integrations.Options{
		Cache:         responseCache,
		CachePrefix:   appName + ":",
		CacheTTL:      cfg.Cache.TTL.Std(),
		MaxConcurrent: cfg.Server.MaxConcurrent,
		Timeout:       cfg.Server.RequestTimeout.Std(),
	})

	backends := toolserver.Backends{
		JLCPCB:  jlcpcb.New(httpClient, logger),
		EasyEDA: easyeda.New(httpClient),
	}
	if cfg.Mouser.APIKey != "" {
		backends.Mouser = mouser.New(httpClient, cfg.Mouser.APIKey)
	} else {
		logger.Debug("mouser disabled, no API key")
	}
	if cfg.DigiKey.ClientID != "" && cfg.DigiKey.ClientSecret != "" {
		backends.DigiKey = digikey.New(httpClient, logger, cfg.DigiKey.ClientID, cfg.DigiKey.ClientSecret)
	} else {
		logger.Debug("digikey disabled, no client credentials")
	}

	if _, err := os.Stat(cfg.Catalog.Path); err == nil {
		db, err := catalog.Open(cfg.Catalog.Path, logger)
		if err != nil {
			httpClient.Close()
			return toolserver.Backends{}, nil, err
		}
		backends.Catalog = db
	} else {
		logger.Debug("local catalog disabled, database not found", "path", cfg.Catalog.Path)
	}

	return backends, httpClient, nil
}

func closeBackends(b toolserver.Backends, httpClient *integrations.Client) {
	if b.Catalog != nil {
		b.Catalog.Close()
	}
	if httpClient != nil {
		httpClient.Close()
	}
}
