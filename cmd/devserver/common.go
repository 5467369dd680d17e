package main

import (
	"context"
	"fmt"
	"log"

	"github.com/romangod6/site-devserver/config"
	"github.com/romangod6/site-devserver/internal/sitemap"
	"github.com/romangod6/site-devserver/internal/storage"
	"github.com/romangod6/site-devserver/internal/utils"
)

func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// openStore returns a nil store when no database driver is configured.
func openStore(cfg *config.Config) (storage.Store, error) {
	store, err := storage.Open(cfg.Database.Driver, cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	if store == nil {
		log.Println("Run history disabled (no database driver configured)")
	}
	return store, nil
}

func sitemapOptions(cfg *config.Config) (sitemap.Options, error) {
	rules, err := sitemap.CompileIgnoreRules(cfg.Sitemap.Ignore)
	if err != nil {
		return sitemap.Options{}, err
	}
	return sitemap.Options{
		Root:   cfg.Site.Root,
		Host:   cfg.Site.Host,
		Output: cfg.Sitemap.Output,
		Ignore: rules,
	}, nil
}

// generateSitemap runs the scan-build-write pipeline once with its own run log.
func generateSitemap(ctx context.Context, cfg *config.Config, opts sitemap.Options, store storage.Store) error {
	logger, err := utils.NewRunLogger(cfg.Logging.Dir, "sitemap")
	if err != nil {
		return err
	}
	defer logger.Close()

	_, err = sitemap.NewGenerator(opts, store, logger).Run(ctx)
	return err
}
