package main

import (
	"context"

	"github.com/spf13/cobra"
)

var sitemapCmd = &cobra.Command{
	Use:   "sitemap",
	Short: "Write the sitemap for the site root once and exit",
	RunE:  runSitemap,
}

var (
	sitemapRoot   string
	sitemapHost   string
	sitemapOutput string
)

func init() {
	sitemapCmd.Flags().StringVarP(&sitemapRoot, "root", "r", "", "Directory to scan (overrides site.root)")
	sitemapCmd.Flags().StringVar(&sitemapHost, "host", "", "Public host prefix for URLs (overrides site.host)")
	sitemapCmd.Flags().StringVarP(&sitemapOutput, "out", "o", "", "Output file, relative to the root unless absolute (overrides sitemap.output)")
	rootCmd.AddCommand(sitemapCmd)
}

func runSitemap(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if sitemapRoot != "" {
		cfg.Site.Root = sitemapRoot
	}
	if sitemapHost != "" {
		cfg.Site.Host = sitemapHost
	}
	if sitemapOutput != "" {
		cfg.Sitemap.Output = sitemapOutput
	}

	opts, err := sitemapOptions(cfg)
	if err != nil {
		return err
	}

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
	}

	return generateSitemap(context.Background(), cfg, opts, store)
}
