package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/romangod6/site-devserver/internal/checker"
	"github.com/romangod6/site-devserver/internal/sitemap"
	"github.com/romangod6/site-devserver/internal/utils"
	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Request every URL in the sitemap from a running server",
	Long:  "Reads the sitemap, rewrites each loc onto --base and fails if any page does not answer with a 2xx status.",
	RunE:  runCheck,
}

var (
	checkBase    string
	checkSitemap string
)

func init() {
	checkCmd.Flags().StringVarP(&checkBase, "base", "b", "", "Base URL of the running server (default: http://localhost:<server.port>)")
	checkCmd.Flags().StringVarP(&checkSitemap, "sitemap", "s", "", "Sitemap file (default: the configured sitemap output)")
	rootCmd.AddCommand(checkCmd)
}

func runCheck(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	path := checkSitemap
	if path == "" {
		opts, err := sitemapOptions(cfg)
		if err != nil {
			return err
		}
		path = opts.OutputPath()
	}
	base := checkBase
	if base == "" {
		base = fmt.Sprintf("http://localhost:%d", cfg.Server.Port)
	}

	sm, err := sitemap.ParseFile(path)
	if err != nil {
		return err
	}

	logger, err := utils.NewRunLogger(cfg.Logging.Dir, "check")
	if err != nil {
		return err
	}
	defer logger.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	c := checker.NewChecker(&checker.Config{
		BaseURL:     base,
		UserAgent:   cfg.Checker.UserAgent,
		Parallelism: cfg.Checker.Parallelism,
		Timeout:     cfg.GetCheckTimeout(),
	}, logger)

	report, err := c.Check(ctx, sm)
	if err != nil {
		return err
	}

	failed := report.Failed()
	log.Printf("Checked %d URLs against %s, %d failed", len(report.Results()), base, len(failed))
	if len(failed) > 0 {
		return fmt.Errorf("%d of %d sitemap URLs failed", len(failed), len(report.Results()))
	}
	return nil
}
