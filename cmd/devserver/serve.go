package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/romangod6/site-devserver/internal/api"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the site root and write the sitemap on shutdown",
	RunE:  runServe,
}

var (
	serveRoot string
	servePort int
)

func init() {
	serveCmd.Flags().StringVarP(&serveRoot, "root", "r", "", "Directory to serve (overrides site.root)")
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Port to listen on (overrides server.port)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if serveRoot != "" {
		cfg.Site.Root = serveRoot
	}
	if servePort != 0 {
		cfg.Server.Port = servePort
	}

	// Fail fast on bad ignore rules rather than at shutdown
	opts, err := sitemapOptions(cfg)
	if err != nil {
		return err
	}

	info, err := os.Stat(cfg.Site.Root)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("site root %q is not a directory", cfg.Site.Root)
	}

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
	}

	server := api.NewServer(api.Options{
		Port:         cfg.Server.Port,
		Root:         cfg.Site.Root,
		ReadTimeout:  cfg.GetReadTimeout(),
		WriteTimeout: cfg.GetWriteTimeout(),
	}, store)

	serveErr := make(chan error, 1)
	go func() {
		log.Printf("Serving %s on port %d", cfg.Site.Root, cfg.Server.Port)
		serveErr <- server.Start()
	}()

	// Handle system signals for shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case err := <-serveErr:
		if err != nil {
			return err
		}
	case sig := <-sigChan:
		log.Printf("Received %s, shutting down...", sig)
	}

	// Graceful server shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Error shutting down server: %v", err)
	}
	log.Println("Server shut down gracefully")

	if !cfg.Sitemap.OnShutdown {
		return nil
	}
	return generateSitemap(context.Background(), cfg, opts, store)
}
