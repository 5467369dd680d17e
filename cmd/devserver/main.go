// Package main is the devserver CLI: serve a built site, write its sitemap
// and check that every listed page answers.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:          "devserver",
	Short:        "Static site development server",
	Long:         "Serves a directory of prebuilt files with cache-busting headers and writes a sitemap of the served tree on shutdown.",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to a config file (default: ./config.yaml or ./config/config.yaml)")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
