package main

import (
	"github.com/spf13/cobra"

	"github.com/eringen/folio"
)

var (
	configPath string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "folio",
	Short: "folio blog and portfolio engine",
	Long: `folio serves a blog and project portfolio from markdown files.

Commands:
  folio serve                  Serve the site and reload on content changes
  folio build [--out dist]     Export the site as static files
  folio new post|project TITLE Write a new content file
  folio version                Print the folio version`,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "folio.yaml",
		"Path to the site config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"Log level: debug, info, warn, error (overrides the config file)")
}

// loadConfig reads the config named by --config and applies --log-level.
func loadConfig() (folio.SiteConfig, error) {
	cfg, err := folio.LoadConfig(configPath)
	if err != nil {
		return cfg, err
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	return cfg, nil
}
