package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/eringen/folio"
)

var outDir string

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Export the site as static files",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("out") || cfg.OutputDir == "" {
			cfg.OutputDir = outDir
		}
		app := folio.New(cfg)
		defer app.Close()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		n, err := app.Build(ctx, cfg.OutputDir)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %d files to %s\n", n, cfg.OutputDir)
		return nil
	},
}

func init() {
	buildCmd.Flags().StringVar(&outDir, "out", "dist", "Output directory")
	rootCmd.AddCommand(buildCmd)
}
