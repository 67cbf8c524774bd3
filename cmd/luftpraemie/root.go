// Package main provides the luftpraemie CLI.
package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/luftpraemie/luftpraemie/internal/config"
)

// Version is set at compile time via ldflags.
var Version = "dev"

var (
	cfg *config.Config
	log zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "luftpraemie",
	Short: "Cross-references Swiss air quality with health-insurance premiums",
	Long: "Interpolates NABEL station measurements to municipality coordinates " +
		"and joins them with the BAG premium filings per canton.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c
		log = config.NewLogger(cfg.Log).With().Str("version", Version).Logger()
		return nil
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
