package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/reroute-bcn/streetscore/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "streetscore",
	Short: "Street-quality scoring for Barcelona's walkable network",
	Long:  "Scores every walkable street segment on noise, greenery, cleanliness, and cultural POI density from open municipal datasets, and exports one enriched GeoJSON.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
