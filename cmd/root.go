package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Mayconxzdev/automation-advisor/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "advisor",
	Short: "Automation AI advisor for small businesses",
	Long: `advisor generates automation recommendations for business process
descriptions, backed by a generative model when one is configured and by
a deterministic rule pack otherwise. It persists recommendations,
projects and flow diagrams per user and serves them over HTTP.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
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
