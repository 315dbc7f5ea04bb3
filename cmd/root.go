package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/DavidEscobar2707/bta-onboarding/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "bta-onboarding",
	Short: "B2B company research orchestrator",
	Long:  "Researches companies through multiple web-grounded AI providers with fallback, normalizes the output into one canonical profile, and publishes it to the team workspace and voice agent.",
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
