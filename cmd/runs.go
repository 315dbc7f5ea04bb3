package main

import (
	"github.com/spf13/cobra"

	"github.com/DavidEscobar2707/bta-onboarding/internal/model"
	"github.com/DavidEscobar2707/bta-onboarding/internal/store"
)

var (
	runsStatus string
	runsDomain string
	runsLimit  int
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recent research runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		runs, err := env.Store.ListRuns(ctx, store.RunFilter{
			Status: model.RunStatus(runsStatus),
			Domain: runsDomain,
			Limit:  runsLimit,
		})
		if err != nil {
			return err
		}
		return printJSON(runs)
	},
}

func init() {
	runsCmd.Flags().StringVar(&runsStatus, "status", "", "filter by status (queued|researching|complete|failed)")
	runsCmd.Flags().StringVar(&runsDomain, "domain", "", "filter by domain")
	runsCmd.Flags().IntVar(&runsLimit, "limit", 20, "maximum runs to return")
	rootCmd.AddCommand(runsCmd)
}
