package main

import (
	"errors"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/DavidEscobar2707/bta-onboarding/internal/model"
	"github.com/DavidEscobar2707/bta-onboarding/internal/store"
)

var competitorClientDomain string

var competitorCmd = &cobra.Command{
	Use:   "competitor <domain>",
	Short: "Deep-dive a single competitor, optionally compared against a client",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		domain := args[0]

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		var comparison *model.ComparisonContext
		if competitorClientDomain != "" {
			client, err := env.Store.GetCachedRecord(ctx, competitorClientDomain)
			switch {
			case err == nil:
				comparison = &model.ComparisonContext{
					Domain:   client.Domain,
					Features: client.Features,
				}
				if client.Name != nil {
					comparison.Name = *client.Name
				}
				if client.USP != nil {
					comparison.USP = *client.USP
				}
				if client.ICP != nil {
					comparison.ICP = *client.ICP
				}
			case errors.Is(err, store.ErrNotFound):
				zap.L().Warn("no cached client record, researching competitor without comparison",
					zap.String("client", competitorClientDomain),
				)
			default:
				return err
			}
		}

		run, err := env.Store.CreateRun(ctx, domain, model.RoleCompetitor)
		if err != nil {
			return err
		}
		if err := env.Store.UpdateRunStatus(ctx, run.ID, model.RunStatusResearching); err != nil {
			zap.L().Warn("update run status", zap.Error(err))
		}

		result, err := env.Orchestrator.ResearchCompetitor(ctx, domain, comparison)
		if err != nil {
			if failErr := env.Store.FailRun(ctx, run.ID, err.Error()); failErr != nil {
				zap.L().Warn("record run failure", zap.Error(failErr))
			}
			return err
		}

		env.Reviews.AddGoogleReview(ctx, result.Data)

		if err := env.Store.CompleteRun(ctx, run.ID, result.Data); err != nil {
			zap.L().Warn("record run completion", zap.Error(err))
		}
		if err := env.Store.SetCachedRecord(ctx, result.Data.Domain, result.Data, env.CacheTTL); err != nil {
			zap.L().Warn("cache record", zap.Error(err))
		}

		return printJSON(result)
	},
}

func init() {
	competitorCmd.Flags().StringVar(&competitorClientDomain, "client", "", "client domain to compare against (uses its cached record)")
	rootCmd.AddCommand(competitorCmd)
}
