package main

import (
	"encoding/json"
	"errors"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/DavidEscobar2707/bta-onboarding/internal/model"
	"github.com/DavidEscobar2707/bta-onboarding/internal/store"
	"github.com/DavidEscobar2707/bta-onboarding/internal/voice"
	"github.com/DavidEscobar2707/bta-onboarding/internal/workspace"
)

var (
	researchPublish    bool
	researchSkipCache  bool
	researchVoicePrint bool
)

var researchCmd = &cobra.Command{
	Use:   "research <domain>",
	Short: "Run the full onboarding research pipeline for a domain",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		domain := args[0]

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		if !researchSkipCache {
			if cached, err := env.Store.GetCachedRecord(ctx, domain); err == nil {
				zap.L().Info("serving cached record", zap.String("domain", domain))
				return printJSON(model.DomainResult{Data: cached, Competitors: cached.Competitors})
			} else if !errors.Is(err, store.ErrNotFound) {
				zap.L().Warn("cache read failed", zap.Error(err))
			}
		}

		run, err := env.Store.CreateRun(ctx, domain, model.RoleClient)
		if err != nil {
			return err
		}
		if err := env.Store.UpdateRunStatus(ctx, run.ID, model.RunStatusResearching); err != nil {
			zap.L().Warn("update run status", zap.Error(err))
		}

		result, err := env.Orchestrator.ResearchDomain(ctx, domain)
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

		if researchPublish && env.Writer != nil {
			wr, err := env.Writer.PublishOnboarding(ctx, workspace.Payload{
				ClientDomain: result.Data.Domain,
				ClientData:   result.Data,
				Competitors:  result.Competitors,
			})
			if err != nil {
				zap.L().Error("workspace publish failed",
					zap.String("kind", string(workspace.KindOf(err))),
					zap.Error(err),
				)
			} else {
				zap.L().Info("workspace publish complete",
					zap.String("recordId", wr.RecordID),
					zap.Bool("verified", wr.Verified),
				)
			}
		}

		if researchVoicePrint {
			_, _ = os.Stdout.WriteString(voice.BuildAgentContext(result.Data, nil) + "\n\n")
		}

		return printJSON(result)
	},
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func init() {
	researchCmd.Flags().BoolVar(&researchPublish, "publish", false, "publish result to the workspace")
	researchCmd.Flags().BoolVar(&researchSkipCache, "no-cache", false, "bypass the record cache")
	researchCmd.Flags().BoolVar(&researchVoicePrint, "voice-context", false, "also print the voice agent context")
	rootCmd.AddCommand(researchCmd)
}
