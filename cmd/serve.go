package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/DavidEscobar2707/bta-onboarding/internal/model"
	"github.com/DavidEscobar2707/bta-onboarding/internal/research"
	"github.com/DavidEscobar2707/bta-onboarding/internal/store"
	"github.com/DavidEscobar2707/bta-onboarding/internal/voice"
	"github.com/DavidEscobar2707/bta-onboarding/internal/workspace"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the onboarding research HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		api := &apiServer{env: env}

		r := chi.NewRouter()
		r.Use(middleware.RequestID)
		r.Use(middleware.Recoverer)
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type"},
			MaxAge:         300,
		}))

		r.Get("/health", api.health)
		r.Post("/onboard", api.onboard)
		r.Post("/research/competitor", api.researchCompetitor)
		r.Post("/research/data-review-autofill", api.dataReviewAutofill)
		r.Get("/runs/{id}", api.getRun)

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           r,
			ReadHeaderTimeout: 10 * time.Second,
		}

		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := signalFreeContext(10 * time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return eris.Wrap(err, "server listen")
		}
		return nil
	},
}

type apiServer struct {
	env *appEnv
}

func (a *apiServer) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// onboard runs the full client research pipeline synchronously and
// returns the normalized record plus its competitor list.
func (a *apiServer) onboard(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Domain string `json:"domain"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Domain == "" {
		writeError(w, http.StatusBadRequest, "domain is required")
		return
	}

	ctx := r.Context()
	run, err := a.env.Store.CreateRun(ctx, req.Domain, model.RoleClient)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	_ = a.env.Store.UpdateRunStatus(ctx, run.ID, model.RunStatusResearching)

	result, err := a.env.Orchestrator.ResearchDomain(ctx, req.Domain)
	if err != nil {
		// Only a total provider failure on the primary pass reaches here.
		_ = a.env.Store.FailRun(ctx, run.ID, err.Error())
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	a.env.Reviews.AddGoogleReview(ctx, result.Data)
	_ = a.env.Store.CompleteRun(ctx, run.ID, result.Data)
	if err := a.env.Store.SetCachedRecord(ctx, result.Data.Domain, result.Data, a.env.CacheTTL); err != nil {
		zap.L().Warn("cache record", zap.Error(err))
	}

	if a.env.Writer != nil {
		go a.publish(result)
	}

	writeJSON(w, http.StatusOK, result)
}

// publish pushes a finished onboarding result to the workspace in the
// background; failures are logged, never surfaced to the HTTP caller.
func (a *apiServer) publish(result *model.DomainResult) {
	ctx, cancel := signalFreeContext(2 * time.Minute)
	defer cancel()

	wr, err := a.env.Writer.PublishOnboarding(ctx, workspace.Payload{
		ClientDomain: result.Data.Domain,
		ClientData:   result.Data,
		Competitors:  result.Competitors,
	})
	if err != nil {
		zap.L().Error("workspace publish failed",
			zap.String("domain", result.Data.Domain),
			zap.String("kind", string(workspace.KindOf(err))),
			zap.Error(err),
		)
		return
	}
	zap.L().Info("workspace publish complete",
		zap.String("domain", result.Data.Domain),
		zap.String("recordId", wr.RecordID),
		zap.Bool("verified", wr.Verified),
	)
}

func (a *apiServer) researchCompetitor(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CompetitorDomain string                   `json:"competitorDomain"`
		ClientDomain     string                   `json:"clientDomain"`
		ClientContext    *model.ComparisonContext `json:"clientContext"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.CompetitorDomain == "" {
		writeError(w, http.StatusBadRequest, "competitorDomain is required")
		return
	}

	ctx := r.Context()
	comparison := req.ClientContext
	if comparison == nil && req.ClientDomain != "" {
		if client, err := a.env.Store.GetCachedRecord(ctx, req.ClientDomain); err == nil {
			comparison = &model.ComparisonContext{Domain: client.Domain, Features: client.Features}
			if client.Name != nil {
				comparison.Name = *client.Name
			}
			if client.USP != nil {
				comparison.USP = *client.USP
			}
			if client.ICP != nil {
				comparison.ICP = *client.ICP
			}
		}
	}

	result, err := a.env.Orchestrator.ResearchCompetitor(ctx, req.CompetitorDomain, comparison)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	a.env.Reviews.AddGoogleReview(ctx, result.Data)
	if err := a.env.Store.SetCachedRecord(ctx, result.Data.Domain, result.Data, a.env.CacheTTL); err != nil {
		zap.L().Warn("cache record", zap.Error(err))
	}

	writeJSON(w, http.StatusOK, result)
}

func (a *apiServer) dataReviewAutofill(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ClientData     *model.ResearchRecord            `json:"clientData"`
		ClientDomain   string                           `json:"clientDomain"`
		CompData       map[string]*model.ResearchRecord `json:"compData"`
		Competitors    []model.CompetitorRef            `json:"competitors"`
		ElevenLabsData *model.EnrichmentContext         `json:"elevenLabsData"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := a.env.Orchestrator.DataReviewAutofill(r.Context(), research.AutofillRequest{
		ClientDomain: req.ClientDomain,
		ClientData:   req.ClientData,
		CompData:     req.CompData,
		Competitors:  req.Competitors,
		Enrichment:   req.ElevenLabsData,
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"clientDataPatch":           result.ClientPatch,
		"competitorPatchesByDomain": result.CompetitorPatches,
		"voiceContext":              voice.BuildAgentContext(patchOr(result.ClientPatch, req.ClientData), req.CompData),
	})
}

func (a *apiServer) getRun(w http.ResponseWriter, r *http.Request) {
	run, err := a.env.Store.GetRun(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "run not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, run)
}

// signalFreeContext returns a bounded context detached from the signal
// context, so shutdown and background publishes are not cancelled by the
// signal that triggered them.
func signalFreeContext(d time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), d)
}

func patchOr(patch, original *model.ResearchRecord) *model.ResearchRecord {
	if patch != nil {
		return patch
	}
	return original
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
