package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/tagdex/internal/config"
	"github.com/kailas-cloud/tagdex/internal/domain/search/rank"
	"github.com/kailas-cloud/tagdex/internal/metrics"
	budgetrepo "github.com/kailas-cloud/tagdex/internal/repository/budget"
	chiTransport "github.com/kailas-cloud/tagdex/internal/transport/chi"
	openaiTagger "github.com/kailas-cloud/tagdex/internal/transport/openai"
	healthuc "github.com/kailas-cloud/tagdex/internal/usecase/health"
	recorduc "github.com/kailas-cloud/tagdex/internal/usecase/record"
	searchuc "github.com/kailas-cloud/tagdex/internal/usecase/search"
	tagginguc "github.com/kailas-cloud/tagdex/internal/usecase/tagging"
	uploaduc "github.com/kailas-cloud/tagdex/internal/usecase/upload"
	usageuc "github.com/kailas-cloud/tagdex/internal/usecase/usage"
	"github.com/kailas-cloud/tagdex/internal/version"
)

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx)
		},
	}
}

// serve is the composition root of the HTTP server. It blocks until ctx is
// canceled, then drains in-flight requests.
func (a *app) serve(ctx context.Context) error {
	cfg := a.cfg
	logger := a.logger
	defer func() { _ = logger.Sync() }()

	build := version.Get()
	logger.Info("Starting tagdex API server",
		zap.String("version", build.Version),
		zap.String("commit", build.Commit),
		zap.String("go", build.GoVersion),
		zap.String("env", a.env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("storage_driver", cfg.Storage.Driver),
		zap.String("uploads_driver", cfg.Uploads.Driver),
	)

	records, err := openRecords(ctx, cfg.Storage, logger)
	if err != nil {
		return err
	}
	defer records.Close()

	artifacts, err := openArtifacts(ctx, cfg.Uploads, logger)
	if err != nil {
		return err
	}

	// Register metrics explicitly (no init())
	metrics.RegisterTaggingMetrics()
	metrics.RegisterSearchMetrics()

	if cfg.Tagging.APIKey == "" {
		logger.Warn("tagging.api_key is empty, uploads will fail until it is set")
	}
	baseTagger := openaiTagger.NewTagger(&openaiTagger.Config{
		APIKey:      cfg.Tagging.APIKey,
		BaseURL:     cfg.Tagging.BaseURL,
		Model:       cfg.Tagging.Model,
		Temperature: *cfg.Tagging.Temperature,
		Timeout:     cfg.Tagging.Timeout(),
		Logger:      logger,
	})
	logger.Info("Tagger created", zap.String("model", cfg.Tagging.Model))

	budget := newBudget(ctx, cfg.Tagging, cfg.Storage.KeyPrefix, records, logger)

	// Pass nil interfaces (not typed nil pointers) when no budget is configured.
	var (
		budgetChecker tagginguc.BudgetChecker
		budgetReader  usageuc.BudgetReader
	)
	if budget != nil {
		budgetChecker = budget
		budgetReader = budget
	}
	tagger := tagginguc.NewBudgetedTagger(baseTagger, cfg.Tagging.Model, budgetChecker, logger)

	uploadSvc := uploaduc.New(artifacts, tagger).
		WithPreviewLimits(cfg.Tagging.PreviewMaxBytes, cfg.Tagging.PreviewMaxRunes)
	recordSvc := recorduc.New(records).
		WithPagination(cfg.Search.DefaultPageSize, cfg.Search.MaxPageSize)
	searchSvc := searchuc.New(records, rank.New(nil)).
		WithLimits(cfg.Search.DefaultK, cfg.Search.MaxK)
	usageSvc := usageuc.New(budgetReader)
	healthSvc := healthuc.New(records, artifacts, baseTagger)

	if !hasAPIKey(cfg.Auth.APIKeys) {
		logger.Warn("auth.api_keys is empty, API authentication is disabled")
	}

	server := chiTransport.NewServer(
		uploadSvc, recordSvc, searchSvc, artifacts, usageSvc, healthSvc, cfg.Uploads.MaxBytes,
	)
	handler := chiTransport.NewRouter(server, logger, cfg.Auth.APIKeys)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
		logger.Info("Received shutdown signal")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
		return err
	}

	logger.Info("Server stopped gracefully")
	return nil
}

// newBudget builds the tagging token budget, or nil when no limit is set.
// Counters persist in the record backend when it is a key-value store.
func newBudget(
	ctx context.Context, cfg config.TaggingConfig, keyPrefix string,
	records recordStore, logger *zap.Logger,
) *tagginguc.BudgetTracker {
	if !cfg.Budget.Enabled() {
		return nil
	}

	action := tagginguc.BudgetActionWarn
	if cfg.Budget.Action == "reject" {
		action = tagginguc.BudgetActionReject
	}
	budget := tagginguc.NewBudgetTracker(
		cfg.Model, cfg.Budget.DailyTokenLimit, cfg.Budget.MonthlyTokenLimit, action, logger,
	)

	if sr, ok := records.(*seqRecordStore); ok {
		budget.WithStore(ctx, budgetrepo.New(sr.store, 48*time.Hour, 62*24*time.Hour), keyPrefix)
	} else {
		logger.Warn("Record store cannot hold counters, tagging budget is kept in memory only")
	}

	logger.Info("Tagging budget enabled",
		zap.Int64("daily_token_limit", cfg.Budget.DailyTokenLimit),
		zap.Int64("monthly_token_limit", cfg.Budget.MonthlyTokenLimit),
		zap.String("action", cfg.Budget.Action),
	)
	return budget
}

func hasAPIKey(keys []string) bool {
	for _, k := range keys {
		if strings.TrimSpace(k) != "" {
			return true
		}
	}
	return false
}
