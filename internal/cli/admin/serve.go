package admin

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cloo-solutions/shopmate/internal/api/handlers"
	"github.com/cloo-solutions/shopmate/internal/api/middleware"
	"github.com/cloo-solutions/shopmate/internal/config"
	"github.com/cloo-solutions/shopmate/internal/database"
	"github.com/cloo-solutions/shopmate/internal/embedding"
	"github.com/cloo-solutions/shopmate/internal/index"
	"github.com/cloo-solutions/shopmate/internal/jobs"
	"github.com/cloo-solutions/shopmate/internal/knowledge"
	"github.com/cloo-solutions/shopmate/internal/llm"
	"github.com/cloo-solutions/shopmate/internal/logging"
	"github.com/cloo-solutions/shopmate/internal/repository"
	"github.com/cloo-solutions/shopmate/internal/scraper"
	"github.com/cloo-solutions/shopmate/internal/server"
	"github.com/cloo-solutions/shopmate/internal/service"
	"github.com/cloo-solutions/shopmate/internal/telemetry"
	"github.com/cloo-solutions/shopmate/internal/tool"
)

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long:  "Start the shopmate API server: chat, product search and review analysis",
		RunE:  runServe,
	}

	cmd.Flags().StringP("port", "p", "", "Port to listen on (overrides SHOPMATE_PORT)")
	cmd.Flags().Bool("no-migrate", false, "Skip automatic database migrations on startup")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := logging.Init(cfg.Debug)
	if err != nil {
		return err
	}
	defer logging.Sync()

	if cfg.SentryDSN != "" {
		shutdownTelemetry, err := telemetry.Init(telemetry.Config{
			DSN:              cfg.SentryDSN,
			Environment:      cfg.Environment,
			TracesSampleRate: cfg.TracesSampleRate(),
			Debug:            cfg.Debug,
		})
		if err != nil {
			logger.Warn("telemetry init failed, continuing without tracing", zap.Error(err))
		} else {
			defer shutdownTelemetry()
		}
	}

	if port, _ := cmd.Flags().GetString("port"); port != "" {
		cfg.Port = port
	}

	pool, err := openPool(ctx, cfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	if noMigrate, _ := cmd.Flags().GetBool("no-migrate"); !noMigrate {
		if _, err := database.Migrate(cfg.DatabaseURL, database.DefaultMigrationsSource, database.Up); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	productRepo := repository.NewProductRepository(pool)
	offerRepo := repository.NewOfferRepository(pool)
	reviewRepo := repository.NewReviewRepository(pool)
	insightRepo := repository.NewInsightRepository(pool)
	jobRepo := repository.NewAnalysisJobRepository(pool)
	activityRepo := repository.NewActivityLogRepository(pool)
	txRunner := repository.NewTxRunner(pool)

	objects, err := newObjectStore(ctx, cfg)
	if err != nil {
		return err
	}

	embedder, err := newEmbedder(ctx, cfg)
	if err != nil {
		return err
	}
	cached := embedding.NewCachedEmbedder(embedder, repository.NewEmbeddingCacheRepository(pool))
	logger.Info("embedder ready", zap.String("model", cached.Model()), zap.Int("dimensions", cached.Dimensions()))

	knowledgeIndex := index.New(cached)
	loader := knowledge.NewLoader(nil, objectGetter(objects))
	go buildIndex(ctx, knowledgeIndex, loader, cfg.KnowledgeSource)

	g, err := newGuard(cfg)
	if err != nil {
		return err
	}

	providers, err := newProviders(ctx, cfg)
	if err != nil {
		return err
	}
	adapter := llm.NewAdapter(cfg.LLMTimeout, providers...)
	logger.Info("model providers", zap.Strings("auto_chain", adapter.Providers()))

	tools, err := tool.NewShoppingRegistry(productRepo, offerRepo, insightRepo)
	if err != nil {
		return fmt.Errorf("failed to register tools: %w", err)
	}

	activity := service.MultiActivityRecorder{
		service.NewLogActivityRecorder(logger),
		service.NewStoreActivityRecorder(activityRepo),
	}

	if !cfg.HasSerpAPI() {
		logger.Warn("SHOPMATE_SERPAPI_KEY not set, search and analysis use mock data")
	}
	chatSvc := service.NewChatService(g, knowledgeIndex, adapter, tools, activity)
	productSvc := service.NewProductService(productRepo, offerRepo, insightRepo, txRunner, scraper.NewClient(cfg.SerpAPIKey))
	analysisSvc := service.NewAnalysisService(offerRepo, reviewRepo, insightRepo, adapter)

	worker := jobs.NewWorker(jobs.NewAnalysisWorker(jobRepo, analysisSvc), cfg.WorkerPollInterval)
	go worker.Start(ctx)
	logger.Info("analysis worker started", zap.Duration("poll_interval", cfg.WorkerPollInterval))

	routerCfg := server.RouterConfig{
		CORSOrigins:    cfg.CORSOrigins,
		HealthHandler:  handlers.NewHealthHandler(pool, knowledgeIndex, adapter),
		ChatHandler:    handlers.NewChatHandler(chatSvc),
		ProductHandler: handlers.NewProductHandler(productSvc),
	}
	if cfg.APIKey != "" {
		routerCfg.AuthValidator = middleware.NewStaticKeyValidator(cfg.APIKey)
	} else {
		logger.Warn("SHOPMATE_API_KEY not set, /analyze is open")
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           server.NewRouter(routerCfg),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("starting server", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err := <-serveErr:
		if err != nil {
			worker.Stop()
			return fmt.Errorf("server failed: %w", err)
		}
	}

	worker.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("server exited")
	return nil
}
