package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // database/sql driver for migrations
	"go.uber.org/zap"

	"github.com/adlens-io/adlens-engine/pkg/auth"
	"github.com/adlens-io/adlens-engine/pkg/config"
	"github.com/adlens-io/adlens-engine/pkg/database"
	"github.com/adlens-io/adlens-engine/pkg/handlers"
	"github.com/adlens-io/adlens-engine/pkg/middleware"
	"github.com/adlens-io/adlens-engine/pkg/repositories"
	"github.com/adlens-io/adlens-engine/pkg/services"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := newLogger(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Configuration loaded",
		zap.String("env", cfg.Env),
		zap.String("base_url", cfg.BaseURL),
		zap.Bool("auth_verification", cfg.Auth.EnableVerification),
		zap.String("database", cfg.Database.Database),
		zap.Int("batch_size", cfg.Upload.BatchSize))

	ctx := context.Background()

	// Migrations run over database/sql; the app itself uses a pgx pool.
	migrationDB, err := sql.Open("pgx", cfg.Database.ConnectionString())
	if err != nil {
		logger.Fatal("Failed to open migration connection", zap.Error(err))
	}
	if err := database.RunMigrations(migrationDB, cfg.Database.MigrationsPath, logger); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}
	_ = migrationDB.Close()

	db, err := database.NewConnection(ctx, &database.Config{
		URL:            cfg.Database.ConnectionString(),
		MaxConnections: cfg.Database.MaxConnections,
	})
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	vendorRepo := repositories.NewVendorRepository(db)
	productRepo := repositories.NewProductRepository(db)
	campaignRepo := repositories.NewCampaignRepository(db)
	categoryRepo := repositories.NewCategoryRepository(db)
	keywordRepo := repositories.NewKeywordRepository(db)
	performanceRepo := repositories.NewPerformanceRepository(db)

	importer := services.NewImportService(vendorRepo, productRepo, campaignRepo,
		categoryRepo, keywordRepo, performanceRepo, cfg.Upload.BatchSize, logger)
	queue := services.NewImportQueue(importer, cfg.Upload.QueueDepth, logger)
	reports := services.NewReportService(campaignRepo, productRepo, keywordRepo,
		categoryRepo, performanceRepo, logger)

	verifier, err := auth.NewJWKSVerifier(&auth.Config{
		EnableVerification: cfg.Auth.EnableVerification,
		JWKSEndpoints:      cfg.Auth.JWKSEndpoints,
	})
	if err != nil {
		logger.Fatal("Failed to create token verifier", zap.Error(err))
	}
	authMW := auth.NewMiddleware(verifier, cfg.Auth.EnableVerification, logger)

	flash := handlers.NewFlashStore(cfg.SessionKey, logger)

	mux := http.NewServeMux()

	healthHandler := handlers.NewHealthHandler(cfg, logger)
	healthHandler.RegisterRoutes(mux)

	uploadHandler := handlers.NewUploadHandler(queue, flash, cfg, logger)
	uploadHandler.RegisterRoutes(mux, authMW.RequireAuth)

	reportsHandler := handlers.NewReportsHandler(reports, logger)
	reportsHandler.RegisterRoutes(mux, authMW.RequireAuth)

	// Serve static UI files from ui/dist
	fs := http.FileServer(http.Dir("./ui/dist"))
	mux.Handle("/", fs)

	handler := middleware.RequestLogger(logger)(mux)

	srv := &http.Server{
		Addr:    cfg.BindAddr + ":" + cfg.Port,
		Handler: handler,
	}

	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-sigCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("Starting adlens-engine",
		zap.String("port", cfg.Port),
		zap.String("version", cfg.Version))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server failed", zap.Error(err))
	}

	// Let in-flight imports finish before the process exits.
	drainCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := queue.Shutdown(drainCtx); err != nil {
		logger.Warn("Import queue did not drain before shutdown", zap.Error(err))
	}
}

func newLogger(env string) (*zap.Logger, error) {
	if env == "local" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
