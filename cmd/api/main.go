package main

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"docsearch/docs"
	"docsearch/internal/config"
	"docsearch/internal/database"
	"docsearch/internal/database/migration"
	handlers "docsearch/internal/http/handler"
	"docsearch/internal/http/middleware"
	"docsearch/internal/metrics"
	"docsearch/internal/otel"
	"docsearch/internal/permission"
	"docsearch/internal/repository/postgres"
	"docsearch/internal/searchengine"
	"docsearch/internal/service"
)

// @title Document Search API
// @version 1.0
// @BasePath /
func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()
	loc := time.UTC

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer logger.Sync()

	// Tracing first so the DB driver and HTTP clients pick up the provider
	shutdownTracing, err := otel.Init(context.Background(), loc)
	if err != nil {
		logger.Fatal("failed to initialize tracing", zap.Error(err))
	}
	defer shutdownTracing(context.Background())

	// Initialize PostgreSQL connection (with pooling via database/sql)
	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	migrateCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := migration.EnsureMigrated(migrateCtx, db, loc, cfg.Database.Host); err != nil {
		logger.Fatal("migration failed", zap.Error(err))
	}
	if cfg.SeedData {
		if err := migration.SeedDemoData(migrateCtx, db, loc); err != nil {
			logger.Fatal("seeding failed", zap.Error(err))
		}
	}

	// The three full-text engine adapters
	solr := searchengine.NewSolr(cfg.Search.Solr)
	openSearch := searchengine.NewOpenSearch(cfg.Search.OpenSearch)
	typeSense := searchengine.NewTypeSense(cfg.Search.TypeSense)
	allEngines := []searchengine.Client{solr, openSearch, typeSense}

	// Metrics: in-process aggregates plus prometheus, fed by one fanout sink
	registry := prometheus.NewRegistry()
	metrics.RegisterSearchMetrics(registry)
	searchMetrics := metrics.NewSearchMetrics(logger)
	sink := metrics.Fanout{searchMetrics, metrics.PrometheusSink{}}

	// Repositories and services
	docRepo := postgres.NewDocumentPostgres(db)
	docSvc := service.NewDocumentService(docRepo, allEngines, logger)
	searchSvc := service.NewSearchService(
		docRepo,
		// fallback priority: typesense answers fastest, solr last
		[]searchengine.Client{typeSense, openSearch, solr},
		permission.NewAllowAll(),
		sink,
		logger,
	)
	comparator := service.NewEngineComparator(solr, openSearch, typeSense, logger)

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
	})

	// Register global middleware
	app.Use(otelfiber.Middleware())
	// RequestID middleware adds/propagates X-Request-ID and stores it in context
	app.Use(middleware.RequestID())
	app.Use(middleware.Logger(logger))

	promMiddleware, err := middleware.NewPrometheusMiddleware(registry)
	if err != nil {
		logger.Fatal("failed to register prometheus middleware", zap.Error(err))
	}
	app.Use(promMiddleware.Handler())

	// Register HTTP routes with injected services
	handlers.RegisterRoutes(app, handlers.Dependencies{
		DB:         db,
		Documents:  docSvc,
		Search:     searchSvc,
		Comparator: comparator,
		Metrics:    searchMetrics,
		Registry:   registry,
	})

	// Swagger UI with dynamic host and scheme
	app.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.Split(proto, ",")[0]
		}

		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	})

	addr := ":" + cfg.Port

	if err := app.Listen(addr); err != nil {
		logger.Fatal("failed to start server", zap.Error(err))
	}
}
