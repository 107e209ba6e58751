package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"steptree/internal/auth"
	"steptree/internal/config"
	"steptree/internal/domain/models"
	repo "steptree/internal/domain/repositories/querytree"
	"steptree/internal/filterbar"
	"steptree/internal/handler"
	"steptree/internal/middleware"
	"steptree/internal/repository/odata"
	"steptree/internal/repository/postgres"
	pgquerytree "steptree/internal/repository/postgres/querytree"
	"steptree/internal/service/querytree"

	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	// Load configuration
	cfg := config.Load()

	// Setup structured logging
	logger, logCloser, err := config.NewLogger(cfg, "server")
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer logCloser.Close()
	slog.SetDefault(logger) // Set as default logger

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"step_source", cfg.StepSource,
		"table_prefix", cfg.TablePrefix,
	)

	ctx := context.Background()

	// Create the step source
	source, cleanup, err := newStepSource(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("Failed to create step source: %v", err)
	}
	defer cleanup()

	// Create services
	treeService := querytree.NewTreeService(source, logger)

	filterRegistry, err := filterbar.NewRegistry()
	if err != nil {
		log.Fatalf("Failed to initialize filter registry: %v", err)
	}
	logger.Info("filter registry initialized", "groups", len(filterRegistry.Groups()))

	// Build the first snapshot. A failing source is not fatal: the tree
	// stays empty and GET /api/tree retries the fetch.
	if _, err := treeService.Refresh(ctx); err != nil {
		logger.Warn("initial tree fetch failed", "error", err)
	}

	// Create handlers
	treeHandler := handler.NewTreeHandler(treeService, logger)
	selectionHandler := handler.NewSelectionHandler(treeService, logger)
	taskHandler := handler.NewTaskHandler(treeService, filterRegistry, logger)

	logger.Info("services initialized")

	// Create HTTP router (Go 1.22+ enhanced patterns)
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("GET /health", treeHandler.HealthCheck)

	// Tree routes
	mux.HandleFunc("GET /api/tree", treeHandler.GetTree)
	var refresh http.Handler = http.HandlerFunc(treeHandler.RefreshTree)
	if cfg.AuthJWKSURL != "" {
		refresh = middleware.RequireScope(models.ScopeTreeRefresh)(refresh)
	}
	mux.Handle("POST /api/tree/refresh", refresh)
	mux.HandleFunc("GET /api/steps/{stepId}/substeps/{substepId}", treeHandler.GetSubstep)

	// Selection routes
	mux.HandleFunc("GET /api/selection", selectionHandler.GetSelection)
	mux.HandleFunc("PUT /api/selection", selectionHandler.UpdateSelection)
	mux.HandleFunc("GET /api/selection/default", selectionHandler.GetDefaultSelection)

	// Task routes
	mux.HandleFunc("GET /api/tasks", taskHandler.ListTasks)
	mux.HandleFunc("POST /api/tasks/search", taskHandler.SearchTasks)
	mux.HandleFunc("GET /api/filters", taskHandler.ListFilterFields)

	// Build middleware chain
	var h http.Handler = mux

	// Apply middleware in reverse order (they wrap each other)
	// Order: CORS → RequestID → Recovery → Auth → Routes
	if cfg.AuthJWKSURL != "" {
		jwtVerifier, err := auth.NewJWTVerifier(cfg.AuthJWKSURL, logger)
		if err != nil {
			log.Fatalf("Failed to create JWT verifier: %v", err)
		}
		defer jwtVerifier.Close()
		h = middleware.AuthMiddleware(jwtVerifier, "/health")(h)
	} else {
		logger.Warn("AUTH_JWKS_URL not set, API is unauthenticated")
	}
	h = middleware.Recovery(logger)(h)
	h = middleware.RequestID(logger)(h)

	// CORS - Must be before auth to handle OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
	})
	h = corsHandler.Handler(h)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server
	go func() {
		logger.Info("server listening", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
}

// newStepSource builds the configured backend. The returned cleanup
// releases its resources.
func newStepSource(ctx context.Context, cfg *config.Config, logger *slog.Logger) (repo.StepSource, func(), error) {
	switch cfg.StepSource {
	case "postgres":
		if cfg.DatabaseURL == "" {
			return nil, nil, errors.New("DATABASE_URL is required for the postgres step source")
		}
		pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("database connected",
			"max_conns", postgres.MaxConns,
			"min_conns", postgres.MinConns,
		)
		repoConfig := &postgres.RepositoryConfig{
			Pool:   pool,
			Tables: postgres.NewTableNames(cfg.TablePrefix),
			Logger: logger,
		}
		return pgquerytree.NewStepRepository(repoConfig), pool.Close, nil

	case "odata":
		client, err := odata.NewClient(odata.ClientConfig{
			ServiceURL: cfg.ODataServiceURL,
			User:       cfg.ODataUser,
			Password:   cfg.ODataPassword,
			Timeout:    time.Duration(cfg.ODataTimeoutSec) * time.Second,
			Logger:     logger,
		})
		if err != nil {
			return nil, nil, err
		}
		logger.Info("odata client initialized", "service_url", cfg.ODataServiceURL)
		return odata.NewStepRepository(client), func() {}, nil

	default:
		return nil, nil, fmt.Errorf("unknown STEP_SOURCE %q (want postgres or odata)", cfg.StepSource)
	}
}
