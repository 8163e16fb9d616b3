package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"

	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"

	"github.com/college-hq/advising-engine/pkg/auth"
	"github.com/college-hq/advising-engine/pkg/config"
	"github.com/college-hq/advising-engine/pkg/database"
	"github.com/college-hq/advising-engine/pkg/docstore"
	"github.com/college-hq/advising-engine/pkg/handlers"
	"github.com/college-hq/advising-engine/pkg/llm"
	"github.com/college-hq/advising-engine/pkg/middleware"
	"github.com/college-hq/advising-engine/pkg/repositories"
	"github.com/college-hq/advising-engine/pkg/services"
)

// Version is set at build time via ldflags
var Version = "dev"

const migrationsPath = "migrations"

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
		zap.String("environment", cfg.Env),
		zap.String("store_backend", cfg.Store.Backend),
		zap.String("ai_provider", cfg.AI.Provider),
		zap.Bool("auth_verification", cfg.Auth.EnableVerification))

	ctx := context.Background()

	store, err := newStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize document store", zap.Error(err))
	}
	defer func() { _ = store.Close() }()

	client, err := llm.NewFromConfig(&cfg.AI, logger)
	if err != nil {
		logger.Fatal("Failed to initialize AI client", zap.Error(err))
	}

	jwksClient, err := auth.NewJWKSClient(&auth.JWKSConfig{
		EnableVerification: cfg.Auth.EnableVerification,
		JWKSEndpoints:      cfg.Auth.JWKSEndpoints,
	})
	if err != nil {
		logger.Fatal("Failed to initialize JWKS client", zap.Error(err))
	}
	defer jwksClient.Close()

	authService := auth.NewAuthService(jwksClient, logger)
	authMiddleware := auth.NewMiddleware(authService, cfg.Auth.EnableVerification, logger)

	profiles := repositories.NewProfileRepository(store)
	courses := repositories.NewCourseRepository(store)
	conversations := repositories.NewConversationRepository(store)

	catalog := services.NewCatalogService(courses, cfg.Catalog.CurrentYear, logger)
	advising := services.NewAdvisingService(profiles, catalog, conversations, client, cfg.AI.Timeout(), logger)

	mux := http.NewServeMux()

	handlers.NewHealthHandler(cfg, logger).RegisterRoutes(mux)
	handlers.NewProfileHandler(profiles, logger).RegisterRoutes(mux, authMiddleware)
	handlers.NewCoursesHandler(catalog, cfg.Catalog.CurrentYear, logger).RegisterRoutes(mux, authMiddleware)
	handlers.NewConversationsHandler(conversations, logger).RegisterRoutes(mux, authMiddleware)
	handlers.NewAdvisingHandler(advising, logger).RegisterRoutes(mux, authMiddleware)

	handler := middleware.CORS(cfg.CORSOrigin)(middleware.RequestLogger(logger)(mux))

	addr := cfg.BindAddr + ":" + cfg.Port
	logger.Info("Starting advising-engine",
		zap.String("addr", addr),
		zap.String("version", cfg.Version))
	if err := http.ListenAndServe(addr, handler); err != nil {
		logger.Fatal("Server failed", zap.Error(err))
	}
}

// newLogger builds the process logger: JSON in deployed environments,
// console locally.
func newLogger(env string) (*zap.Logger, error) {
	if env == "local" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// newStore constructs the configured document store backend. The postgres
// backend runs schema migrations through database/sql before handing the
// pgx pool to the store.
func newStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (docstore.Store, error) {
	switch cfg.Store.Backend {
	case "postgres":
		dsn := cfg.Store.Postgres.ConnectionString()

		migrationDB, err := sql.Open("pgx", dsn)
		if err != nil {
			return nil, fmt.Errorf("failed to open migration connection: %w", err)
		}
		if err := database.RunMigrations(migrationDB, migrationsPath, logger); err != nil {
			_ = migrationDB.Close()
			return nil, err
		}
		if err := migrationDB.Close(); err != nil {
			logger.Warn("Failed to close migration connection", zap.Error(err))
		}

		pool, err := database.NewConnection(ctx, &database.Config{
			URL:            dsn,
			MaxConnections: cfg.Store.Postgres.MaxConnections,
		})
		if err != nil {
			return nil, err
		}
		return docstore.NewPostgresStore(pool), nil

	case "redis":
		return docstore.NewRedisStore(ctx, &cfg.Store.Redis)

	case "memory":
		logger.Warn("Using in-memory document store; data does not survive restarts")
		return docstore.NewMemoryStore(), nil

	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}
