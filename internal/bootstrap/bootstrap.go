package bootstrap

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	appControllers "github.com/yigit/lecturealert/internal/app/controllers"
	"github.com/yigit/lecturealert/internal/app/dashboard"
	appMigrations "github.com/yigit/lecturealert/internal/app/migrations"
	"github.com/yigit/lecturealert/internal/app/models/dto"
	appRepos "github.com/yigit/lecturealert/internal/app/repositories"
	appRoutes "github.com/yigit/lecturealert/internal/app/routes"
	appServices "github.com/yigit/lecturealert/internal/app/services"
	"github.com/yigit/lecturealert/internal/app/session"
	"github.com/yigit/lecturealert/internal/config"
	"github.com/yigit/lecturealert/internal/db"
	appMiddleware "github.com/yigit/lecturealert/internal/middleware"
	pkgAuth "github.com/yigit/lecturealert/internal/pkg/auth"
	"github.com/yigit/lecturealert/internal/pkg/email"
	"github.com/yigit/lecturealert/internal/pkg/logger"
	"github.com/yigit/lecturealert/internal/pkg/websocket"
	"github.com/yigit/lecturealert/internal/seed"
)

const (
	// Providers unused for this long are dropped from memory
	sessionIdleTimeout = 30 * time.Minute
	janitorInterval    = 5 * time.Minute
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	Repos             *appRepos.Repositories
	Redis             *redis.Client // nil when sessions are kept in memory
	SessionStore      session.RevocableStore
	JWTService        *pkgAuth.JWTService
	AuthService       *appServices.AuthService
	Sessions          *session.Manager
	Aggregator        *dashboard.Aggregator
	Dashboards        *dashboard.Registry
	Hub               *websocket.Hub
	SessionMiddleware *appMiddleware.SessionMiddleware
	Controllers       appRoutes.Controllers
	Logger            zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	configPath := filepath.Join("configs", "config.yaml")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.ParseLevel(cfg.Logging.Level)
	prettyLog := strings.ToLower(cfg.Logging.Format) == "text"

	logger.Configure(logger.Config{
		Level:  logLevel,
		Pretty: prettyLog,
	})

	lgr := log.Logger
	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase establishes the database connection, runs migrations and seeds demo data.
func SetupDatabase(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (*db.PostgresDB, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(ctx, cfg.Database)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	lgr.Info().Msg("Database connection successfully established.")

	migrationsDir := cfg.Database.MigrationsDir
	if _, err := os.Stat(migrationsDir); os.IsNotExist(err) {
		database.Close()
		return nil, fmt.Errorf("migrations directory not found at %s: %w", migrationsDir, err)
	}

	migrator := appMigrations.NewMigrator(database.Pool, logger.Component("migrator"))
	if err := migrator.MigrateFromDirectory(ctx, migrationsDir); err != nil {
		database.Close()
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Msg("Database migrations successfully applied.")

	if cfg.Database.Seed {
		if err := seed.CreateDemoData(ctx, database, lgr); err != nil {
			// Demo data is optional
			lgr.Error().Err(err).Msg("Failed to create demo data, proceeding anyway...")
		}
	}

	return database, nil
}

// SetupSessionStore connects Redis when configured, otherwise keeps sessions in memory.
func SetupSessionStore(ctx context.Context, cfg *config.Config, lgr zerolog.Logger, deps *Dependencies) error {
	if cfg.Redis.Addr == "" {
		lgr.Warn().Msg("Redis not configured, sessions are kept in memory and lost on restart")
		deps.SessionStore = session.NewMemoryStore()
		return nil
	}

	client, err := db.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	lgr.Info().Str("addr", cfg.Redis.Addr).Msg("Redis session store connected")
	deps.Redis = client
	deps.SessionStore = session.NewRedisStore(client)
	return nil
}

// BuildDependencies initializes repositories, services, session handling and controllers.
func BuildDependencies(ctx context.Context, cfg *config.Config, database *db.PostgresDB, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr}

	if err := SetupSessionStore(ctx, cfg, lgr, deps); err != nil {
		return nil, fmt.Errorf("failed to set up session store: %w", err)
	}

	deps.Repos = appRepos.NewRepositories(database.Pool)

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:      cfg.JWT.Secret,
		AccessTokenExp: cfg.AccessTokenTTL(),
		TokenIssuer:    cfg.JWT.Issuer,
	})

	mailer := email.NewSMTPSender(email.SMTPConfig{
		Host:      cfg.SMTP.Host,
		Port:      cfg.SMTP.Port,
		Username:  cfg.SMTP.Username,
		Password:  cfg.SMTP.Password,
		FromName:  cfg.SMTP.FromName,
		FromEmail: cfg.SMTP.FromEmail,
		UseTLS:    cfg.SMTP.UseTLS,
		BaseURL:   cfg.Server.BaseURL,
	}, logger.Component("email"))

	deps.AuthService = appServices.NewAuthService(
		deps.Repos.ProfileRepository,
		deps.Repos.VerificationTokenRepository,
		deps.JWTService,
		deps.SessionStore,
		mailer,
		logger.Component("auth"),
	)

	deps.Sessions = session.NewManager(deps.AuthService, deps.SessionStore, logger.Component("session"))

	deps.Aggregator = dashboard.NewAggregator(
		dashboard.NewRepositorySource(deps.Repos),
		dashboard.WithLocation(cfg.Location()),
		dashboard.WithLimit(cfg.App.UpcomingLimit),
		dashboard.WithLogger(logger.Component("dashboard")),
	)

	deps.Hub = websocket.NewHub(logger.Component("events"))

	deps.Dashboards = dashboard.NewRegistry(deps.Aggregator, func(sessionID string, snap dashboard.Snapshot) {
		deps.Hub.Publish(sessionID, websocket.TypeDashboardUpdated, dto.NewDashboardEvent(snap))
	})

	// Identity changes drop the displayed dashboard before tabs are told
	deps.Sessions.OnEvent(func(sessionID string, ev session.Event) {
		deps.Dashboards.Invalidate(sessionID)
		deps.Hub.Publish(sessionID, websocket.TypeSessionChanged, dto.NewSessionEvent(ev))
	})

	deps.SessionMiddleware = appMiddleware.NewSessionMiddleware(deps.Sessions, cfg.Server.CookieSecure, cfg.AccessTokenTTL())

	deps.Controllers = appRoutes.Controllers{
		Auth:      appControllers.NewAuthController(deps.AuthService, logger.Component("auth")),
		Dashboard: appControllers.NewDashboardController(deps.Dashboards, cfg.Location(), logger.Component("dashboard")),
		Shell:     appControllers.NewShellController(),
		Events:    appControllers.NewEventsController(deps.Hub, logger.Component("events")),
	}

	return deps, nil
}

// StartBackground runs the live event hub and the session janitor until ctx is done.
func StartBackground(ctx context.Context, deps *Dependencies) {
	go deps.Hub.Run(ctx)

	go func() {
		ticker := time.NewTicker(janitorInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				runJanitor(ctx, deps)
			}
		}
	}()
}

func runJanitor(ctx context.Context, deps *Dependencies) {
	for _, id := range deps.Sessions.Sweep(sessionIdleTimeout) {
		deps.Dashboards.Drop(id)
	}

	n, err := deps.Repos.VerificationTokenRepository.DeleteExpiredTokens(ctx, time.Now().UTC())
	if err != nil {
		deps.Logger.Warn().Err(err).Msg("Failed to delete expired verification tokens")
		return
	}
	if n > 0 {
		deps.Logger.Info().Int64("count", n).Msg("Expired verification tokens deleted")
	}
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if strings.ToLower(cfg.Server.Mode) == "production" {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	router := gin.New()
	router.Use(
		gin.Recovery(),
		appMiddleware.RequestLogger(logger.Component("http")),
		appMiddleware.Metrics(),
		appMiddleware.Timeout(cfg.RequestTimeout()),
	)

	appRoutes.SetupRouter(router, deps.Controllers, deps.SessionMiddleware)
	return router
}
