package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	appControllers "github.com/yigit/curriculum/internal/app/controllers"
	appMigrations "github.com/yigit/curriculum/internal/app/migrations"
	appRepos "github.com/yigit/curriculum/internal/app/repositories"
	"github.com/yigit/curriculum/internal/app/repositories/memory"
	appRoutes "github.com/yigit/curriculum/internal/app/routes"
	appServices "github.com/yigit/curriculum/internal/app/services"
	"github.com/yigit/curriculum/internal/config"
	"github.com/yigit/curriculum/internal/db"
	appMiddleware "github.com/yigit/curriculum/internal/middleware"
	pkgAuth "github.com/yigit/curriculum/internal/pkg/auth"
	"github.com/yigit/curriculum/internal/pkg/helpers"
	"github.com/yigit/curriculum/internal/pkg/logger"
	"github.com/yigit/curriculum/internal/seed"
)

// DefaultConfigPath is used when no path is given on the command line
const DefaultConfigPath = "configs/config.yaml"

// Dependencies holds all the application dependencies
type Dependencies struct {
	Services             *appServices.Services
	CurriculumController *appControllers.CurriculumController
	ProgressController   *appControllers.ProgressController
	GoalController       *appControllers.GoalController
	AuthMiddleware       *appMiddleware.AuthMiddleware
	Repos                *appRepos.Repositories
	JWTService           *pkgAuth.JWTService
	Logger               zerolog.Logger
}

// Storage is the selected record backend and its cleanup
type Storage struct {
	Repos *appRepos.Repositories
	// Database is nil for the memory driver
	Database *db.PostgresDB
}

// Close releases the database pool, if any
func (s *Storage) Close() {
	if s.Database != nil {
		s.Database.Close()
	}
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger(configPath string) (*config.Config, zerolog.Logger, error) {
	if configPath == "" {
		configPath = DefaultConfigPath
	}
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Str("path", configPath).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	lgr := logger.Configure(logger.ConfigFromStrings(cfg.Logging.Level, cfg.Logging.Format))
	lgr.Info().Str("logLevel", cfg.Logging.Level).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// NewJWTService builds the token service from the jwt config section
func NewJWTService(cfg *config.Config) *pkgAuth.JWTService {
	return pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:      cfg.JWT.Secret,
		AccessTokenExp: helpers.ParseDuration(cfg.JWT.AccessTokenExpiration, 1*time.Hour),
		TokenIssuer:    cfg.JWT.Issuer,
	})
}

// SetupStorage selects the memory stores or connects to Postgres and applies migrations.
func SetupStorage(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (*Storage, error) {
	if cfg.UsesMemoryStore() {
		lgr.Warn().Msg("Using in-memory stores; data is lost on shutdown")
		return &Storage{Repos: memory.Stores()}, nil
	}

	database, err := ConnectDatabase(ctx, cfg, lgr)
	if err != nil {
		return nil, err
	}

	if err := RunMigrations(ctx, cfg, database, lgr); err != nil {
		database.Close()
		return nil, err
	}

	return &Storage{
		Repos:    appRepos.NewRepositories(database.Pool),
		Database: database,
	}, nil
}

// ConnectDatabase establishes and pings the database connection.
func ConnectDatabase(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (*db.PostgresDB, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(ctx, cfg, lgr)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	return database, nil
}

// RunMigrations applies the SQL files of the configured migrations directory.
func RunMigrations(ctx context.Context, cfg *config.Config, database *db.PostgresDB, lgr zerolog.Logger) error {
	migrationsDir := cfg.Database.MigrationsDir
	if _, err := os.Stat(migrationsDir); os.IsNotExist(err) {
		lgr.Error().Str("path", migrationsDir).Msg("Migrations directory not found")
		return fmt.Errorf("migrations directory not found at %s: %w", migrationsDir, err)
	}

	lgr.Info().Str("path", migrationsDir).Msg("Running database migrations...")
	migrator := appMigrations.NewMigrator(database.Pool, lgr)
	if err := migrator.MigrateFromDirectory(ctx, migrationsDir); err != nil {
		lgr.Error().Err(err).Msg("Database migration error")
		return fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Msg("Database migrations successfully applied.")
	return nil
}

// BuildDependencies initializes services, controllers and middleware and
// seeds the configured curricula.
func BuildDependencies(ctx context.Context, cfg *config.Config, repos *appRepos.Repositories, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr, Repos: repos}

	deps.Services = appServices.NewServices(repos, appServices.OptionsFromConfig(cfg), lgr)

	if err := seed.LoadCurricula(ctx, cfg.Curriculum.SeedFiles, deps.Services.Curriculum, lgr); err != nil {
		// A broken seed file is reported but does not stop the API
		lgr.Error().Err(err).Msg("Failed to seed curricula, proceeding anyway...")
	}

	deps.JWTService = NewJWTService(cfg)
	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService)

	deps.CurriculumController = appControllers.NewCurriculumController(deps.Services.Curriculum)
	deps.ProgressController = appControllers.NewProgressController(deps.Services.Progress)
	deps.GoalController = appControllers.NewGoalController(deps.Services.Goals)

	return deps, nil
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
	router.Use(gin.Recovery(), appMiddleware.RequestLogger(lgr))

	appRoutes.SetupRouter(router,
		deps.CurriculumController,
		deps.ProgressController,
		deps.GoalController,
		deps.AuthMiddleware,
	)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong", "status": "success"})
	})

	return router
}
