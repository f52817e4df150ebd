package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/joho/godotenv"
	"github.com/wallje/karina/internal/ai"
	"github.com/wallje/karina/internal/amboss"
	"github.com/wallje/karina/internal/caseflow"
	"github.com/wallje/karina/internal/db"
	"github.com/wallje/karina/internal/envstruct"
	"github.com/wallje/karina/internal/errors"
	"github.com/wallje/karina/internal/logging"
	"github.com/wallje/karina/internal/pool"
	"github.com/wallje/karina/internal/pprofserver"
	"github.com/wallje/karina/internal/repositories"
	"github.com/wallje/karina/internal/retrieval"
)

type application struct {
	logger         *slog.Logger
	sessionManager *scs.SessionManager
	scenarios      *repositories.ScenarioRepository
	settings       *repositories.SettingsRepository
	pool           *pool.Manager
	engine         *retrieval.Engine
	caseStore      *caseflow.Store
	preparer       *caseflow.Preparer
	reset          *caseflow.ResetController
	aiClient       *ai.Client
	adminPassword  string
	debugSession   bool
}

type config struct {
	Addr          string `env:"KARINA_ADDR" envDefault:"localhost:4000"`
	PprofPort     string `env:"KARINA_PPROF_PORT" envDefault:""`
	SQLiteURL     string `env:"KARINA_SQLITE_URL" envDefault:"./karina.sqlite"`
	AmbossURL     string `env:"KARINA_AMBOSS_URL" envDefault:""`
	AmbossToken   string `env:"KARINA_AMBOSS_TOKEN" envDefault:""`
	AdminPassword string `env:"KARINA_ADMIN_PASSWORD" envDefault:""`
	DebugSession  string `env:"KARINA_DEBUG_SESSION" envDefault:"false"`
	OpenAIKey     string `env:"OPENAI_API_KEY" envDefault:""`
}

func run(ctx context.Context, logger *slog.Logger, lookupEnv func(string) (string, bool)) error {
	var cfg config
	if err := envstruct.Populate(&cfg, lookupEnv); err != nil {
		return errors.Wrap(err, "populate config")
	}

	pprofserver.Launch(cfg.PprofPort, logger)

	dbs, err := db.NewDatabase(cfg.SQLiteURL)
	if err != nil {
		return errors.Wrap(err, "open database", slog.String("url", cfg.SQLiteURL))
	}
	logger.LogAttrs(ctx, slog.LevelInfo, "connected to db")

	sessionManager := scs.New()
	sessionManager.Store = sqlite3store.NewWithCleanupInterval(dbs.ReadWrite.DB, 24*time.Hour)
	sessionManager.Lifetime = 12 * time.Hour

	scenarios := repositories.NewScenarioRepository(dbs, logger)
	settings := repositories.NewSettingsRepository(dbs, logger)

	names, err := scenarios.ListNames(ctx)
	if err != nil {
		return errors.Wrap(err, "load scenario pool")
	}
	poolManager := pool.NewManager(names, logger)

	fetcher := amboss.NewClient(cfg.AmbossURL, cfg.AmbossToken, logger)
	engine := retrieval.NewEngine(fetcher, scenarios, logger)
	caseStore := caseflow.NewStore(sessionManager)

	app := application{
		logger:         logger,
		sessionManager: sessionManager,
		scenarios:      scenarios,
		settings:       settings,
		pool:           poolManager,
		engine:         engine,
		caseStore:      caseStore,
		preparer:       caseflow.NewPreparer(settings, poolManager, scenarios, engine, caseStore, logger),
		reset:          caseflow.NewResetController(poolManager, caseStore, logger),
		aiClient:       ai.NewClient(cfg.OpenAIKey),
		adminPassword:  cfg.AdminPassword,
		debugSession:   cfg.DebugSession == "true",
	}

	return app.configureAndStartServer(ctx, cfg.Addr)
}

func main() {
	loggerHandler := logging.NewContextHandler(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level:     slog.LevelDebug,
		AddSource: true,
	}))
	logger := slog.New(loggerHandler)

	// A missing .env file is fine in production, the environment is set there.
	if err := godotenv.Load(); err != nil {
		logger.Info("no .env file loaded")
	}

	if err := run(context.Background(), logger, os.LookupEnv); err != nil {
		logger.Error("server failed", errors.SlogError(err))
		os.Exit(1)
	}
}
