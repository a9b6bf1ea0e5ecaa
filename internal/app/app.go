package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"

	"github.com/riskibarqy/game-lobby/internal/config"
	"github.com/riskibarqy/game-lobby/internal/domain/competition"
	"github.com/riskibarqy/game-lobby/internal/domain/liveevent"
	"github.com/riskibarqy/game-lobby/internal/domain/team"
	"github.com/riskibarqy/game-lobby/internal/infrastructure/account"
	"github.com/riskibarqy/game-lobby/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/game-lobby/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/game-lobby/internal/interfaces/httpapi"
	"github.com/riskibarqy/game-lobby/internal/platform/broadcast"
	"github.com/riskibarqy/game-lobby/internal/platform/cache"
	idgen "github.com/riskibarqy/game-lobby/internal/platform/id"
	"github.com/riskibarqy/game-lobby/internal/platform/logging"
	"github.com/riskibarqy/game-lobby/internal/platform/resilience"
	"github.com/riskibarqy/game-lobby/internal/usecase"
)

// App holds the built HTTP server and the resources it owns.
type App struct {
	Server      *http.Server
	db          *sqlx.DB
	broadcaster *broadcast.Broadcaster[liveevent.Event]
	logger      *logging.Logger
}

func New(ctx context.Context, cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}

	var (
		db              *sqlx.DB
		competitionRepo competition.Repository
		teamRepo        team.Repository
	)
	if cfg.DBEnabled {
		dbURL := normalizeDBURL(cfg.DBURL, cfg.DBDisablePreparedBinary)
		opened, err := otelsqlx.ConnectContext(ctx, "postgres", dbURL,
			otelsql.WithDBSystem("postgresql"),
			otelsql.WithDBName(dbNameFromURL(dbURL)),
			otelsql.WithQueryFormatter(formatDBQueryForTrace),
		)
		if err != nil {
			return nil, fmt.Errorf("connect database: %w", err)
		}
		db = opened
		competitionRepo = postgres.NewCompetitionRepository(db)
		teamRepo = postgres.NewTeamRepository(db)
		logger.Info("storage backend", "kind", "postgres", "db", dbNameFromURL(dbURL))
	} else {
		memCompetitionRepo := memory.NewCompetitionRepository()
		if cfg.AppEnv == config.EnvDev {
			if err := memory.Seed(ctx, memCompetitionRepo); err != nil {
				return nil, fmt.Errorf("seed memory repository: %w", err)
			}
		}
		competitionRepo = memCompetitionRepo
		teamRepo = memory.NewTeamRepository()
		logger.Info("storage backend", "kind", "memory")
	}

	var pinCache *cache.Store
	if cfg.CacheEnabled {
		pinCache = cache.NewStore(cfg.CacheTTL)
	}

	broadcaster, err := broadcast.New[liveevent.Event](cfg.EventBufferSize, logger)
	if err != nil {
		closeDB(db, logger)
		return nil, fmt.Errorf("build broadcaster: %w", err)
	}

	accountClient := account.NewClient(
		cfg.AccountBaseURL,
		cfg.AccountIntrospectPath,
		resilience.CircuitBreakerConfig{
			Enabled:          cfg.AccountCircuitEnabled,
			FailureThreshold: cfg.AccountCircuitFailureCount,
			OpenTimeout:      cfg.AccountCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.AccountCircuitHalfOpenMaxReq,
		},
		logger,
	)

	generator := idgen.NewRandomGenerator()
	joinService := usecase.NewJoinService(competitionRepo, teamRepo, broadcaster, pinCache, generator, logger)
	competitionService := usecase.NewCompetitionService(competitionRepo, teamRepo, pinCache, generator, logger)

	handler := httpapi.NewHandler(joinService, competitionService, broadcaster, logger)
	router := httpapi.NewRouter(handler, accountClient, logger, cfg.CORSAllowedOrigins)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	if server.Addr == "" {
		broadcaster.Shutdown()
		closeDB(db, logger)
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	return &App{
		Server:      server,
		db:          db,
		broadcaster: broadcaster,
		logger:      logger,
	}, nil
}

// Shutdown closes every event stream, drains the HTTP server, and releases
// the database pool. The broadcaster goes first: Server.Shutdown does not
// cancel in-flight request contexts, so stream handlers only exit once their
// subscription channel closes, and the drain budget must serve regular
// requests instead of waiting out live streams.
func (a *App) Shutdown(ctx context.Context) error {
	a.broadcaster.Shutdown()

	err := a.Server.Shutdown(ctx)
	closeDB(a.db, a.logger)

	return err
}

func closeDB(db *sqlx.DB, logger *logging.Logger) {
	if db == nil {
		return
	}
	if err := db.Close(); err != nil {
		logger.Error("close database", "error", err)
	}
}
