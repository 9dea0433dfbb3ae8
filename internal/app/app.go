package app

import (
	"fmt"
	"net/http"

	"github.com/jmoiron/sqlx"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"

	"github.com/rosterlink/rosterlink/external/fleaflicker"
	"github.com/rosterlink/rosterlink/external/sleeper"
	"github.com/rosterlink/rosterlink/internal/config"
	"github.com/rosterlink/rosterlink/internal/domain/league"
	"github.com/rosterlink/rosterlink/internal/domain/leaguemaster"
	cacherepo "github.com/rosterlink/rosterlink/internal/infrastructure/repository/cache"
	"github.com/rosterlink/rosterlink/internal/infrastructure/repository/postgres"
	"github.com/rosterlink/rosterlink/internal/interfaces/httpapi"
	basecache "github.com/rosterlink/rosterlink/internal/platform/cache"
	idgen "github.com/rosterlink/rosterlink/internal/platform/id"
	"github.com/rosterlink/rosterlink/internal/platform/logging"
	"github.com/rosterlink/rosterlink/internal/platform/resilience"
	"github.com/rosterlink/rosterlink/internal/usecase"

	_ "github.com/lib/pq"
)

// NewHTTPServer wires repositories, platform clients and services into a
// ready-to-run HTTP server. The returned cleanup closes the database pool
// and must be called after the server has shut down.
func NewHTTPServer(cfg config.Config, logger *logging.Logger) (*http.Server, func() error, error) {
	if logger == nil {
		logger = logging.Default()
	}

	db, err := openDB(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}

	leagueRepo, masterRepo := buildLeagueRepos(cfg, db)
	teamRepo := postgres.NewTeamRepository(db)
	userTeamRepo := postgres.NewUserTeamRepository(db)
	tradeRepo := postgres.NewTradeRepository(db)
	contentionRepo := postgres.NewContentionRepository(db)

	ids := idgen.NewRandomGenerator()
	monitor := usecase.NewContentionMonitor(cfg.ContentionRingCapacity, contentionRepo, ids, logger)

	registry := usecase.NewRegistry()
	sleeperClient := sleeper.NewClient(sleeper.ClientConfig{
		BaseURL:    cfg.SleeperBaseURL,
		Timeout:    cfg.SleeperTimeout,
		MaxRetries: cfg.SleeperMaxRetries,
		MaxWeeks:   cfg.SleeperMaxWeeks,
		Logger:     logger,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.SleeperCircuitEnabled,
			FailureThreshold: cfg.SleeperCircuitFailureCount,
			OpenTimeout:      cfg.SleeperCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.SleeperCircuitHalfOpenMaxReq,
		},
	})
	registry.RegisterAdapter(sleeperClient)
	registry.RegisterTradeProvider(sleeperClient)

	fleaflickerClient := fleaflicker.NewClient(fleaflicker.ClientConfig{
		BaseURL:    cfg.FleaflickerBaseURL,
		Season:     cfg.CurrentSeason,
		Timeout:    cfg.FleaflickerTimeout,
		MaxRetries: cfg.FleaflickerMaxRetries,
		Logger:     logger,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.FleaflickerCircuitEnabled,
			FailureThreshold: cfg.FleaflickerCircuitFailureCount,
			OpenTimeout:      cfg.FleaflickerCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.FleaflickerCircuitHalfOpenMaxReq,
		},
	})
	registry.RegisterAdapter(fleaflickerClient)
	registry.RegisterTradeProvider(fleaflickerClient)

	policy := usecase.DefaultStalenessPolicy(cfg.CurrentSeason)
	if cfg.StalenessMaxAge > 0 {
		policy.MaxAge = cfg.StalenessMaxAge
	}
	if cfg.StalenessTouchThreshold > 0 {
		policy.TouchThreshold = cfg.StalenessTouchThreshold
	}

	syncSvc := usecase.NewSyncService(registry, leagueRepo, masterRepo, teamRepo, userTeamRepo, monitor, ids, logger, cfg.CurrentSeason)
	leagueSvc := usecase.NewLeagueService(leagueRepo, masterRepo, teamRepo, userTeamRepo, policy, logger)
	tradeSvc := usecase.NewTradeService(registry, leagueRepo, tradeRepo, ids, logger)
	migrationSvc := usecase.NewMigrationService(leagueRepo, masterRepo, teamRepo, userTeamRepo, ids, logger, cfg.CurrentSeason)
	refreshSvc := usecase.NewRefreshService(leagueRepo, teamRepo, syncSvc, policy, usecase.RefreshConfig{
		Concurrency: cfg.RefreshConcurrency,
		Pace:        cfg.RefreshPace,
	}, logger)

	handler := httpapi.NewHandler(leagueSvc, syncSvc, tradeSvc, migrationSvc, refreshSvc, monitor, logger)
	router := httpapi.NewRouter(handler, logger, cfg.CORSAllowedOrigins, cfg.InternalJobToken)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	if server.Addr == "" {
		_ = db.Close()
		return nil, nil, fmt.Errorf("http server addr cannot be empty")
	}

	return server, db.Close, nil
}

func openDB(cfg config.Config) (*sqlx.DB, error) {
	dbURL := normalizeDBURL(cfg.DBURL, cfg.DBDisablePreparedBinary)

	db, err := otelsqlx.Connect("postgres", dbURL,
		otelsql.WithAttributes(semconv.DBSystemPostgreSQL),
		otelsql.WithDBName(dbNameFromURL(cfg.DBURL)),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)

	return db, nil
}

func buildLeagueRepos(cfg config.Config, db *sqlx.DB) (league.Repository, leaguemaster.Repository) {
	pgLeagues := postgres.NewLeagueRepository(db)
	pgMasters := postgres.NewLeagueMasterRepository(db)

	if !cfg.CacheEnabled {
		return pgLeagues, pgMasters
	}

	store := basecache.NewStore(cfg.CacheTTL)
	return cacherepo.NewLeagueRepository(pgLeagues, store), cacherepo.NewLeagueMasterRepository(pgMasters, store)
}
