package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/riskibarqy/komiti/external/jobqueue"
	"github.com/riskibarqy/komiti/external/textgen"
	"github.com/riskibarqy/komiti/internal/config"
	"github.com/riskibarqy/komiti/internal/domain/committee"
	"github.com/riskibarqy/komiti/internal/domain/reminder"
	"github.com/riskibarqy/komiti/internal/domain/user"
	"github.com/riskibarqy/komiti/internal/infrastructure/account/anubis"
	"github.com/riskibarqy/komiti/internal/infrastructure/account/localjwt"
	cacherepo "github.com/riskibarqy/komiti/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/komiti/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/komiti/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/komiti/internal/infrastructure/state"
	"github.com/riskibarqy/komiti/internal/interfaces/httpapi"
	"github.com/riskibarqy/komiti/internal/observability"
	basecache "github.com/riskibarqy/komiti/internal/platform/cache"
	idgen "github.com/riskibarqy/komiti/internal/platform/id"
	"github.com/riskibarqy/komiti/internal/platform/logging"
	"github.com/riskibarqy/komiti/internal/platform/random"
	"github.com/riskibarqy/komiti/internal/scheduler"
	"github.com/riskibarqy/komiti/internal/usecase"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
)

const (
	reminderWorkers     = 8
	anubisCacheMaxItems = 10000
)

// App owns the HTTP server and everything that has to be closed with it.
type App struct {
	Server    *http.Server
	Scheduler *scheduler.Scheduler
	Reminders *scheduler.ReminderJob

	logger  *logging.Logger
	closers []func() error
}

type repositories struct {
	committees committee.Repository
	users      user.Repository
	// ledgers is the undecorated committee store read by the mutator.
	ledgers committee.Repository
}

func New(ctx context.Context, cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.HTTPAddr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	a := &App{logger: logger}
	repos, err := a.openRepositories(ctx, cfg)
	if err != nil {
		_ = a.close()
		return nil, err
	}

	var metrics *observability.Metrics
	var recorder usecase.Recorder
	if cfg.MetricsEnabled {
		metrics = observability.NewMetrics("komiti")
		recorder = metrics
	}

	draws, err := random.NewSourceFromEntropy(cfg.DrawSeed)
	if err != nil {
		_ = a.close()
		return nil, fmt.Errorf("seed draw source: %w", err)
	}
	ids := idgen.NewUUIDGenerator()
	mutator := usecase.NewLedgerMutator(repos.committees, usecase.WithLedgerSource(repos.ledgers))

	generator, err := newGenerator(cfg, logger)
	if err != nil {
		_ = a.close()
		return nil, err
	}

	verifier, issuer, err := newAuth(cfg, logger)
	if err != nil {
		_ = a.close()
		return nil, err
	}

	reminderSvc := usecase.NewReminderService(repos.committees, generator, reminderWorkers, recorder, logger)
	handler := httpapi.NewHandler(
		usecase.NewCommitteeService(repos.committees, mutator, ids, recorder, logger),
		usecase.NewPaymentService(repos.committees, mutator, recorder, logger),
		usecase.NewDrawService(repos.committees, mutator, draws, ids, recorder, logger),
		usecase.NewReportService(repos.committees),
		reminderSvc,
		usecase.NewUserService(repos.users, issuer, ids, logger),
		logger,
	)

	opts := httpapi.RouterOptions{CORSAllowedOrigins: cfg.CORSAllowedOrigins}
	if metrics != nil {
		opts.Metrics = metrics.Handler()
		opts.Observer = metrics
	}

	a.Server = &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      httpapi.NewRouter(handler, verifier, logger, opts),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	if cfg.ReminderEnabled {
		if err := a.scheduleReminders(cfg, reminderSvc, logger); err != nil {
			_ = a.close()
			return nil, err
		}
	}

	return a, nil
}

func (a *App) openRepositories(ctx context.Context, cfg config.Config) (repositories, error) {
	var repos repositories

	switch cfg.StorageDriver {
	case config.StoragePostgres:
		db, err := openPostgres(cfg)
		if err != nil {
			return repos, err
		}
		a.closers = append(a.closers, db.Close)
		repos.committees = postgres.NewCommitteeRepository(db)
		repos.users = postgres.NewUserRepository(db)
	default:
		store, err := a.openStateStore(ctx, cfg)
		if err != nil {
			return repos, err
		}
		var db *memory.DB
		if store == nil {
			db = memory.NewDB()
		} else if db, err = memory.OpenDB(ctx, store); err != nil {
			return repos, err
		}
		repos.committees = memory.NewCommitteeRepository(db)
		repos.users = memory.NewUserRepository(db)
	}

	repos.ledgers = repos.committees
	if cfg.CacheEnabled {
		repos.committees = cacherepo.NewCommitteeRepository(repos.committees, basecache.NewStore(cfg.CacheTTL))
		repos.users = cacherepo.NewUserRepository(repos.users, basecache.NewStore(cfg.CacheTTL))
	}
	return repos, nil
}

func (a *App) openStateStore(ctx context.Context, cfg config.Config) (state.Store, error) {
	switch cfg.StateDriver {
	case config.StateFile:
		a.logger.Info("using json state file", "path", cfg.StatePath)
		return state.NewFileStore(cfg.StatePath), nil
	case config.StateSQLite:
		store, err := state.OpenSQLiteStore(ctx, cfg.StatePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite state: %w", err)
		}
		a.closers = append(a.closers, store.Close)
		a.logger.Info("using sqlite state", "path", cfg.StatePath)
		return store, nil
	default:
		a.logger.Warn("state persistence disabled, data lives in memory only")
		return nil, nil
	}
}

func openPostgres(cfg config.Config) (*sqlx.DB, error) {
	db, err := otelsqlx.Open("postgres", normalizeDBURL(cfg.DBURL, cfg.DBApplicationName),
		otelsql.WithDBSystem("postgresql"),
		otelsql.WithDBName(dbNameFromURL(cfg.DBURL)),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if cfg.DBMaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.DBMaxOpenConns)
		db.SetMaxIdleConns(cfg.DBMaxOpenConns)
	}
	db.SetConnMaxLifetime(30 * time.Minute)
	return db, nil
}

// newGenerator returns a nil interface when text generation is off so the
// reminder service falls back to templates.
func newGenerator(cfg config.Config, logger *logging.Logger) (reminder.Generator, error) {
	if !cfg.TextGenEnabled {
		return nil, nil
	}
	client, err := textgen.NewClient(&http.Client{Timeout: cfg.TextGenTimeout}, textgen.Config{
		BaseURL:        cfg.TextGenBaseURL,
		APIKey:         cfg.TextGenAPIKey,
		Model:          cfg.TextGenModel,
		Timeout:        cfg.TextGenTimeout,
		CircuitBreaker: cfg.TextGenCircuit,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("build text generation client: %w", err)
	}
	return client, nil
}

func newAuth(cfg config.Config, logger *logging.Logger) (httpapi.TokenVerifier, usecase.TokenIssuer, error) {
	switch cfg.AuthMode {
	case config.AuthAnubis:
		client := anubis.NewClient(&http.Client{Timeout: cfg.AnubisTimeout}, anubis.Config{
			BaseURL:        cfg.AnubisBaseURL,
			IntrospectPath: cfg.AnubisIntrospectPath,
			AdminKey:       cfg.AnubisAdminKey,
			Timeout:        cfg.AnubisTimeout,
			CacheTTL:       cfg.AnubisCacheTTL,
			CacheMaxItems:  anubisCacheMaxItems,
			CircuitBreaker: cfg.AnubisCircuit,
		}, logger)
		// tokens are minted by the account service, local login is off
		return client, nil, nil
	default:
		manager, err := localjwt.NewManager(cfg.JWTSecret, cfg.JWTTTL, cfg.JWTIssuer)
		if err != nil {
			return nil, nil, fmt.Errorf("build jwt manager: %w", err)
		}
		return manager, manager, nil
	}
}

func (a *App) scheduleReminders(cfg config.Config, source scheduler.ReminderSource, logger *logging.Logger) error {
	var publisher scheduler.Publisher
	if cfg.QStashEnabled {
		qstash, err := jobqueue.NewQStashPublisher(jobqueue.QStashPublisherConfig{
			BaseURL:        cfg.QStashBaseURL,
			Token:          cfg.QStashToken,
			TargetBaseURL:  cfg.QStashTargetBaseURL,
			Retries:        cfg.QStashRetries,
			ForwardToken:   cfg.QStashForwardToken,
			Timeout:        cfg.QStashTimeout,
			CircuitBreaker: cfg.QStashCircuit,
		}, logger)
		if err != nil {
			return fmt.Errorf("build qstash publisher: %w", err)
		}
		publisher = qstash
	}

	a.Reminders = scheduler.NewReminderJob(source, publisher, cfg.ReminderPath, user.Language(cfg.ReminderLanguage), logger)
	a.Scheduler = scheduler.New(logger, time.Local)
	if err := a.Scheduler.Add("reminders", cfg.ReminderCron, cfg.ReminderTimeout, a.Reminders.Run); err != nil {
		return fmt.Errorf("schedule reminders: %w", err)
	}
	return nil
}

// Start runs the scheduler (if any) and blocks serving HTTP.
func (a *App) Start() error {
	if a.Scheduler != nil {
		a.Scheduler.Start()
	}
	a.logger.Info("http server starting", "addr", a.Server.Addr)
	if err := a.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (a *App) Shutdown(ctx context.Context) error {
	var errs []error
	if a.Server != nil {
		if err := a.Server.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown http server: %w", err))
		}
	}
	if a.Scheduler != nil {
		if err := a.Scheduler.Stop(ctx); err != nil {
			errs = append(errs, fmt.Errorf("stop scheduler: %w", err))
		}
	}
	if err := a.close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (a *App) close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
