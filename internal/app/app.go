// Package app builds the application context: every long-lived component,
// created once in dependency order and torn down in reverse.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/labstack/echo/v4"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/hirehub/jobboard/internal/api"
	"github.com/hirehub/jobboard/internal/core/domain"
	"github.com/hirehub/jobboard/internal/core/ports"
	"github.com/hirehub/jobboard/internal/core/service"
	mongostore "github.com/hirehub/jobboard/internal/infrastructure/db/mongo"
	redisstore "github.com/hirehub/jobboard/internal/infrastructure/db/redis"
	"github.com/hirehub/jobboard/internal/infrastructure/http/handlers"
	"github.com/hirehub/jobboard/internal/infrastructure/identity"
	"github.com/hirehub/jobboard/internal/infrastructure/notify"
	"github.com/hirehub/jobboard/internal/infrastructure/queue"
	"github.com/hirehub/jobboard/internal/pkg/config"
)

// App is the application context. The connectivity monitor is initialized
// before the session gateway, and both before the view assembler and the
// mutation coordinator.
type App struct {
	Config       *config.Config
	Connectivity *service.ConnectivityMonitor
	Sessions     *service.SessionGateway
	Views        *service.ViewAssembler
	Mutations    *service.MutationCoordinator
	Router       *echo.Echo

	log          zerolog.Logger
	mongoClient  *mongo.Client
	redisClient  *goredis.Client
	dispatcher   *queue.Dispatcher
	publisher    *notify.Publisher
	stopObserver func()
	cancel       context.CancelFunc
}

// New connects the backing services and wires the components. Background
// workers run until Close.
func New(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*App, error) {
	bg, cancel := context.WithCancel(context.Background())
	a := &App{Config: cfg, log: log, cancel: cancel}

	if err := a.build(ctx, bg); err != nil {
		_ = a.Close(context.Background())
		return nil, err
	}
	return a, nil
}

func (a *App) build(ctx, bg context.Context) error {
	cfg := a.Config

	// --- Backing services ---
	client, db, err := mongostore.Connect(ctx, mongostore.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
		AppName:  "jobboard-api",
		Timeout:  cfg.Mongo.Timeout,
	})
	if err != nil {
		return fmt.Errorf("connect document store: %w", err)
	}
	a.mongoClient = client
	a.log.Info().Str("database", cfg.Mongo.Database).Msg("connected to document store")

	rdb, err := redisstore.Connect(ctx, redisstore.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	a.redisClient = rdb
	a.log.Info().Str("addr", cfg.Redis.Addr).Msg("connected to redis")

	// --- Repositories ---
	store := mongostore.NewStore(db, redisstore.NewDocumentCache(rdb, cfg.Redis.CacheTTL), a.log)
	profiles := mongostore.NewProfileRepository(store)
	companies := mongostore.NewCompanyRepository(store)
	jobs := mongostore.NewJobRepository(store)
	applications := mongostore.NewApplicationRepository(store)
	accounts := mongostore.NewAccountRepository(store)
	blobs := mongostore.NewBlobStore(store, cfg.Project.StorageBucket, cfg.PublicBaseURL, cfg.Upload.Timeout)

	if err := ensureIndexes(ctx, profiles, companies, jobs, accounts); err != nil {
		return err
	}
	if err := applications.EnsureIndexes(ctx, !cfg.Applications.AllowDuplicates); err != nil {
		return fmt.Errorf("ensure application indexes: %w", err)
	}

	// --- Connectivity first; everything below reads the flag ---
	a.Connectivity = service.NewConnectivityMonitor(store, store, cfg.ProbeInterval, a.log.With().Str("component", "connectivity").Logger())
	a.Connectivity.Init(ctx)
	go a.Connectivity.Run(bg)

	// --- Session gateway ---
	idp := identity.NewProvider(accounts, redisstore.NewTokenDenylist(rdb), identity.Config{
		ProjectID:       cfg.Project.ProjectID,
		SigningSecret:   cfg.Auth.SigningSecret,
		FederatedSecret: cfg.Auth.FederatedSecret,
		FederatedIssuer: cfg.Auth.FederatedIssuer,
		TokenTTL:        cfg.Auth.TokenTTL,
	}, a.log)
	resolver := service.NewProfileResolver(profiles, companies, a.Connectivity, a.log.With().Str("component", "profile_resolver").Logger())
	a.Sessions = service.NewSessionGateway(
		idp,
		resolver,
		a.Connectivity,
		redisstore.NewSessionStore(rdb),
		redisstore.NewAttemptLimiter(rdb, cfg.Auth.MaxAttempts, cfg.Auth.AttemptWindow),
		cfg.Auth.SessionTTL,
		a.log.With().Str("component", "session_gateway").Logger(),
	)
	stop, err := a.Sessions.Observe(a.logSessionEvent)
	if err != nil {
		return fmt.Errorf("install session observer: %w", err)
	}
	a.stopObserver = stop

	// --- Side effects and notifications ---
	a.dispatcher = queue.NewDispatcher(cfg.Workers, a.log)
	a.dispatcher.Start(bg)

	notifier, err := a.notifier()
	if err != nil {
		return err
	}

	// --- Views and mutations ---
	a.Views = service.NewViewAssembler(jobs, applications, profiles, companies, a.dispatcher,
		a.log.With().Str("component", "view_assembler").Logger())
	a.Mutations = service.NewMutationCoordinator(
		profiles, companies, jobs, applications, blobs,
		redisstore.NewApplicationGuard(rdb),
		notifier,
		a.Connectivity,
		service.CoordinatorOptions{
			UploadAttempts:             cfg.Upload.Attempts,
			UploadBackoff:              cfg.Upload.Backoff,
			AllowDuplicateApplications: cfg.Applications.AllowDuplicates,
		},
		a.log.With().Str("component", "mutation_coordinator").Logger(),
	)

	// --- HTTP ---
	readiness := handlers.NewHealthDependenciesHandler(
		handlers.Dependency{Name: "mongodb", Probe: store},
		handlers.Dependency{Name: "redis", Probe: handlers.PingFunc(func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		})},
	)
	a.Router = api.NewRouter(api.Dependencies{
		Sessions:    a.Sessions,
		Views:       a.Views,
		Mutations:   a.Mutations,
		Profiles:    profiles,
		Blobs:       blobs,
		Health:      handlers.NewHealthHandler(a.Connectivity),
		Readiness:   readiness,
		APIKey:      cfg.Project.APIKey,
		CORSOrigins: cfg.CORSOrigins,
		Log:         a.log,
	})
	return nil
}

type indexer interface {
	EnsureIndexes(ctx context.Context) error
}

func ensureIndexes(ctx context.Context, repos ...indexer) error {
	for _, r := range repos {
		if err := r.EnsureIndexes(ctx); err != nil {
			return fmt.Errorf("ensure indexes: %w", err)
		}
	}
	return nil
}

// notifier publishes to the broker when one is configured and logs
// otherwise.
func (a *App) notifier() (ports.Notifier, error) {
	if a.Config.Broker.URL == "" {
		a.log.Info().Msg("no broker configured, notifications are logged")
		return notify.NewLogNotifier(a.log), nil
	}
	p, err := notify.Dial(notify.Config{
		URL:      a.Config.Broker.URL,
		Exchange: a.Config.Broker.Exchange,
	}, a.log)
	if err != nil {
		return nil, fmt.Errorf("connect broker: %w", err)
	}
	a.publisher = p
	return p, nil
}

func (a *App) logSessionEvent(ev domain.SessionEvent) {
	e := a.log.Debug().
		Str("event", string(ev.Kind)).
		Str("client_id", ev.ClientID).
		Str("state", string(ev.State))
	if ev.User != nil {
		e = e.Str("user_id", ev.User.ID)
	}
	e.Msg("session changed")
}

// Close stops the background workers and disconnects from the backing
// services. It is safe to call on a partially built App.
func (a *App) Close(ctx context.Context) error {
	if a.stopObserver != nil {
		a.stopObserver()
	}
	a.cancel()
	if a.dispatcher != nil {
		a.dispatcher.Wait()
	}

	var errs []error
	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close broker: %w", err))
		}
	}
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close redis: %w", err))
		}
	}
	if a.mongoClient != nil {
		if err := a.mongoClient.Disconnect(ctx); err != nil {
			errs = append(errs, fmt.Errorf("disconnect document store: %w", err))
		}
	}
	return errors.Join(errs...)
}
