// Package app wires the session module together: configuration, logger,
// identity client, profile repository, snapshot store, and the session store
// itself. The host application builds one App at process start and passes the
// store by reference to whichever layer needs it.
package app

import (
	"context"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/musha-views/session-store/internal/core/service"
	"github.com/musha-views/session-store/internal/infrastructure/config"
	mongodb "github.com/musha-views/session-store/internal/infrastructure/db/mongo"
	redisdb "github.com/musha-views/session-store/internal/infrastructure/db/redis"
	"github.com/musha-views/session-store/internal/infrastructure/identity"
	"github.com/musha-views/session-store/pkg/logger"
)

// App owns the session store and exposes the underlying identity and
// document-store client instances for advanced callers.
type App struct {
	Config   *config.Config
	Store    *service.SessionStore
	Identity *identity.Client
	Mongo    *mongo.Database
	Redis    *redis.Client

	mongoClient *mongo.Client
}

// New loads configuration, connects the collaborators, and returns a hydrated
// App. The store's state is restored from the persisted snapshot when one
// exists; run Store.CheckAuth afterwards to reconcile with the remote session.
func New(ctx context.Context) (*App, error) {
	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		return nil, err
	}

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr: cfg.Redis.Addr,
		DB:   cfg.Redis.DB,
	})
	if err != nil {
		_ = mongoClient.Disconnect(ctx)
		return nil, err
	}

	identityClient := identity.NewClient(identity.Config{
		BaseURL: cfg.Identity.BaseURL,
		APIKey:  cfg.Identity.APIKey,
	}, log)

	store := service.NewSessionStore(
		identityClient,
		mongodb.NewProfileRepository(db),
		redisdb.NewSnapshotStore(rdb, cfg.Redis.SnapshotKey),
		log,
	)
	store.Hydrate(ctx)

	return &App{
		Config:      cfg,
		Store:       store,
		Identity:    identityClient,
		Mongo:       db,
		Redis:       rdb,
		mongoClient: mongoClient,
	}, nil
}

// Close releases the database connections. The session listener, if
// initialized, should be unsubscribed first.
func (a *App) Close(ctx context.Context) error {
	err := a.mongoClient.Disconnect(ctx)
	if cerr := a.Redis.Close(); err == nil {
		err = cerr
	}
	return err
}
