package store

import (
	"context"
	"fmt"
	"log/slog"

	"basegraph.app/helpdesk/common/arangodb"
	"basegraph.app/helpdesk/core/config"
	"basegraph.app/helpdesk/core/db"
	"github.com/redis/go-redis/v9"
)

type Stores struct {
	requests RequestStore
	sessions SessionStore
}

func NewStores(requests RequestStore, sessions SessionStore) *Stores {
	return &Stores{requests: requests, sessions: sessions}
}

func (s *Stores) Requests() RequestStore {
	return s.requests
}

func (s *Stores) Sessions() SessionStore {
	return s.sessions
}

// OpenRequestStore connects the backend named by cfg.Store.Driver and prepares its schema.
// The returned close func releases the backend's connections.
func OpenRequestStore(ctx context.Context, cfg config.Config) (RequestStore, func(), error) {
	switch cfg.Store.Driver {
	case config.StoreDriverPostgres:
		database, err := db.New(ctx, cfg.DB)
		if err != nil {
			return nil, nil, fmt.Errorf("connecting to postgres: %w", err)
		}
		if err := database.Migrate(ctx); err != nil {
			database.Close()
			return nil, nil, err
		}
		return NewPostgresRequestStore(database), database.Close, nil

	case config.StoreDriverArangoDB:
		client, err := arangodb.New(ctx, arangodb.Config{
			URL:      cfg.ArangoDB.URL,
			Username: cfg.ArangoDB.Username,
			Password: cfg.ArangoDB.Password,
			Database: cfg.ArangoDB.Database,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("connecting to arangodb: %w", err)
		}
		if err := client.EnsureDatabase(ctx); err != nil {
			return nil, nil, err
		}
		if err := client.EnsureCollection(ctx, requestCollection); err != nil {
			return nil, nil, err
		}
		closeFn := func() {
			if err := client.Close(); err != nil {
				slog.WarnContext(ctx, "arangodb close failed", "error", err)
			}
		}
		return NewArangoRequestStore(client), closeFn, nil

	case config.StoreDriverSQLite:
		gdb, err := OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		closeFn := func() {
			if sqlDB, err := gdb.DB(); err == nil {
				_ = sqlDB.Close()
			}
		}
		return NewSQLiteRequestStore(gdb), closeFn, nil

	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

// OpenSessionStore connects to Redis and verifies the connection.
func OpenSessionStore(ctx context.Context, cfg config.RedisConfig) (SessionStore, func(), error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, nil, fmt.Errorf("parsing redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("connecting to redis: %w", err)
	}

	closeFn := func() {
		if err := client.Close(); err != nil {
			slog.WarnContext(ctx, "redis close failed", "error", err)
		}
	}
	return NewRedisSessionStore(client, cfg.KeyPrefix), closeFn, nil
}
