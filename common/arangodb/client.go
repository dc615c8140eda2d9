package arangodb

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/arangodb/go-driver/v2/arangodb"
	"github.com/arangodb/go-driver/v2/connection"
)

var ErrNotInitialized = errors.New("arangodb database not initialized, call EnsureDatabase first")

// Client is a thin document-store facade over the ArangoDB v2 driver.
type Client interface {
	// Setup operations
	EnsureDatabase(ctx context.Context) error
	EnsureCollection(ctx context.Context, name string) error

	// Document operations
	CreateDocument(ctx context.Context, collection string, doc any) (string, error)
	Query(ctx context.Context, query string, bindVars map[string]any) (arangodb.Cursor, error)

	// Utility
	Ping(ctx context.Context) error
	Close() error
}

type Config struct {
	URL      string
	Username string
	Password string
	Database string
}

func (c Config) Validate() error {
	if c.URL == "" {
		return fmt.Errorf("arangodb URL is required")
	}
	if c.Username == "" {
		return fmt.Errorf("arangodb username is required")
	}
	if c.Database == "" {
		return fmt.Errorf("arangodb database name is required")
	}
	return nil
}

type client struct {
	arangoClient arangodb.Client
	db           arangodb.Database
	cfg          Config
}

func New(ctx context.Context, cfg Config) (Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("arangodb config: %w", err)
	}

	endpoint := connection.NewRoundRobinEndpoints([]string{cfg.URL})
	conn := connection.NewHttp2Connection(connection.DefaultHTTP2ConfigurationWrapper(endpoint, true))

	auth := connection.NewBasicAuth(cfg.Username, cfg.Password)
	if err := conn.SetAuthentication(auth); err != nil {
		return nil, fmt.Errorf("arangodb auth: %w", err)
	}

	return &client{
		arangoClient: arangodb.NewClient(conn),
		cfg:          cfg,
	}, nil
}

func (c *client) Close() error {
	return nil
}

func (c *client) Ping(ctx context.Context) error {
	if _, err := c.arangoClient.Version(ctx); err != nil {
		return fmt.Errorf("arangodb version: %w", err)
	}
	return nil
}

func (c *client) EnsureDatabase(ctx context.Context) error {
	start := time.Now()

	exists, err := c.arangoClient.DatabaseExists(ctx, c.cfg.Database)
	if err != nil {
		return fmt.Errorf("check database exists: %w", err)
	}

	if !exists {
		_, err = c.arangoClient.CreateDatabase(ctx, c.cfg.Database, nil)
		if err != nil {
			return fmt.Errorf("create database: %w", err)
		}
		slog.InfoContext(ctx, "arangodb database created",
			"database", c.cfg.Database,
			"duration_ms", time.Since(start).Milliseconds())
	}

	db, err := c.arangoClient.GetDatabase(ctx, c.cfg.Database, nil)
	if err != nil {
		return fmt.Errorf("get database: %w", err)
	}
	c.db = db

	return nil
}

func (c *client) EnsureCollection(ctx context.Context, name string) error {
	if c.db == nil {
		return ErrNotInitialized
	}

	exists, err := c.db.CollectionExists(ctx, name)
	if err != nil {
		return fmt.Errorf("check collection %s exists: %w", name, err)
	}
	if exists {
		return nil
	}

	colType := arangodb.CollectionTypeDocument
	_, err = c.db.CreateCollectionV2(ctx, name, &arangodb.CreateCollectionPropertiesV2{Type: &colType})
	if err != nil {
		return fmt.Errorf("create collection %s: %w", name, err)
	}
	slog.InfoContext(ctx, "arangodb collection created", "collection", name)

	return nil
}

// CreateDocument inserts doc and returns the stored document key.
func (c *client) CreateDocument(ctx context.Context, collection string, doc any) (string, error) {
	if c.db == nil {
		return "", ErrNotInitialized
	}

	col, err := c.db.GetCollection(ctx, collection, nil)
	if err != nil {
		return "", fmt.Errorf("get collection %s: %w", collection, err)
	}

	meta, err := col.CreateDocument(ctx, doc)
	if err != nil {
		return "", fmt.Errorf("create document in %s: %w", collection, err)
	}
	return meta.Key, nil
}

// Query runs an AQL query. Callers own the returned cursor and must close it.
func (c *client) Query(ctx context.Context, query string, bindVars map[string]any) (arangodb.Cursor, error) {
	if c.db == nil {
		return nil, ErrNotInitialized
	}

	start := time.Now()
	cursor, err := c.db.Query(ctx, query, &arangodb.QueryOptions{
		BindVars: bindVars,
	})
	if err != nil {
		return nil, fmt.Errorf("execute query: %w", err)
	}

	slog.DebugContext(ctx, "arangodb query executed",
		"duration_ms", time.Since(start).Milliseconds())

	return cursor, nil
}
