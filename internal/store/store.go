// Package store selects and opens the configured user store.
package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/carepredict/authapi/internal/cache"
	"github.com/carepredict/authapi/internal/config"
	"github.com/carepredict/authapi/internal/model"
	"github.com/carepredict/authapi/internal/repository"
)

// UserStore is implemented by every store driver.
type UserStore interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	DeleteUser(ctx context.Context, id string) error
	Ping(ctx context.Context) error
}

// CloseFunc releases a store's connections.
type CloseFunc func(ctx context.Context) error

// Opened is a ready-to-use store.
type Opened struct {
	Store  UserStore
	Driver string
	Close  CloseFunc
}

var (
	_ UserStore = (*repository.Repository)(nil)
	_ UserStore = (*repository.MemoryStore)(nil)
	_ UserStore = (*cache.Cache)(nil)
)

// Open connects to the store named by cfg.StoreDriver. For postgres it
// applies pending migrations first when cfg.RunMigrations is set.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Opened, error) {
	switch cfg.StoreDriver {
	case config.StoreDriverPostgres:
		if cfg.RunMigrations {
			if err := repository.Migrate(ctx, cfg.DatabaseURL); err != nil {
				return nil, fmt.Errorf("run migrations: %w", err)
			}
			logger.Info("database migrations applied")
		}

		repo, err := repository.New(ctx, cfg.DatabaseURL, repository.DefaultPoolOptions())
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		return &Opened{
			Store:  repo,
			Driver: cfg.StoreDriver,
			Close: func(context.Context) error {
				repo.Close()
				return nil
			},
		}, nil

	case config.StoreDriverRedis:
		c, err := cache.New(ctx, cfg.RedisURL, cache.DefaultClientOptions())
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		return &Opened{
			Store:  c,
			Driver: cfg.StoreDriver,
			Close: func(context.Context) error {
				return c.Close()
			},
		}, nil

	case config.StoreDriverMemory:
		logger.Warn("using in-memory user store; accounts are lost on restart")
		return &Opened{
			Store:  repository.NewMemoryStore(),
			Driver: cfg.StoreDriver,
			Close:  func(context.Context) error { return nil },
		}, nil

	default:
		return nil, fmt.Errorf("%w: %q", config.ErrUnknownDriver, cfg.StoreDriver)
	}
}
