// Package database opens the relational store selected by DB_DRIVER and
// exposes its repositories.
package database

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/fastygo/taskr/internal/config"
	pgInfra "github.com/fastygo/taskr/internal/infrastructure/postgres"
	"github.com/fastygo/taskr/repository"
	"github.com/fastygo/taskr/repository/postgres"
	"github.com/fastygo/taskr/repository/sqlite"
)

// Store bundles the repositories of one relational backend.
type Store struct {
	Driver string
	Users  repository.UserRepository
	Tasks  repository.TaskRepository

	ping  func(ctx context.Context) error
	close func()
}

// Open connects to the configured backend. Postgres migrations run first when enabled.
func Open(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	switch cfg.Database.Driver {
	case config.DriverPostgres:
		if err := pgInfra.RunMigrations(cfg, logger); err != nil {
			return nil, fmt.Errorf("migrations: %w", err)
		}
		pool, err := pgInfra.NewPool(ctx, cfg.Database, logger)
		if err != nil {
			return nil, err
		}
		return &Store{
			Driver: config.DriverPostgres,
			Users:  postgres.NewUserRepository(pool),
			Tasks:  postgres.NewTaskRepository(pool),
			ping:   pool.Ping,
			close:  pool.Close,
		}, nil
	case config.DriverSQLite:
		db, err := sqlite.Open(ctx, cfg.Database.SQLitePath)
		if err != nil {
			return nil, err
		}
		logger.Info("sqlite database opened", zap.String("path", cfg.Database.SQLitePath))
		return &Store{
			Driver: config.DriverSQLite,
			Users:  sqlite.NewUserRepository(db),
			Tasks:  sqlite.NewTaskRepository(db),
			ping:   db.PingContext,
			close:  func() { _ = db.Close() },
		}, nil
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.Database.Driver)
	}
}

func (s *Store) Ping(ctx context.Context) error {
	return s.ping(ctx)
}

func (s *Store) Close() {
	if s.close != nil {
		s.close()
	}
}
