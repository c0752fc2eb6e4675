// Package factory builds the storage and content layers from configuration.
package factory

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/homeboard/homeboard/internal/auth"
	"github.com/homeboard/homeboard/internal/config"
	"github.com/homeboard/homeboard/internal/content"
	"github.com/homeboard/homeboard/internal/store"
	"github.com/homeboard/homeboard/internal/store/postgres"
	"github.com/homeboard/homeboard/internal/store/sqlite"
)

// NewStore selects the dashboard store driver from cfg.DBDriver and
// bootstraps its schema. The returned *sql.DB is shared with the content
// repository; the caller owns closing it.
func NewStore(ctx context.Context, cfg *config.Config) (store.Store, *sql.DB, error) {
	switch cfg.DBDriver {
	case "postgres":
		db, err := postgres.Open(cfg.PostgresDSN)
		if err != nil {
			return nil, nil, err
		}
		if err := postgres.Bootstrap(ctx, db); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return postgres.NewWithDB(db), db, nil
	case "sqlite":
		db, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		if err := sqlite.Bootstrap(ctx, db); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return sqlite.NewWithDB(db), db, nil
	default:
		return nil, nil, fmt.Errorf("unknown DB_DRIVER: %s", cfg.DBDriver)
	}
}

// NewContentRepository builds the content query layer over the same
// database connection as the store.
func NewContentRepository(ctx context.Context, cfg *config.Config, db *sql.DB) (content.Repository, error) {
	var repo *content.SQLRepository
	switch cfg.DBDriver {
	case "postgres":
		repo = content.NewPostgres(db)
	case "sqlite":
		repo = content.NewSQLite(db)
	default:
		return nil, fmt.Errorf("unknown DB_DRIVER: %s", cfg.DBDriver)
	}
	repo = repo.WithPerPage(cfg.PerPage)
	if err := repo.Bootstrap(ctx); err != nil {
		return nil, err
	}
	return repo, nil
}

// NewAuthorizer picks the authorizer for the deployment mode. Configured
// API keys always win; the mock authorizer is the dev-mode fallback.
func NewAuthorizer(cfg *config.Config) auth.Authorizer {
	if len(cfg.APIKeys) > 0 {
		actors := make(map[string]auth.Actor, len(cfg.APIKeys))
		for key, actorID := range cfg.APIKeys {
			actors[key] = auth.Actor{
				ActorID:      actorID,
				Name:         actorID,
				Capabilities: []string{cfg.Capability},
			}
		}
		return auth.NewStaticAuthorizer(actors)
	}
	return auth.NewMockAuthorizer()
}
