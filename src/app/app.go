// Package app wires the storage subsystem together in the only order that
// is safe: migration first, then the default project, then transaction
// stores. Callers get a ready-to-use handle and cannot skip a step.
package app

import (
	"context"
	"fmt"

	"github.com/username/artledger/backend/src/cloudsync"
	"github.com/username/artledger/backend/src/logger"
	"github.com/username/artledger/backend/src/migration"
	"github.com/username/artledger/backend/src/models"
	"github.com/username/artledger/backend/src/projects"
	"github.com/username/artledger/backend/src/storage"
)

// App holds the initialized storage subsystem.
type App struct {
	KV       storage.KV
	Projects *projects.Repository
	Migrator *migration.Coordinator

	adapter cloudsync.Adapter
}

// Initialize runs the startup sequence: one-time legacy migration, default
// project guarantee, current-project pointer. The returned App is the only
// way to obtain transaction stores, which is what makes the ordering
// convention enforceable. adapter may be nil for local-only deployments.
func Initialize(ctx context.Context, kv storage.KV, adapter cloudsync.Adapter) (*App, error) {
	repo := projects.NewRepository(kv)
	coordinator := migration.NewCoordinator(kv, repo)

	migrated, err := coordinator.Run(ctx)
	if err != nil {
		return nil, fmt.Errorf("running legacy migration: %w", err)
	}
	if migrated {
		logger.L.Info("Legacy data migration performed on startup")
	}

	if _, err := repo.EnsureDefaultProject(ctx); err != nil {
		return nil, fmt.Errorf("ensuring default project: %w", err)
	}

	current, err := repo.CurrentProjectID(ctx)
	if err != nil {
		return nil, err
	}
	if current == "" {
		if err := repo.SetCurrentProjectID(ctx, models.DefaultProjectID); err != nil {
			return nil, err
		}
	}

	return &App{
		KV:       kv,
		Projects: repo,
		Migrator: coordinator,
		adapter:  adapter,
	}, nil
}

// RecordStore mints a transaction store bound to the given project and the
// shared adapter. Stores are cheap; handlers create one per request so each
// instance stays a pure function of its constructor arguments.
func (a *App) RecordStore(projectID string) *storage.TransactionStore {
	return storage.NewTransactionStore(a.KV, projectID, a.adapter)
}

// SyncConfigured reports whether a remote adapter was wired in at startup.
func (a *App) SyncConfigured() bool {
	return a.adapter != nil
}
