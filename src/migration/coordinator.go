// Package migration converts the legacy single-project storage layout into
// the project-scoped layout, exactly once.
package migration

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/username/artledger/backend/src/logger"
	"github.com/username/artledger/backend/src/models"
	"github.com/username/artledger/backend/src/projects"
	"github.com/username/artledger/backend/src/storage"
)

// ErrNoBackup is returned by RestoreFromBackup when no safety copy exists.
var ErrNoBackup = errors.New("no migration backup found")

const completedValue = "true"

// Coordinator moves the legacy flat transaction list into the default
// project's key. The destructive step (deleting the legacy key) only
// happens after both the backup copy and the project-scoped copy are
// written, so a defect in this code can never lose data.
type Coordinator struct {
	kv       storage.KV
	projects *projects.Repository
}

func NewCoordinator(kv storage.KV, repo *projects.Repository) *Coordinator {
	return &Coordinator{kv: kv, projects: repo}
}

// Run executes the migration. It returns true only when legacy data was
// actually moved; re-invocations after completion are no-ops returning
// false. Errors abort before any destructive step.
func (c *Coordinator) Run(ctx context.Context) (bool, error) {
	if done, err := c.completed(ctx); err != nil {
		return false, err
	} else if done {
		return false, nil
	}

	legacy, ok, err := c.kv.Get(ctx, storage.KeyLegacyTransactions)
	if err != nil {
		return false, fmt.Errorf("reading legacy transactions: %w", err)
	}
	if !ok || isEmptyList(legacy) {
		// Nothing to migrate. Mark completed so startup never pays this
		// check twice; no project creation is implied.
		if err := c.kv.Set(ctx, storage.KeyMigrationCompleted, completedValue); err != nil {
			return false, err
		}
		return false, nil
	}

	// The legacy blob must at least decode before anything destructive.
	var legacyTransactions []models.Transaction
	if err := json.Unmarshal([]byte(legacy), &legacyTransactions); err != nil {
		return false, fmt.Errorf("legacy transaction blob is not valid JSON: %w", err)
	}

	if err := c.kv.Set(ctx, storage.KeyLegacyBackup, legacy); err != nil {
		return false, fmt.Errorf("writing migration backup: %w", err)
	}

	project, err := c.projects.EnsureDefaultProject(ctx)
	if err != nil {
		return false, fmt.Errorf("ensuring default project: %w", err)
	}

	if err := c.kv.Set(ctx, storage.TransactionsKey(project.ID), legacy); err != nil {
		return false, fmt.Errorf("writing project-scoped transactions: %w", err)
	}

	// Backup and project-scoped copies both exist now; the legacy key may go.
	if err := c.kv.Delete(ctx, storage.KeyLegacyTransactions); err != nil {
		return false, fmt.Errorf("deleting legacy key: %w", err)
	}
	if err := c.kv.Set(ctx, storage.KeyMigrationCompleted, completedValue); err != nil {
		return false, err
	}

	logger.L.Info("Legacy transactions migrated to project-scoped storage",
		"projectID", project.ID, "count", len(legacyTransactions))
	return true, nil
}

// RestoreFromBackup writes the safety copy back under the legacy key and
// clears the completion flag, resetting the state machine to NotStarted.
// Operator-invoked escape hatch only; never run automatically.
func (c *Coordinator) RestoreFromBackup(ctx context.Context) error {
	backup, ok, err := c.kv.Get(ctx, storage.KeyLegacyBackup)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNoBackup
	}
	if err := c.kv.Set(ctx, storage.KeyLegacyTransactions, backup); err != nil {
		return err
	}
	if err := c.kv.Delete(ctx, storage.KeyMigrationCompleted); err != nil {
		return err
	}
	logger.L.Warn("Legacy transactions restored from migration backup")
	return nil
}

func (c *Coordinator) completed(ctx context.Context) (bool, error) {
	value, ok, err := c.kv.Get(ctx, storage.KeyMigrationCompleted)
	if err != nil {
		return false, fmt.Errorf("reading migration flag: %w", err)
	}
	return ok && value == completedValue, nil
}

func isEmptyList(raw string) bool {
	trimmed := strings.TrimSpace(raw)
	return trimmed == "" || trimmed == "[]" || trimmed == "null"
}
