// Package projects is the entity repository for Project records and the
// current-project pointer. Both live under their own storage keys, never
// mixed with transaction data.
package projects

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/username/artledger/backend/src/logger"
	"github.com/username/artledger/backend/src/models"
	"github.com/username/artledger/backend/src/storage"
)

// ErrProjectNotFound signals an update or delete against an id that is not
// in the stored list. That is a stale-id programming error on the caller's
// side, so unlike sync failures it is not absorbed.
var ErrProjectNotFound = errors.New("project not found")

type Repository struct {
	kv storage.KV
}

func NewRepository(kv storage.KV) *Repository {
	return &Repository{kv: kv}
}

// LoadActive returns all projects that have not been soft-deleted.
func (r *Repository) LoadActive(ctx context.Context) ([]models.Project, error) {
	all, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	active := make([]models.Project, 0, len(all))
	for _, p := range all {
		if !p.IsDeleted() {
			active = append(active, p)
		}
	}
	return active, nil
}

// LoadAll returns every project including soft-deleted ones, for audit and
// recovery tooling.
func (r *Repository) LoadAll(ctx context.Context) ([]models.Project, error) {
	return r.load(ctx)
}

// Create appends a new project with a fresh id and returns it.
func (r *Repository) Create(ctx context.Context, name string) (models.Project, error) {
	all, err := r.load(ctx)
	if err != nil {
		return models.Project{}, err
	}
	project := models.Project{
		ID:        uuid.New().String(),
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}
	all = append(all, project)
	if err := r.save(ctx, all); err != nil {
		return models.Project{}, err
	}
	return project, nil
}

// Update replaces the stored entity matching project.ID. Full-replace
// semantics: the caller constructs the complete new state before calling.
func (r *Repository) Update(ctx context.Context, project models.Project) error {
	all, err := r.load(ctx)
	if err != nil {
		return err
	}
	for i := range all {
		if all[i].ID == project.ID {
			all[i] = project
			return r.save(ctx, all)
		}
	}
	return fmt.Errorf("update project %s: %w", project.ID, ErrProjectNotFound)
}

// Delete soft-deletes the project by stamping DeletedAt. The record is
// never removed from storage.
func (r *Repository) Delete(ctx context.Context, id string) error {
	all, err := r.load(ctx)
	if err != nil {
		return err
	}
	for i := range all {
		if all[i].ID == id {
			if all[i].DeletedAt == nil {
				now := time.Now().UTC()
				all[i].DeletedAt = &now
			}
			return r.save(ctx, all)
		}
	}
	return fmt.Errorf("delete project %s: %w", id, ErrProjectNotFound)
}

// EnsureDefaultProject returns the default project, creating it if needed.
// Idempotent: matching is by the reserved id or the reserved name, so
// calling it repeatedly never duplicates the entry.
func (r *Repository) EnsureDefaultProject(ctx context.Context) (models.Project, error) {
	all, err := r.load(ctx)
	if err != nil {
		return models.Project{}, err
	}
	for _, p := range all {
		if p.ID == models.DefaultProjectID || p.Name == models.DefaultProjectName {
			return p, nil
		}
	}
	project := models.Project{
		ID:        models.DefaultProjectID,
		Name:      models.DefaultProjectName,
		CreatedAt: time.Now().UTC(),
	}
	all = append(all, project)
	if err := r.save(ctx, all); err != nil {
		return models.Project{}, err
	}
	logger.L.Info("Default project created", "projectID", project.ID)
	return project, nil
}

// CurrentProjectID returns the persisted pointer, empty when unset. No
// validation that the id refers to an existing project; that is the
// caller's responsibility.
func (r *Repository) CurrentProjectID(ctx context.Context) (string, error) {
	id, ok, err := r.kv.Get(ctx, storage.KeyCurrentProjectID)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", nil
	}
	return id, nil
}

// SetCurrentProjectID persists the pointer.
func (r *Repository) SetCurrentProjectID(ctx context.Context, id string) error {
	return r.kv.Set(ctx, storage.KeyCurrentProjectID, id)
}

// load deserializes the project list. Like the transaction blob, a corrupt
// list is recovered as empty and logged rather than surfaced.
func (r *Repository) load(ctx context.Context) ([]models.Project, error) {
	raw, ok, err := r.kv.Get(ctx, storage.KeyProjects)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []models.Project{}, nil
	}
	var all []models.Project
	if err := json.Unmarshal([]byte(raw), &all); err != nil {
		logger.L.Warn("Corrupt project list, treating as empty", "error", err)
		return []models.Project{}, nil
	}
	if all == nil {
		all = []models.Project{}
	}
	return all, nil
}

func (r *Repository) save(ctx context.Context, all []models.Project) error {
	payload, err := json.Marshal(all)
	if err != nil {
		return fmt.Errorf("encoding project list: %w", err)
	}
	return r.kv.Set(ctx, storage.KeyProjects, string(payload))
}
