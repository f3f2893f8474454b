package projects

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/artledger/backend/src/models"
	"github.com/username/artledger/backend/src/storage"
)

func TestCreateAndLoad(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(storage.NewMemoryKV())

	created, err := repo.Create(ctx, "Tour 2026")
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "Tour 2026", created.Name)
	assert.False(t, created.CreatedAt.IsZero())
	assert.Nil(t, created.DeletedAt)

	active, err := repo.LoadActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, created.ID, active[0].ID)
}

func TestSoftDelete(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(storage.NewMemoryKV())

	created, err := repo.Create(ctx, "Album")
	require.NoError(t, err)
	require.NoError(t, repo.Delete(ctx, created.ID))

	// Gone from the active view, still present in the full list.
	active, err := repo.LoadActive(ctx)
	require.NoError(t, err)
	assert.Empty(t, active)

	all, err := repo.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.NotNil(t, all[0].DeletedAt)

	// Deleting again keeps the original timestamp.
	firstStamp := *all[0].DeletedAt
	require.NoError(t, repo.Delete(ctx, created.ID))
	all, err = repo.LoadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, firstStamp, *all[0].DeletedAt)
}

func TestDeleteUnknownProject(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(storage.NewMemoryKV())
	assert.ErrorIs(t, repo.Delete(ctx, "nope"), ErrProjectNotFound)
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(storage.NewMemoryKV())

	created, err := repo.Create(ctx, "Old name")
	require.NoError(t, err)

	created.Name = "New name"
	require.NoError(t, repo.Update(ctx, created))

	active, err := repo.LoadActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "New name", active[0].Name)

	assert.ErrorIs(t, repo.Update(ctx, models.Project{ID: "missing"}), ErrProjectNotFound)
}

func TestEnsureDefaultProjectIsIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(storage.NewMemoryKV())

	first, err := repo.EnsureDefaultProject(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.DefaultProjectID, first.ID)
	assert.Equal(t, models.DefaultProjectName, first.Name)

	second, err := repo.EnsureDefaultProject(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	all, err := repo.LoadAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestEnsureDefaultProjectMatchesByName(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(storage.NewMemoryKV())

	// A project that already carries the reserved name counts as the
	// default even though it has a generated id.
	created, err := repo.Create(ctx, models.DefaultProjectName)
	require.NoError(t, err)

	got, err := repo.EnsureDefaultProject(ctx)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	all, err := repo.LoadAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestCurrentProjectPointer(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(storage.NewMemoryKV())

	id, err := repo.CurrentProjectID(ctx)
	require.NoError(t, err)
	assert.Empty(t, id)

	require.NoError(t, repo.SetCurrentProjectID(ctx, "p42"))
	id, err = repo.CurrentProjectID(ctx)
	require.NoError(t, err)
	assert.Equal(t, "p42", id)
}

func TestCorruptProjectListRecoversAsEmpty(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemoryKV()
	require.NoError(t, kv.Set(ctx, storage.KeyProjects, "not json"))

	repo := NewRepository(kv)
	all, err := repo.LoadAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}
