package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/artledger/backend/src/cloudsync"
	"github.com/username/artledger/backend/src/models"
	"github.com/username/artledger/backend/src/storage"
)

func TestInitializeFreshInstall(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemoryKV()

	application, err := Initialize(ctx, kv, nil)
	require.NoError(t, err)
	assert.False(t, application.SyncConfigured())

	// Default project exists and the current pointer points at it.
	active, err := application.Projects.LoadActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, models.DefaultProjectID, active[0].ID)

	current, err := application.Projects.CurrentProjectID(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.DefaultProjectID, current)
}

func TestInitializeIsIdempotent(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemoryKV()

	_, err := Initialize(ctx, kv, nil)
	require.NoError(t, err)

	application, err := Initialize(ctx, kv, nil)
	require.NoError(t, err)

	all, err := application.Projects.LoadAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestInitializeMigratesLegacyData(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemoryKV()
	legacy := `[{"id":1,"description":"Old gig","amount":200,"type":"income","category":"Gigs","date":"2023-05-01T20:00:00","currency":null}]`
	require.NoError(t, kv.Set(ctx, storage.KeyLegacyTransactions, legacy))

	application, err := Initialize(ctx, kv, nil)
	require.NoError(t, err)

	store := application.RecordStore(models.DefaultProjectID)
	transactions, err := store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, transactions, 1)
	assert.Equal(t, "Old gig", transactions[0].Description)

	// Legacy key gone, backup in place.
	_, ok, err := kv.Get(ctx, storage.KeyLegacyTransactions)
	require.NoError(t, err)
	assert.False(t, ok)
	backup, ok, err := kv.Get(ctx, storage.KeyLegacyBackup)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, legacy, backup)
}

func TestInitializeKeepsExistingCurrentPointer(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemoryKV()
	require.NoError(t, kv.Set(ctx, storage.KeyCurrentProjectID, "p42"))

	application, err := Initialize(ctx, kv, nil)
	require.NoError(t, err)

	current, err := application.Projects.CurrentProjectID(ctx)
	require.NoError(t, err)
	assert.Equal(t, "p42", current)
}

// The full local-first flow: record data in localOnly, flip to cloudSync
// with a broken adapter, and the data is still there.
func TestOfflineDataSurvivesModeSwitch(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemoryKV()
	adapter := cloudsync.NewScriptedAdapter()

	application, err := Initialize(ctx, kv, adapter)
	require.NoError(t, err)
	assert.True(t, application.SyncConfigured())

	store := application.RecordStore(models.DefaultProjectID)
	recorded := []models.Transaction{
		{ID: 1, Description: "Venue deposit", Amount: 500, Type: models.TransactionTypeExpense, Category: "Venue", Date: "2024-01-15T10:30:00"},
	}
	require.NoError(t, store.Save(ctx, recorded))

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, recorded, loaded)

	require.NoError(t, store.SetMode(ctx, storage.ModeCloudSync))
	adapter.FailLoad = cloudsync.NewError(cloudsync.KindNotAuthenticated, "signed out", nil)

	loaded, err = store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, recorded, loaded)
}
