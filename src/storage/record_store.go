package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/username/artledger/backend/src/cloudsync"
	"github.com/username/artledger/backend/src/logger"
	"github.com/username/artledger/backend/src/models"
)

// ErrSyncUnavailable is returned by the explicit force-sync operations when
// no adapter is configured or the adapter reports itself unavailable.
var ErrSyncUnavailable = errors.New("cloud sync is not available")

// TransactionStore reads and writes the transaction set of exactly one
// project, honoring the persisted storage mode.
//
// The local write is the durability guarantee of every operation: it always
// happens first and its success is what the caller is told about. The
// adapter is a best-effort mirror; its failures during implicit sync are
// logged and swallowed, never propagated. A mode change or a network outage
// can therefore never make a previously successful local save unreadable.
type TransactionStore struct {
	kv        KV
	projectID string
	adapter   cloudsync.Adapter // nil when cloud sync is not configured
}

// NewTransactionStore binds a store to one project. adapter may be nil.
func NewTransactionStore(kv KV, projectID string, adapter cloudsync.Adapter) *TransactionStore {
	return &TransactionStore{kv: kv, projectID: projectID, adapter: adapter}
}

// ProjectID returns the project this store is bound to.
func (s *TransactionStore) ProjectID() string {
	return s.projectID
}

// Mode reads the persisted storage mode. Missing or unreadable state counts
// as localOnly so the safe path wins.
func (s *TransactionStore) Mode(ctx context.Context) Mode {
	raw, ok, err := s.kv.Get(ctx, KeyStorageMode)
	if err != nil {
		logger.L.Warn("Failed to read storage mode, assuming localOnly", "error", err)
		return ModeLocalOnly
	}
	if !ok {
		return ModeLocalOnly
	}
	mode, err := ParseMode(raw)
	if err != nil {
		logger.L.Warn("Invalid persisted storage mode, assuming localOnly", "value", raw)
		return ModeLocalOnly
	}
	return mode
}

// SetMode persists the storage mode. It does not move any data between
// local and remote; the next Load/Save establishes consistency under the
// new mode.
func (s *TransactionStore) SetMode(ctx context.Context, mode Mode) error {
	if _, err := ParseMode(string(mode)); err != nil {
		return err
	}
	return s.kv.Set(ctx, KeyStorageMode, string(mode))
}

// Load returns the project's transactions. In cloudSync mode the remote
// copy is preferred and, on success, written through to the local cache; on
// any adapter failure the cached local data is returned without surfacing
// an error.
func (s *TransactionStore) Load(ctx context.Context) ([]models.Transaction, error) {
	if s.Mode(ctx) == ModeCloudSync && s.adapter != nil {
		remote, err := s.adapter.LoadTransactions(ctx, s.projectID)
		if err == nil {
			if saveErr := s.saveLocal(ctx, remote); saveErr != nil {
				logger.L.Error("Failed to write through remote transactions to local cache",
					"projectID", s.projectID, "error", saveErr)
			}
			return remote, nil
		}
		logger.L.Warn("Remote load failed, falling back to local cache",
			"projectID", s.projectID, "kind", cloudsync.KindOf(err), "error", err)
	}
	return s.loadLocal(ctx)
}

// Save replaces the project's transaction list. The local write must
// succeed; the remote mirror in cloudSync mode is attempted afterwards and
// its failure is only logged.
func (s *TransactionStore) Save(ctx context.Context, transactions []models.Transaction) error {
	if err := s.saveLocal(ctx, transactions); err != nil {
		return err
	}
	if s.Mode(ctx) == ModeCloudSync && s.adapter != nil {
		if err := s.adapter.SaveTransactions(ctx, s.projectID, transactions); err != nil {
			logger.L.Warn("Remote save failed after successful local save",
				"projectID", s.projectID, "kind", cloudsync.KindOf(err), "error", err)
		}
	}
	return nil
}

// Add persists the full post-add list locally, then mirrors the single new
// record remotely (a cheaper remote call than a full resave). The remote
// failure does not roll back the local write.
func (s *TransactionStore) Add(ctx context.Context, transaction models.Transaction, fullListAfterAdd []models.Transaction) error {
	if err := s.saveLocal(ctx, fullListAfterAdd); err != nil {
		return err
	}
	if s.Mode(ctx) == ModeCloudSync && s.adapter != nil {
		if err := s.adapter.AddTransaction(ctx, s.projectID, transaction); err != nil {
			logger.L.Warn("Remote add failed after successful local save",
				"projectID", s.projectID, "transactionID", transaction.ID,
				"kind", cloudsync.KindOf(err), "error", err)
		}
	}
	return nil
}

// Delete is symmetric to Add: the provided post-delete list is
// authoritative locally, the single-record remote delete is best effort.
func (s *TransactionStore) Delete(ctx context.Context, transactionID int, fullListAfterDelete []models.Transaction) error {
	if err := s.saveLocal(ctx, fullListAfterDelete); err != nil {
		return err
	}
	if s.Mode(ctx) == ModeCloudSync && s.adapter != nil {
		if err := s.adapter.DeleteTransaction(ctx, s.projectID, transactionID); err != nil {
			logger.L.Warn("Remote delete failed after successful local save",
				"projectID", s.projectID, "transactionID", transactionID,
				"kind", cloudsync.KindOf(err), "error", err)
		}
	}
	return nil
}

// ForceSyncToCloud pushes the local data to the remote backend regardless
// of mode. Unlike the implicit mirror, failures are surfaced: the caller
// asked for this sync and wants to know.
func (s *TransactionStore) ForceSyncToCloud(ctx context.Context) error {
	if s.adapter == nil || !s.adapter.IsAvailable(ctx) {
		return ErrSyncUnavailable
	}
	transactions, err := s.loadLocal(ctx)
	if err != nil {
		return err
	}
	if err := s.adapter.SaveTransactions(ctx, s.projectID, transactions); err != nil {
		return fmt.Errorf("pushing local transactions: %w", err)
	}
	return nil
}

// ForceSyncFromCloud pulls the remote data and overwrites the local cache.
func (s *TransactionStore) ForceSyncFromCloud(ctx context.Context) ([]models.Transaction, error) {
	if s.adapter == nil || !s.adapter.IsAvailable(ctx) {
		return nil, ErrSyncUnavailable
	}
	transactions, err := s.adapter.LoadTransactions(ctx, s.projectID)
	if err != nil {
		return nil, fmt.Errorf("pulling remote transactions: %w", err)
	}
	if err := s.saveLocal(ctx, transactions); err != nil {
		return nil, err
	}
	return transactions, nil
}

// IsSyncAvailable passes through to the adapter, false when none is configured.
func (s *TransactionStore) IsSyncAvailable(ctx context.Context) bool {
	if s.adapter == nil {
		return false
	}
	return s.adapter.IsAvailable(ctx)
}

// LastSyncTime passes through to the adapter, nil when none is configured.
func (s *TransactionStore) LastSyncTime() *time.Time {
	if s.adapter == nil {
		return nil
	}
	return s.adapter.LastSyncTime()
}

// loadLocal reads and deserializes the local blob. A corrupt blob is
// recovered as an empty list and logged, never surfaced to the caller.
func (s *TransactionStore) loadLocal(ctx context.Context) ([]models.Transaction, error) {
	raw, ok, err := s.kv.Get(ctx, TransactionsKey(s.projectID))
	if err != nil {
		return nil, err
	}
	if !ok {
		return []models.Transaction{}, nil
	}
	var transactions []models.Transaction
	if err := json.Unmarshal([]byte(raw), &transactions); err != nil {
		logger.L.Warn("Corrupt local transaction blob, treating as empty",
			"projectID", s.projectID, "error", err)
		return []models.Transaction{}, nil
	}
	if transactions == nil {
		transactions = []models.Transaction{}
	}
	return transactions, nil
}

func (s *TransactionStore) saveLocal(ctx context.Context, transactions []models.Transaction) error {
	if transactions == nil {
		transactions = []models.Transaction{}
	}
	payload, err := json.Marshal(transactions)
	if err != nil {
		return fmt.Errorf("encoding transactions: %w", err)
	}
	return s.kv.Set(ctx, TransactionsKey(s.projectID), string(payload))
}
