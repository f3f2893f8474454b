package cloudsync

import (
	"context"
	"sync"
	"time"

	"github.com/username/artledger/backend/src/models"
)

// ScriptedAdapter is an in-memory Adapter used in tests. Each call kind can
// be forced to fail independently, so fallback behavior can be exercised
// deterministically (e.g. load fails while save still works).
type ScriptedAdapter struct {
	mu sync.Mutex

	// Transactions holds the remote-side state, keyed by project id.
	Transactions map[string][]models.Transaction

	// Per-call-kind forced failures. Nil means the call succeeds.
	FailLoad   error
	FailSave   error
	FailAdd    error
	FailDelete error
	FailClear  error

	// Available is what IsAvailable reports.
	Available bool

	LoadCalls   int
	SaveCalls   int
	AddCalls    int
	DeleteCalls int
	ClearCalls  int

	lastSync *time.Time
}

// NewScriptedAdapter returns an available adapter with no remote data.
func NewScriptedAdapter() *ScriptedAdapter {
	return &ScriptedAdapter{
		Transactions: make(map[string][]models.Transaction),
		Available:    true,
	}
}

func (a *ScriptedAdapter) LoadTransactions(ctx context.Context, projectID string) ([]models.Transaction, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.LoadCalls++
	if a.FailLoad != nil {
		return nil, wrapScripted(a.FailLoad)
	}
	a.touch()
	out := make([]models.Transaction, len(a.Transactions[projectID]))
	copy(out, a.Transactions[projectID])
	return out, nil
}

func (a *ScriptedAdapter) SaveTransactions(ctx context.Context, projectID string, transactions []models.Transaction) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.SaveCalls++
	if a.FailSave != nil {
		return wrapScripted(a.FailSave)
	}
	stored := make([]models.Transaction, len(transactions))
	copy(stored, transactions)
	a.Transactions[projectID] = stored
	a.touch()
	return nil
}

func (a *ScriptedAdapter) AddTransaction(ctx context.Context, projectID string, transaction models.Transaction) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.AddCalls++
	if a.FailAdd != nil {
		return wrapScripted(a.FailAdd)
	}
	a.Transactions[projectID] = append(a.Transactions[projectID], transaction)
	a.touch()
	return nil
}

func (a *ScriptedAdapter) DeleteTransaction(ctx context.Context, projectID string, transactionID int) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.DeleteCalls++
	if a.FailDelete != nil {
		return wrapScripted(a.FailDelete)
	}
	kept := a.Transactions[projectID][:0]
	for _, tx := range a.Transactions[projectID] {
		if tx.ID != transactionID {
			kept = append(kept, tx)
		}
	}
	a.Transactions[projectID] = kept
	a.touch()
	return nil
}

func (a *ScriptedAdapter) ClearTransactions(ctx context.Context, projectID string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.ClearCalls++
	if a.FailClear != nil {
		return wrapScripted(a.FailClear)
	}
	delete(a.Transactions, projectID)
	a.touch()
	return nil
}

func (a *ScriptedAdapter) IsAvailable(ctx context.Context) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.Available
}

func (a *ScriptedAdapter) LastSyncTime() *time.Time {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.lastSync == nil {
		return nil
	}
	t := *a.lastSync
	return &t
}

func (a *ScriptedAdapter) touch() {
	now := time.Now().UTC()
	a.lastSync = &now
}

// wrapScripted keeps the adapter contract: every returned error is classified.
func wrapScripted(err error) error {
	if _, ok := err.(*Error); ok {
		return err
	}
	return NewError(KindUnknown, "scripted failure", err)
}
