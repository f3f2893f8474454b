// Package cloudsync translates transaction storage operations into calls
// against the remote synchronization backend. The local storage layer only
// depends on the Adapter interface, so the remote implementation can fail or
// be swapped without touching the local-first logic.
package cloudsync

import (
	"context"
	"time"

	"github.com/username/artledger/backend/src/models"
)

// Adapter is the contract between the local transaction store and the
// remote backend. Every method is scoped to the authenticated user on the
// remote side and to a single project on this side.
//
// Implementations must return *Error for every failure; unclassified errors
// are a bug. IsAvailable must report false instead of failing when the user
// is unauthenticated or the backend is unreachable, so callers can take the
// fallback decision without error handling on the hot path.
type Adapter interface {
	// LoadTransactions fetches the full transaction set of a project.
	LoadTransactions(ctx context.Context, projectID string) ([]models.Transaction, error)

	// SaveTransactions replaces the full transaction set of a project.
	// Last full save wins; there is no merge.
	SaveTransactions(ctx context.Context, projectID string, transactions []models.Transaction) error

	// AddTransaction appends a single record, cheaper than a full resave.
	AddTransaction(ctx context.Context, projectID string, transaction models.Transaction) error

	// DeleteTransaction removes a single record by its project-scoped id.
	DeleteTransaction(ctx context.Context, projectID string, transactionID int) error

	// ClearTransactions removes the whole remote transaction set of a project.
	ClearTransactions(ctx context.Context, projectID string) error

	// IsAvailable reports whether remote calls can currently be attempted.
	IsAvailable(ctx context.Context) bool

	// LastSyncTime returns when the last remote operation succeeded,
	// or nil if none has.
	LastSyncTime() *time.Time
}
