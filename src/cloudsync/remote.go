package cloudsync

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/username/artledger/backend/src/logger"
	"github.com/username/artledger/backend/src/models"
)

// RemoteAdapter talks to the cloud backend over its REST API. The backend
// keeps a per-user root with a projects collection and, per project, a
// nested transactions collection. Accounts created before multi-project
// support keep their records in a flat transactions collection under the
// user root; that legacy collection is only consulted for the default
// project (see LoadTransactions).
type RemoteAdapter struct {
	baseURL    string
	authToken  string
	httpClient *http.Client

	mu       sync.Mutex
	lastSync *time.Time
}

// NewRemoteAdapter builds an adapter for the backend at baseURL,
// authenticating every call with the given bearer token.
func NewRemoteAdapter(baseURL, authToken string, timeout time.Duration) *RemoteAdapter {
	return &RemoteAdapter{
		baseURL:   strings.TrimRight(baseURL, "/"),
		authToken: authToken,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (a *RemoteAdapter) transactionsURL(projectID string) string {
	return fmt.Sprintf("%s/api/sync/projects/%s/transactions", a.baseURL, projectID)
}

// legacyTransactionsURL is the flat pre-multi-project collection under the
// user root.
func (a *RemoteAdapter) legacyTransactionsURL() string {
	return fmt.Sprintf("%s/api/sync/transactions", a.baseURL)
}

// LoadTransactions fetches the project-scoped collection. For the default
// project a missing collection falls through to the legacy flat collection,
// so pre-multi-project accounts keep seeing their remote data.
func (a *RemoteAdapter) LoadTransactions(ctx context.Context, projectID string) ([]models.Transaction, error) {
	transactions, err := a.fetchTransactions(ctx, a.transactionsURL(projectID))
	if err != nil && IsNotFound(err) && projectID == models.DefaultProjectID {
		logger.L.Debug("Project-scoped collection missing remotely, trying legacy flat collection", "projectID", projectID)
		transactions, err = a.fetchTransactions(ctx, a.legacyTransactionsURL())
	}
	if err != nil {
		return nil, err
	}
	a.markSynced()
	return transactions, nil
}

// SaveTransactions replaces the full remote collection for the project.
func (a *RemoteAdapter) SaveTransactions(ctx context.Context, projectID string, transactions []models.Transaction) error {
	if transactions == nil {
		transactions = []models.Transaction{}
	}
	if err := a.send(ctx, http.MethodPut, a.transactionsURL(projectID), transactions); err != nil {
		return err
	}
	a.markSynced()
	return nil
}

func (a *RemoteAdapter) AddTransaction(ctx context.Context, projectID string, transaction models.Transaction) error {
	if err := a.send(ctx, http.MethodPost, a.transactionsURL(projectID), transaction); err != nil {
		return err
	}
	a.markSynced()
	return nil
}

func (a *RemoteAdapter) DeleteTransaction(ctx context.Context, projectID string, transactionID int) error {
	url := fmt.Sprintf("%s/%d", a.transactionsURL(projectID), transactionID)
	if err := a.send(ctx, http.MethodDelete, url, nil); err != nil {
		return err
	}
	a.markSynced()
	return nil
}

func (a *RemoteAdapter) ClearTransactions(ctx context.Context, projectID string) error {
	if err := a.send(ctx, http.MethodDelete, a.transactionsURL(projectID), nil); err != nil {
		return err
	}
	a.markSynced()
	return nil
}

// IsAvailable reports false (never an error) when the token is missing or
// expired, or when the backend does not answer its health endpoint.
func (a *RemoteAdapter) IsAvailable(ctx context.Context) bool {
	if !a.tokenUsable() {
		return false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"/api/health", nil)
	if err != nil {
		return false
	}
	a.authorize(req)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		logger.L.Debug("Sync backend unreachable", "error", err)
		return false
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	return resp.StatusCode < http.StatusInternalServerError && resp.StatusCode != http.StatusUnauthorized
}

func (a *RemoteAdapter) LastSyncTime() *time.Time {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.lastSync == nil {
		return nil
	}
	t := *a.lastSync
	return &t
}

// tokenUsable checks the configured bearer token. JWTs with an exp claim in
// the past count as unauthenticated without a round trip; opaque tokens are
// passed through and left for the backend to judge.
func (a *RemoteAdapter) tokenUsable() bool {
	if strings.TrimSpace(a.authToken) == "" {
		return false
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(a.authToken, claims); err != nil {
		// Not a JWT. The backend decides.
		return true
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return true
	}
	return exp.After(time.Now())
}

func (a *RemoteAdapter) markSynced() {
	now := time.Now().UTC()
	a.mu.Lock()
	a.lastSync = &now
	a.mu.Unlock()
}

func (a *RemoteAdapter) authorize(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+a.authToken)
}

func (a *RemoteAdapter) fetchTransactions(ctx context.Context, url string) ([]models.Transaction, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, NewError(KindUnknown, "building request", err)
	}
	a.authorize(req)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, NewError(KindNetwork, "fetching transactions", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, NewError(classifyStatus(resp.StatusCode),
			fmt.Sprintf("backend returned status %d for GET %s", resp.StatusCode, url), nil)
	}

	var transactions []models.Transaction
	if err := json.NewDecoder(resp.Body).Decode(&transactions); err != nil {
		return nil, NewError(KindUnknown, "decoding transactions response", err)
	}
	if transactions == nil {
		transactions = []models.Transaction{}
	}
	return transactions, nil
}

// send issues a write request with an optional JSON body and maps the
// response status onto the error taxonomy.
func (a *RemoteAdapter) send(ctx context.Context, method, url string, body any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return NewError(KindUnknown, "encoding request body", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return NewError(KindUnknown, "building request", err)
	}
	a.authorize(req)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return NewError(KindNetwork, fmt.Sprintf("%s %s", method, url), err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= http.StatusBadRequest {
		return NewError(classifyStatus(resp.StatusCode),
			fmt.Sprintf("backend returned status %d for %s %s", resp.StatusCode, method, url), nil)
	}
	return nil
}
