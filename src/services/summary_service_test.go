package services

import (
	"context"
	"errors"
	"testing"

	"github.com/patrickmn/go-cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/artledger/backend/src/models"
)

type stubLoader struct {
	transactions []models.Transaction
	err          error
	calls        int
}

func (s *stubLoader) Load(ctx context.Context) ([]models.Transaction, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.transactions, nil
}

func newTestService(loader *stubLoader) SummaryService {
	return NewSummaryService(func(projectID string) TransactionLoader {
		return loader
	}, cache.New(DefaultCacheExpiration, CacheCleanupInterval))
}

func TestGetProjectSummary(t *testing.T) {
	loader := &stubLoader{transactions: []models.Transaction{
		{ID: 1, Amount: 1200, Type: models.TransactionTypeIncome, Category: "Sales"},
		{ID: 2, Amount: 500, Type: models.TransactionTypeExpense, Category: "Venue"},
		{ID: 3, Amount: 75.25, Type: models.TransactionTypeExpense, Category: "Venue"},
		{ID: 4, Amount: 300, Type: models.TransactionTypeIncome, Category: "Merch"},
	}}
	service := newTestService(loader)

	summary, err := service.GetProjectSummary(context.Background(), "p1")
	require.NoError(t, err)

	assert.Equal(t, "p1", summary.ProjectID)
	assert.Equal(t, 1500.0, summary.TotalIncome)
	assert.Equal(t, 575.25, summary.TotalExpense)
	assert.Equal(t, 924.75, summary.Balance)
	assert.Equal(t, 4, summary.TransactionCount)

	// Categories are sorted by name.
	require.Len(t, summary.Categories, 3)
	assert.Equal(t, []CategorySummary{
		{Category: "Merch", Income: 300, Expense: 0},
		{Category: "Sales", Income: 1200, Expense: 0},
		{Category: "Venue", Income: 0, Expense: 575.25},
	}, summary.Categories)
}

func TestSummaryAvoidsFloatDrift(t *testing.T) {
	// 0.1 + 0.2 summed as float64 gives 0.30000000000000004.
	loader := &stubLoader{transactions: []models.Transaction{
		{ID: 1, Amount: 0.1, Type: models.TransactionTypeExpense, Category: "Fees"},
		{ID: 2, Amount: 0.2, Type: models.TransactionTypeExpense, Category: "Fees"},
	}}
	service := newTestService(loader)

	summary, err := service.GetProjectSummary(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, 0.3, summary.TotalExpense)
	assert.Equal(t, -0.3, summary.Balance)
}

func TestSummaryEmptyProject(t *testing.T) {
	service := newTestService(&stubLoader{})

	summary, err := service.GetProjectSummary(context.Background(), "p1")
	require.NoError(t, err)
	assert.Zero(t, summary.TotalIncome)
	assert.Zero(t, summary.TotalExpense)
	assert.Zero(t, summary.Balance)
	assert.Zero(t, summary.TransactionCount)
	assert.Empty(t, summary.Categories)
}

func TestSummaryCaching(t *testing.T) {
	loader := &stubLoader{transactions: []models.Transaction{
		{ID: 1, Amount: 10, Type: models.TransactionTypeIncome, Category: "Sales"},
	}}
	service := newTestService(loader)
	ctx := context.Background()

	_, err := service.GetProjectSummary(ctx, "p1")
	require.NoError(t, err)
	_, err = service.GetProjectSummary(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 1, loader.calls, "second read must hit the cache")

	service.InvalidateProjectCache("p1")
	_, err = service.GetProjectSummary(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 2, loader.calls, "invalidation must force a recompute")
}

func TestSummaryLoadError(t *testing.T) {
	loader := &stubLoader{err: errors.New("kv unavailable")}
	service := newTestService(loader)

	_, err := service.GetProjectSummary(context.Background(), "p1")
	require.Error(t, err)
	assert.ErrorContains(t, err, "kv unavailable")
}
