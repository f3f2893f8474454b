package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/shopspring/decimal"
	"github.com/username/artledger/backend/src/logger"
)

const (
	DefaultCacheExpiration = 15 * time.Minute
	CacheCleanupInterval   = 30 * time.Minute
)

type summaryServiceImpl struct {
	stores       StoreFactory
	summaryCache *cache.Cache
}

// NewSummaryService builds the summary service on top of the record store
// factory. The cache is invalidated by the handlers on every write, so a
// summary is recomputed at most once per write burst.
func NewSummaryService(stores StoreFactory, summaryCache *cache.Cache) SummaryService {
	return &summaryServiceImpl{
		stores:       stores,
		summaryCache: summaryCache,
	}
}

func summaryCacheKey(projectID string) string {
	return fmt.Sprintf("summary:%s", projectID)
}

func (s *summaryServiceImpl) GetProjectSummary(ctx context.Context, projectID string) (*ProjectSummary, error) {
	cacheKey := summaryCacheKey(projectID)
	if cached, found := s.summaryCache.Get(cacheKey); found {
		if summary, ok := cached.(*ProjectSummary); ok {
			return summary, nil
		}
	}

	transactions, err := s.stores(projectID).Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading transactions for summary: %w", err)
	}

	// Totals are accumulated as decimals: summing float64 amounts directly
	// drifts after a few hundred records.
	totalIncome := decimal.Zero
	totalExpense := decimal.Zero
	type categoryTotals struct{ income, expense decimal.Decimal }
	byCategory := make(map[string]*categoryTotals)

	for _, tx := range transactions {
		amount := decimal.NewFromFloat(tx.Amount)
		totals, ok := byCategory[tx.Category]
		if !ok {
			totals = &categoryTotals{income: decimal.Zero, expense: decimal.Zero}
			byCategory[tx.Category] = totals
		}
		if tx.IsIncome() {
			totalIncome = totalIncome.Add(amount)
			totals.income = totals.income.Add(amount)
		} else {
			totalExpense = totalExpense.Add(amount)
			totals.expense = totals.expense.Add(amount)
		}
	}

	categories := make([]CategorySummary, 0, len(byCategory))
	for category, totals := range byCategory {
		categories = append(categories, CategorySummary{
			Category: category,
			Income:   totals.income.InexactFloat64(),
			Expense:  totals.expense.InexactFloat64(),
		})
	}
	sort.Slice(categories, func(i, j int) bool {
		return categories[i].Category < categories[j].Category
	})

	summary := &ProjectSummary{
		ProjectID:        projectID,
		TotalIncome:      totalIncome.InexactFloat64(),
		TotalExpense:     totalExpense.InexactFloat64(),
		Balance:          totalIncome.Sub(totalExpense).InexactFloat64(),
		TransactionCount: len(transactions),
		Categories:       categories,
	}

	s.summaryCache.Set(cacheKey, summary, DefaultCacheExpiration)
	return summary, nil
}

func (s *summaryServiceImpl) InvalidateProjectCache(projectID string) {
	s.summaryCache.Delete(summaryCacheKey(projectID))
	logger.L.Debug("Summary cache invalidated", "projectID", projectID)
}
