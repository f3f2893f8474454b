package services

import (
	"context"

	"github.com/username/artledger/backend/src/models"
)

// CategorySummary is the income/expense breakdown of one category.
type CategorySummary struct {
	Category string  `json:"category"`
	Income   float64 `json:"income"`
	Expense  float64 `json:"expense"`
}

// ProjectSummary aggregates a project's transactions for the dashboard.
type ProjectSummary struct {
	ProjectID        string            `json:"project_id"`
	TotalIncome      float64           `json:"total_income"`
	TotalExpense     float64           `json:"total_expense"`
	Balance          float64           `json:"balance"`
	TransactionCount int               `json:"transaction_count"`
	Categories       []CategorySummary `json:"categories"`
}

// TransactionLoader is the slice of the record store the summary service
// needs. Satisfied by *storage.TransactionStore.
type TransactionLoader interface {
	Load(ctx context.Context) ([]models.Transaction, error)
}

// StoreFactory mints a loader bound to a project id.
type StoreFactory func(projectID string) TransactionLoader

// SummaryService computes and caches per-project summaries.
type SummaryService interface {
	GetProjectSummary(ctx context.Context, projectID string) (*ProjectSummary, error)
	InvalidateProjectCache(projectID string)
}
