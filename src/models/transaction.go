package models

// Transaction type values. Amounts are always stored as non-negative;
// the type field decides the sign at reporting time.
const (
	TransactionTypeIncome  = "income"
	TransactionTypeExpense = "expense"
)

// Transaction is a single financial event inside a project.
// The JSON shape is the wire contract shared with the frontend and the
// remote backend, so field names and types must not drift.
type Transaction struct {
	ID          int     `json:"id"` // Unique within the owning project
	Description string  `json:"description"`
	Amount      float64 `json:"amount"` // Stored as given, no currency normalization
	Type        string  `json:"type"`   // "income" or "expense"
	Category    string  `json:"category"`
	Date        string  `json:"date"`     // ISO-8601 timestamp
	Currency    *string `json:"currency"` // Optional currency code, null when unset
}

// IsIncome reports whether the transaction adds money to the project.
func (t Transaction) IsIncome() bool {
	return t.Type == TransactionTypeIncome
}
