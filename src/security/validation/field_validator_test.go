package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/artledger/backend/src/models"
)

func validTransaction() models.Transaction {
	return models.Transaction{
		ID:          1,
		Description: "Venue deposit",
		Amount:      500,
		Type:        models.TransactionTypeExpense,
		Category:    "Venue",
		Date:        "2024-01-15T10:30:00",
	}
}

func TestValidateTransaction(t *testing.T) {
	tx := validTransaction()
	require.NoError(t, ValidateTransaction(&tx))
	assert.Equal(t, validTransaction(), tx)
}

func TestValidateTransactionDates(t *testing.T) {
	for _, date := range []string{
		"2024-01-15T10:30:00",
		"2024-01-15T10:30:00Z",
		"2024-01-15T10:30:00+01:00",
		"2024-01-15",
	} {
		tx := validTransaction()
		tx.Date = date
		assert.NoError(t, ValidateTransaction(&tx), "date %q", date)
	}

	for _, date := range []string{"", "15/01/2024", "yesterday", "2024-13-40"} {
		tx := validTransaction()
		tx.Date = date
		assert.ErrorIs(t, ValidateTransaction(&tx), ErrValidationFailed, "date %q", date)
	}
}

func TestValidateTransactionRejectsBadFields(t *testing.T) {
	cases := map[string]func(*models.Transaction){
		"negative id":     func(tx *models.Transaction) { tx.ID = -1 },
		"unknown type":    func(tx *models.Transaction) { tx.Type = "transfer" },
		"empty type":      func(tx *models.Transaction) { tx.Type = "" },
		"negative amount": func(tx *models.Transaction) { tx.Amount = -10 },
		"long description": func(tx *models.Transaction) {
			tx.Description = strings.Repeat("a", MaxDescriptionLength+1)
		},
		"long category": func(tx *models.Transaction) {
			tx.Category = strings.Repeat("a", MaxCategoryLength+1)
		},
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			tx := validTransaction()
			mutate(&tx)
			assert.ErrorIs(t, ValidateTransaction(&tx), ErrValidationFailed)
		})
	}
}

func TestValidateTransactionSanitizesText(t *testing.T) {
	tx := validTransaction()
	tx.Description = "  <script>alert('x')</script>Venue deposit  "
	tx.Category = "<b>Venue</b>"

	require.NoError(t, ValidateTransaction(&tx))
	assert.Equal(t, "Venue deposit", tx.Description)
	assert.Equal(t, "Venue", tx.Category)
}

func TestValidateTransactionCurrency(t *testing.T) {
	tx := validTransaction()
	lower := " eur "
	tx.Currency = &lower
	require.NoError(t, ValidateTransaction(&tx))
	assert.Equal(t, "EUR", *tx.Currency)

	for _, bad := range []string{"EURO", "E", "12$"} {
		tx := validTransaction()
		code := bad
		tx.Currency = &code
		assert.ErrorIs(t, ValidateTransaction(&tx), ErrValidationFailed, "currency %q", bad)
	}

	// Absent currency is fine.
	tx = validTransaction()
	tx.Currency = nil
	assert.NoError(t, ValidateTransaction(&tx))
}

func TestValidateProjectName(t *testing.T) {
	name, err := ValidateProjectName("  Tour 2026 ")
	require.NoError(t, err)
	assert.Equal(t, "Tour 2026", name)

	_, err = ValidateProjectName("   ")
	assert.ErrorIs(t, err, ErrValidationFailed)

	_, err = ValidateProjectName(strings.Repeat("x", MaxProjectNameLength+1))
	assert.ErrorIs(t, err, ErrValidationFailed)

	// A name that is only markup sanitizes down to nothing.
	_, err = ValidateProjectName("<script></script>")
	assert.ErrorIs(t, err, ErrValidationFailed)
}

func TestCleanText(t *testing.T) {
	assert.Equal(t, "hello", CleanText("  <i>hello</i>\x00  "))
	assert.Equal(t, "a b", CleanText("a b"))
}
