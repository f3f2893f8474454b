package validation

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/username/artledger/backend/src/models"
)

var ErrValidationFailed = fmt.Errorf("validation failed")

const (
	MaxDescriptionLength  = 1024
	MaxCategoryLength     = 100
	MaxProjectNameLength  = 100
	MaxCurrencyCodeLength = 3
)

var currencyCodePattern = regexp.MustCompile(`^[A-Z]{3}$`)

// Accepted transaction date layouts. The frontend historically sent local
// timestamps without a zone offset, so plain RFC3339 alone is too strict.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ValidateStringNotEmpty checks if a string is not empty after trimming.
func ValidateStringNotEmpty(s, fieldName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s cannot be empty", ErrValidationFailed, fieldName)
	}
	return nil
}

// ValidateStringMaxLength checks if a string's UTF-8 character count is within max bounds.
func ValidateStringMaxLength(s string, maxLength int, fieldName string) error {
	if utf8.RuneCountInString(s) > maxLength {
		return fmt.Errorf("%w: %s exceeds maximum length of %d characters", ErrValidationFailed, fieldName, maxLength)
	}
	return nil
}

// ValidateTransactionDate checks the date against the accepted layouts.
func ValidateTransactionDate(s string) error {
	for _, layout := range dateLayouts {
		if _, err := time.Parse(layout, s); err == nil {
			return nil
		}
	}
	return fmt.Errorf("%w: date ('%s') is not an ISO-8601 timestamp", ErrValidationFailed, s)
}

// ValidateTransaction sanitizes the free-text fields in place and validates
// every field of an incoming transaction.
func ValidateTransaction(tx *models.Transaction) error {
	tx.Description = CleanText(tx.Description)
	tx.Category = CleanText(tx.Category)

	if tx.ID < 0 {
		return fmt.Errorf("%w: transaction id must not be negative", ErrValidationFailed)
	}
	if tx.Type != models.TransactionTypeIncome && tx.Type != models.TransactionTypeExpense {
		return fmt.Errorf("%w: type must be %q or %q", ErrValidationFailed,
			models.TransactionTypeIncome, models.TransactionTypeExpense)
	}
	if math.IsNaN(tx.Amount) || math.IsInf(tx.Amount, 0) || tx.Amount < 0 {
		return fmt.Errorf("%w: amount must be a non-negative number", ErrValidationFailed)
	}
	if err := ValidateStringMaxLength(tx.Description, MaxDescriptionLength, "description"); err != nil {
		return err
	}
	if err := ValidateStringMaxLength(tx.Category, MaxCategoryLength, "category"); err != nil {
		return err
	}
	if err := ValidateTransactionDate(tx.Date); err != nil {
		return err
	}
	if tx.Currency != nil {
		code := strings.ToUpper(strings.TrimSpace(*tx.Currency))
		if !currencyCodePattern.MatchString(code) {
			return fmt.Errorf("%w: currency ('%s') must be a 3-letter code", ErrValidationFailed, *tx.Currency)
		}
		tx.Currency = &code
	}
	return nil
}

// ValidateProjectName sanitizes and validates a project name, returning the
// cleaned value.
func ValidateProjectName(name string) (string, error) {
	cleaned := CleanText(name)
	if err := ValidateStringNotEmpty(cleaned, "project name"); err != nil {
		return "", err
	}
	if err := ValidateStringMaxLength(cleaned, MaxProjectNameLength, "project name"); err != nil {
		return "", err
	}
	return cleaned, nil
}
