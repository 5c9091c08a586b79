package util

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Upper bound for any single monetary value or quantity.
var maxAmount = decimal.NewFromInt(10_000_000)

// ParseAmount parses a positive decimal amount with at most two decimal
// places. Used for monetary values and quantities coming from requests.
func ParseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	if err := ValidateAmount(d); err != nil {
		return decimal.Zero, err
	}
	return d, nil
}

// ValidateAmount checks that a decimal is positive, within bounds and has
// at most two decimal places.
func ValidateAmount(d decimal.Decimal) error {
	if !d.IsPositive() {
		return fmt.Errorf("amount must be positive, got %s", d)
	}
	if d.GreaterThanOrEqual(maxAmount) {
		return fmt.Errorf("amount too large, got %s", d)
	}
	if d.Exponent() < -2 {
		return fmt.Errorf("amount has more than two decimal places, got %s", d)
	}
	return nil
}

// ValidateNonNegativeAmount is ValidateAmount but permitting zero
// (signal deposits may be zero).
func ValidateNonNegativeAmount(d decimal.Decimal) error {
	if d.IsNegative() {
		return fmt.Errorf("amount must not be negative, got %s", d)
	}
	if d.GreaterThanOrEqual(maxAmount) {
		return fmt.Errorf("amount too large, got %s", d)
	}
	if d.Exponent() < -2 {
		return fmt.Errorf("amount has more than two decimal places, got %s", d)
	}
	return nil
}

// ValidatePercentage checks a percentage contribution value: > 0 and <= 100.
func ValidatePercentage(d decimal.Decimal) error {
	if !d.IsPositive() {
		return fmt.Errorf("percentage must be positive, got %s", d)
	}
	if d.GreaterThan(decimal.NewFromInt(100)) {
		return fmt.Errorf("percentage must not exceed 100, got %s", d)
	}
	return nil
}

// ParseDate parses a YYYY-MM-DD date.
func ParseDate(dateStr string) (time.Time, error) {
	if dateStr == "" {
		return time.Time{}, fmt.Errorf("date is empty")
	}
	t, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date format: %w", err)
	}
	return t, nil
}
