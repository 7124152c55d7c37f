package util

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/marketplace/internal/domain"
)

func ParseIntDefault(s string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return def
	}
	return n
}

func ParseID(s string) (uint, error) {
	n, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
	if err != nil || n == 0 {
		return 0, fmt.Errorf("invalid id %q: %w", s, domain.ErrValidation)
	}
	return uint(n), nil
}

// ParsePrice accepts a non-negative amount with at most two decimals.
func ParsePrice(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid price %q: %w", s, domain.ErrValidation)
	}
	if err := ValidatePrice(d); err != nil {
		return decimal.Zero, err
	}
	return d, nil
}

func ValidatePrice(d decimal.Decimal) error {
	if d.IsNegative() {
		return fmt.Errorf("price must not be negative: %w", domain.ErrValidation)
	}
	if d.Exponent() < -2 && !d.Equal(d.Round(2)) {
		return fmt.Errorf("price has more than two decimals: %w", domain.ErrValidation)
	}
	return nil
}

// ParseQuantity accepts a non-negative integer.
func ParseQuantity(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid quantity %q: %w", s, domain.ErrValidation)
	}
	return n, nil
}
