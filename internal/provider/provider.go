// Package provider provides the abstraction layer for balance providers.
package provider

import (
	"context"
	"fmt"
)

// Provider defines the interface for balance providers
type Provider interface {
	// Name returns the provider's display name
	Name() string

	// ID returns the provider's unique identifier
	ID() string

	// GetBalance fetches the current remaining balance
	GetBalance(ctx context.Context) (*Balance, error)
}

// Balance represents the remaining balance reported by a provider
type Balance struct {
	// Provider ID
	Provider string `json:"provider"`

	// Quota is the raw balance in provider units
	Quota float64 `json:"quota"`

	// Amount is Quota converted to Currency
	Amount float64 `json:"amount"`

	// Currency label appended to formatted amounts, e.g. "美元"
	Currency string `json:"currency"`
}

// Format renders the amount with two decimals followed by the currency label
func (b *Balance) Format() string {
	if b == nil {
		return ""
	}
	return fmt.Sprintf("%.2f%s", b.Amount, b.Currency)
}

// IsBelow reports whether the amount is strictly below threshold
func (b *Balance) IsBelow(threshold float64) bool {
	return b != nil && b.Amount < threshold
}
