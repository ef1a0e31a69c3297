// Package newapi implements the NewAPI balance provider.
package newapi

import (
	"context"

	"github.com/denysvitali/nbalance/internal/provider"
)

const (
	// DefaultQuotaPerUnit is the NewAPI convention of 500000 quota per US dollar
	DefaultQuotaPerUnit = 500000

	// Currency is appended to formatted amounts
	Currency = "美元"

	providerID = "newapi"
)

// Provider implements the provider.Provider interface for NewAPI gateways
type Provider struct {
	client       *Client
	quotaPerUnit float64
}

// NewProvider creates a new NewAPI provider. A non-positive quotaPerUnit
// falls back to DefaultQuotaPerUnit.
func NewProvider(client *Client, quotaPerUnit float64) *Provider {
	if quotaPerUnit <= 0 {
		quotaPerUnit = DefaultQuotaPerUnit
	}
	return &Provider{
		client:       client,
		quotaPerUnit: quotaPerUnit,
	}
}

// Name returns the provider's display name
func (p *Provider) Name() string {
	return "NewAPI"
}

// ID returns the provider's unique identifier
func (p *Provider) ID() string {
	return providerID
}

// GetBalance fetches the remaining balance and converts it into Currency
func (p *Provider) GetBalance(ctx context.Context) (*provider.Balance, error) {
	self, err := p.client.GetSelf(ctx)
	if err != nil {
		return nil, err
	}

	if !self.IsSuccess() {
		return nil, &APIError{Message: self.Message}
	}

	quota, err := self.QuotaValue()
	if err != nil {
		return nil, &QueryError{Kind: KindConversion, Err: err}
	}

	return &provider.Balance{
		Provider: providerID,
		Quota:    quota,
		Amount:   quota / p.quotaPerUnit,
		Currency: Currency,
	}, nil
}

// Close releases the underlying HTTP session
func (p *Provider) Close() {
	p.client.Close()
}

// Endpoint returns the URL queried for the balance
func (p *Provider) Endpoint() string {
	return p.client.URL()
}
