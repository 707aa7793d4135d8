package domain

import "context"

// QuoteClient defines the contract for fetching market quotes. It abstracts
// the concrete provider (Yahoo Finance in production) so valuation logic and
// handlers never depend on a specific API.
//
// GetQuote must be callable independently per ticker with no required
// ordering. A failed lookup (network error, unknown symbol, timeout) is
// returned as an error; a known symbol with no usable price is returned as a
// Quote with a nil Price.
type QuoteClient interface {
	GetQuote(ctx context.Context, ticker string) (*Quote, error)
}
