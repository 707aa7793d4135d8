package holdings

import (
	"context"
	"math"

	"github.com/rs/zerolog"

	"github.com/finai/folio/internal/domain"
)

// Resolver resolves the live value of a single holding. Only Stock holdings
// with a ticker hit the quote provider; everything else is valued at its
// stored currentValue without an external call.
type Resolver struct {
	quotes domain.QuoteClient
	log    zerolog.Logger
}

// NewResolver creates a new valuation resolver
func NewResolver(quotes domain.QuoteClient, log zerolog.Logger) *Resolver {
	return &Resolver{
		quotes: quotes,
		log:    log.With().Str("service", "valuation").Logger(),
	}
}

// ResolveLiveValue returns an enriched copy of the holding. The input is
// never mutated.
//
// For a Stock with a ticker the live price is, in order of preference: the
// provider's quote price, the stored purchase price, the stored current
// value. A quote price of 0 is a valid price and is kept; fallback triggers
// only on absence (nil/NaN) or on lookup failure. Quote failures never
// propagate: the holding degrades to its stored values and the request
// succeeds.
//
// CurrentValue is recomputed as quantity * livePrice only when quantity is a
// positive number; otherwise the stored value is retained.
func (r *Resolver) ResolveLiveValue(ctx context.Context, h domain.Holding) domain.EnrichedHolding {
	enriched := domain.EnrichedHolding{Holding: h, LivePrice: h.CurrentValue}

	if h.Type != domain.AssetTypeStock || h.Ticker == nil || *h.Ticker == "" {
		return enriched
	}

	livePrice := r.lookupPrice(ctx, h)
	enriched.LivePrice = livePrice

	if h.Quantity != nil && *h.Quantity > 0 {
		enriched.CurrentValue = *h.Quantity * livePrice
	}

	return enriched
}

// lookupPrice fetches the quote and applies the fallback chain
func (r *Resolver) lookupPrice(ctx context.Context, h domain.Holding) float64 {
	quote, err := r.quotes.GetQuote(ctx, *h.Ticker)
	if err != nil {
		r.log.Warn().
			Err(err).
			Str("ticker", *h.Ticker).
			Str("holding", h.ID).
			Msg("Quote lookup failed, falling back to stored values")
		return r.storedFallback(h)
	}

	if quote.Price == nil || math.IsNaN(*quote.Price) {
		r.log.Debug().
			Str("ticker", *h.Ticker).
			Msg("Quote has no usable price, falling back to stored values")
		return r.storedFallback(h)
	}

	return *quote.Price
}

// storedFallback picks the stored price to stand in for a missing quote:
// purchase price when recorded, else the stored current value.
func (r *Resolver) storedFallback(h domain.Holding) float64 {
	if h.PurchasePrice != nil {
		return *h.PurchasePrice
	}
	return h.CurrentValue
}
